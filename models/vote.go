package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventStory is a nominated beneficiary story attached to one event.
type EventStory struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID     primitive.ObjectID `bson:"event_id" json:"event_id"`
	NominatorID primitive.ObjectID `bson:"nominator_id" json:"nominator_id"`
	Title       string             `bson:"title" json:"title"`
	Content     string             `bson:"content" json:"content"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Vote is one ballot; uniqueness on (event_id, voter_email) is enforced
// by a compound unique index, so a retry can never double-count.
type Vote struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID    primitive.ObjectID `bson:"event_id" json:"event_id"`
	StoryID    primitive.ObjectID `bson:"story_id" json:"story_id"`
	VoterEmail string             `bson:"voter_email" json:"voter_email"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
