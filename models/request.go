package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request is an assistance request submitted by a prospective beneficiary.
type Request struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Description string             `bson:"description" json:"description"`
	Status      string             `bson:"status" json:"status"` // open, reviewed, closed
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
