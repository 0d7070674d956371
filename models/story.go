package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Story is a marketing testimonial shown outside any single event.
type Story struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	Author    string             `bson:"author,omitempty" json:"author,omitempty"`
	ImageURL  string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
