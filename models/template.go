package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Template holds reusable event fields a host can start a draft from.
type Template struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	Location          string             `bson:"location,omitempty" json:"location,omitempty"`
	SuggestedDonation int64              `bson:"suggested_donation" json:"suggested_donation"` // minor units
	ImageURL          string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}
