package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
)

// ParseRole rejects anything outside the closed set so free-form role
// strings never reach the database.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleHost, RoleParticipant:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type User struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name              string               `bson:"name" json:"name"`
	Email             string               `bson:"email" json:"email"`
	PasswordHash      string               `bson:"password_hash" json:"-"`
	Role              Role                 `bson:"role" json:"role"`
	IsVerified        bool                 `bson:"is_verified" json:"is_verified"`
	VerificationToken string               `bson:"verification_token,omitempty" json:"-"`
	HostedEvents      []primitive.ObjectID `bson:"hosted_events" json:"hosted_events"`
	Contributions     []primitive.ObjectID `bson:"contributions" json:"contributions"`
	CreatedAt         time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time            `bson:"updated_at" json:"updated_at"`
}
