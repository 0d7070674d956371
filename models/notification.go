package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotifyInvite       NotificationType = "invite"
	NotifyReminder     NotificationType = "reminder"
	NotifyContribution NotificationType = "contribution"
	NotifyDisbursement NotificationType = "disbursement"
)

func ParseNotificationType(s string) (NotificationType, error) {
	switch NotificationType(s) {
	case NotifyInvite, NotifyReminder, NotifyContribution, NotifyDisbursement:
		return NotificationType(s), nil
	}
	return "", fmt.Errorf("unknown notification type %q", s)
}

type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	EventID   *primitive.ObjectID `bson:"event_id,omitempty" json:"event_id,omitempty"`
	Type      NotificationType    `bson:"type" json:"type"`
	Message   string              `bson:"message" json:"message"`
	IsSent    bool                `bson:"is_sent" json:"is_sent"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updated_at"`
}
