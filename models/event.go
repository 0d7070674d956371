package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventStatus string

const (
	StatusUpcoming     EventStatus = "upcoming"
	StatusOngoing      EventStatus = "ongoing"
	StatusStoryCapture EventStatus = "story_capture"
	StatusVoting       EventStatus = "voting"
	StatusCompleted    EventStatus = "completed"
	StatusCancelled    EventStatus = "cancelled"
)

func ParseEventStatus(s string) (EventStatus, error) {
	switch EventStatus(s) {
	case StatusUpcoming, StatusOngoing, StatusStoryCapture, StatusVoting, StatusCompleted, StatusCancelled:
		return EventStatus(s), nil
	}
	return "", fmt.Errorf("unknown event status %q", s)
}

// allowedTransitions is the single authority for status changes. The
// time-driven path (upcoming -> ongoing -> completed) and the curation
// path (upcoming -> story_capture -> voting -> completed) are edges in
// the same table; completed and cancelled are terminal.
var allowedTransitions = map[EventStatus][]EventStatus{
	StatusUpcoming:     {StatusOngoing, StatusStoryCapture, StatusCancelled},
	StatusOngoing:      {StatusCompleted, StatusStoryCapture, StatusCancelled},
	StatusStoryCapture: {StatusVoting, StatusCancelled},
	StatusVoting:       {StatusCompleted, StatusCancelled},
	StatusCompleted:    {},
	StatusCancelled:    {},
}

func CanTransition(from, to EventStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Draft defaults applied when required-field validation is skipped.
const (
	DraftTitle             = "Untitled Event"
	DraftSuggestedDonation = 100
)

type Event struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	HostID            primitive.ObjectID   `bson:"host_id" json:"host_id"`
	Title             string               `bson:"title" json:"title"`
	Description       string               `bson:"description,omitempty" json:"description,omitempty"`
	Date              time.Time            `bson:"date" json:"date"`
	Time              string               `bson:"time,omitempty" json:"time,omitempty"`
	Location          string               `bson:"location,omitempty" json:"location,omitempty"`
	GuestCount        int                  `bson:"guest_count" json:"guest_count"`
	SuggestedDonation int64                `bson:"suggested_donation" json:"suggested_donation"` // minor units
	CurrentAmount     int64                `bson:"current_amount" json:"current_amount"`         // minor units
	Status            EventStatus          `bson:"status" json:"status"`
	Guests            []primitive.ObjectID `bson:"guests" json:"guests"`
	InvitedEmails     []string             `bson:"invited_emails" json:"invited_emails"`
	Contributions     []primitive.ObjectID `bson:"contributions" json:"contributions"`
	Messages          []primitive.ObjectID `bson:"messages" json:"messages"`
	DisbursementID    *primitive.ObjectID  `bson:"disbursement_id,omitempty" json:"disbursement_id,omitempty"`
	ImageURL          string               `bson:"image_url,omitempty" json:"image_url,omitempty"`
	IsPublic          bool                 `bson:"is_public" json:"is_public"`
	IsDraft           bool                 `bson:"is_draft" json:"is_draft"`
	ShareURL          string               `bson:"share_url" json:"share_url"`
	CreatedAt         time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time            `bson:"updated_at" json:"updated_at"`
}
