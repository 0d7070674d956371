package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContributionStatus string

const (
	ContributionPending ContributionStatus = "pending"
	ContributionSuccess ContributionStatus = "success"
	ContributionFailed  ContributionStatus = "failed"
)

// CountsTowardTotal reports whether a contribution in this status is
// included in its event's current_amount.
func (s ContributionStatus) CountsTowardTotal() bool {
	return s == ContributionPending || s == ContributionSuccess
}

// TotalDelta is the single authority for current_amount bookkeeping:
// the value to $inc an event's running total by when a contribution
// moves from (oldStatus, oldAmount) to (newStatus, newAmount). Failed
// contributions never count, so edits to them produce a zero delta and
// a pending charge that fails backs its amount out exactly once.
func TotalDelta(oldStatus ContributionStatus, oldAmount int64, newStatus ContributionStatus, newAmount int64) int64 {
	var delta int64
	if oldStatus.CountsTowardTotal() {
		delta -= oldAmount
	}
	if newStatus.CountsTowardTotal() {
		delta += newAmount
	}
	return delta
}

type Contribution struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID         primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	Amount          int64              `bson:"amount" json:"amount"` // minor units
	PaymentIntentID string             `bson:"payment_intent_id,omitempty" json:"payment_intent_id,omitempty"`
	Status          ContributionStatus `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
