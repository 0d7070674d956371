package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DisbursementStatus string

const (
	DisbursementPending   DisbursementStatus = "pending"
	DisbursementCompleted DisbursementStatus = "completed"
	DisbursementFlagged   DisbursementStatus = "flagged"
)

type Disbursement struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID       primitive.ObjectID `bson:"event_id" json:"event_id"`
	RecipientName string             `bson:"recipient_name" json:"recipient_name"`
	// AES-GCM ciphertext of the account number; nonce stored alongside.
	EncryptedAccount []byte             `bson:"encrypted_account" json:"-"`
	AccountNonce     []byte             `bson:"account_nonce" json:"-"`
	Amount           int64              `bson:"amount" json:"amount"` // minor units
	Status           DisbursementStatus `bson:"status" json:"status"`
	DisbursedAt      *time.Time         `bson:"disbursed_at,omitempty" json:"disbursed_at,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}
