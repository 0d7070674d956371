package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/actsofsharing/actsofsharing-api/config"
	"github.com/actsofsharing/actsofsharing-api/logger"
	"github.com/actsofsharing/actsofsharing-api/mail"
	"github.com/actsofsharing/actsofsharing-api/models"
	"github.com/actsofsharing/actsofsharing-api/payments"
)

// StripeWebhook reconciles pending contributions against charge state
// reported by the gateway. A bad signature is rejected with 400; once
// the signature checks out the response is always 200, even when
// downstream processing fails. The gateway retries on non-200, and
// those retries would duplicate side effects (emails) this handler
// cannot repeat idempotently.
func StripeWebhook(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read body"})
			return
		}

		event, err := cfg.Gateway.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}

		if event.Type != "charge.updated" {
			// unrecognized kinds are acknowledged and ignored
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		charge, err := payments.ChargeFromEvent(event)
		if err != nil {
			logger.Log.Error("could not parse charge from webhook", zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		var status models.ContributionStatus
		switch charge.Status {
		case "succeeded":
			status = models.ContributionSuccess
		case "failed":
			status = models.ContributionFailed
		default:
			// not a terminal state yet
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		database := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var contribution models.Contribution
		err = database.Collection("contributions").
			FindOne(ctx, bson.M{"payment_intent_id": charge.PaymentIntent.ID}).
			Decode(&contribution)
		if err != nil {
			logger.Log.Error("webhook for unknown payment intent",
				zap.String("payment_intent", charge.PaymentIntent.ID))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		// the filter makes the pending->terminal step atomic: of any
		// concurrent deliveries exactly one modifies the row, and only
		// that one adjusts the total and emails the donor
		res, err := database.Collection("contributions").UpdateOne(ctx,
			bson.M{"_id": contribution.ID, "status": models.ContributionPending},
			bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}})
		if err != nil {
			logger.Log.Error("could not update contribution status",
				zap.String("contribution", contribution.ID.Hex()),
				zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		if res.ModifiedCount == 0 {
			// already reconciled by an earlier delivery
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		// a failed charge never counts toward the running total
		if delta := models.TotalDelta(models.ContributionPending, contribution.Amount, status, contribution.Amount); delta != 0 {
			if _, err := database.Collection("events").UpdateOne(ctx,
				bson.M{"_id": contribution.EventID},
				bson.M{"$inc": bson.M{"current_amount": delta}}); err != nil {
				logger.Log.Error("could not back out failed contribution",
					zap.String("contribution", contribution.ID.Hex()),
					zap.Error(err))
			}
		}

		var donor models.User
		var eventDoc models.Event
		donorErr := database.Collection("users").FindOne(ctx, bson.M{"_id": contribution.UserID}).Decode(&donor)
		eventErr := database.Collection("events").FindOne(ctx, bson.M{"_id": contribution.EventID}).Decode(&eventDoc)
		if donorErr == nil && eventErr == nil {
			var subject, body string
			if status == models.ContributionSuccess {
				subject, body = mail.ContributionReceipt(donor.Name, eventDoc.Title, contribution.Amount)
			} else {
				subject, body = mail.ContributionFailed(donor.Name, eventDoc.Title, contribution.Amount)
			}
			if err := cfg.Mailer.Send(ctx, donor.Email, subject, body); err != nil {
				logger.Log.Error("contribution email failed",
					zap.String("email", donor.Email),
					zap.Error(err))
			}
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
