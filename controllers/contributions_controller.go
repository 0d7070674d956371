package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/actsofsharing/actsofsharing-api/config"
	"github.com/actsofsharing/actsofsharing-api/logger"
	"github.com/actsofsharing/actsofsharing-api/mail"
	"github.com/actsofsharing/actsofsharing-api/models"
	"github.com/actsofsharing/actsofsharing-api/utils"
)

// hostEventIDs returns the events the caller hosts, for role-scoped
// contribution queries.
func hostEventIDs(ctx context.Context, cfg *config.Config, hostID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := cfg.MongoClient.Database(cfg.DBName).
		Collection("events").
		Find(ctx, bson.M{"host_id": hostID})
	if err != nil {
		return nil, err
	}

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	return ids, nil
}

// ---------------- PROCESS DONATION ----------------
// Public endpoint: reserves a pending contribution, creates the payment
// intent, and returns the client secret so the donor can complete
// payment in the browser. First-time donors get an account created for
// them on the spot.
func ProcessDonation(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			EventID   string `json:"event_id" binding:"required"`
			Firstname string `json:"firstname" binding:"required"`
			Lastname  string `json:"lastname" binding:"required"`
			Email     string `json:"email" binding:"required"`
			Mobile    string `json:"mobile" binding:"required"`
			Amount    int64  `json:"amount" binding:"required"` // minor units
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be greater than 0"})
			return
		}
		if !emailRe.MatchString(input.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
			return
		}

		eventID, err := primitive.ObjectIDFromHex(input.EventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		database := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		var event models.Event
		if err := database.Collection("events").FindOne(ctx, bson.M{"_id": eventID}).Decode(&event); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		// find or create the donor account
		var donor models.User
		err = database.Collection("users").FindOne(ctx, bson.M{"email": input.Email}).Decode(&donor)
		if err != nil {
			tempPassword := "default" + input.Mobile
			hash, err := utils.HashPassword(tempPassword)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create donor account"})
				return
			}

			now := time.Now()
			donor = models.User{
				ID:                primitive.NewObjectID(),
				Name:              input.Firstname + " " + input.Lastname,
				Email:             input.Email,
				PasswordHash:      hash,
				Role:              models.RoleParticipant,
				IsVerified:        false,
				VerificationToken: primitive.NewObjectID().Hex(),
				HostedEvents:      []primitive.ObjectID{},
				Contributions:     []primitive.ObjectID{},
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			if _, err := database.Collection("users").InsertOne(ctx, donor); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create donor account"})
				return
			}

			// credential and verification emails must never abort the
			// donation; log and move on
			subject, body := mail.WelcomeEmail(donor.Name, donor.Email, tempPassword, cfg.FrontendURL+"/login")
			if err := cfg.Mailer.Send(c.Request.Context(), donor.Email, subject, body); err != nil {
				logger.Log.Error("welcome email failed", zap.String("email", donor.Email), zap.Error(err))
			}
			verifyURL := cfg.FrontendURL + "/verify?token=" + donor.VerificationToken
			subject, body = mail.VerificationEmail(donor.Name, verifyURL)
			if err := cfg.Mailer.Send(c.Request.Context(), donor.Email, subject, body); err != nil {
				logger.Log.Error("verification email failed", zap.String("email", donor.Email), zap.Error(err))
			}
		}

		intent, err := cfg.Gateway.CreateIntent(ctx, input.Amount, cfg.Currency, input.Email)
		if err != nil {
			logger.Log.Error("payment intent creation failed", zap.String("event", eventID.Hex()), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
			return
		}

		now := time.Now()
		contribution := models.Contribution{
			ID:              primitive.NewObjectID(),
			EventID:         eventID,
			UserID:          donor.ID,
			Amount:          input.Amount,
			PaymentIntentID: intent.ID,
			Status:          models.ContributionPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if _, err := database.Collection("contributions").InsertOne(ctx, contribution); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create contribution"})
			return
		}

		// running total is kept with atomic $inc so concurrent donations
		// to the same event never lose updates
		if _, err := database.Collection("events").UpdateOne(ctx,
			bson.M{"_id": eventID},
			bson.M{
				"$inc":  bson.M{"current_amount": input.Amount},
				"$push": bson.M{"contributions": contribution.ID},
				"$set":  bson.M{"updated_at": now},
			}); err != nil {
			logger.Log.Error("could not update event total",
				zap.String("event", eventID.Hex()),
				zap.String("contribution", contribution.ID.Hex()),
				zap.Error(err))
		}
		if _, err := database.Collection("users").UpdateOne(ctx,
			bson.M{"_id": donor.ID},
			bson.M{"$push": bson.M{"contributions": contribution.ID}}); err != nil {
			logger.Log.Error("could not link contribution to user", zap.Error(err))
		}

		c.JSON(http.StatusCreated, gin.H{
			"contribution":  contribution,
			"client_secret": intent.ClientSecret,
		})
	}
}

// ---------------- LIST ----------------
// Admins see everything; hosts see contributions to their own events.
func ListContributions(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("contributions")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		filter := bson.M{}
		switch role {
		case string(models.RoleAdmin):
		case string(models.RoleHost):
			ids, err := hostEventIDs(ctx, cfg, userID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch events"})
				return
			}
			filter["event_id"] = bson.M{"$in": ids}
		default:
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		if eventID := c.Query("event_id"); eventID != "" {
			if oid, err := primitive.ObjectIDFromHex(eventID); err == nil {
				filter["event_id"] = oid
			}
		}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}

		cursor, err := col.Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch contributions"})
			return
		}

		var contributions []models.Contribution
		if err := cursor.All(ctx, &contributions); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode contributions"})
			return
		}

		if len(contributions) == 0 {
			c.JSON(http.StatusOK, []models.Contribution{})
			return
		}

		latest := contributions[0]
		for _, ctn := range contributions {
			if ctn.UpdatedAt.After(latest.UpdatedAt) {
				latest = ctn
			}
		}

		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, contributions)
	}
}

// ---------------- TOTAL FUNDS RAISED ----------------
// Sums only settled (success) contributions within the caller's scope.
func GetTotalFundsRaised(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		match := bson.M{"status": models.ContributionSuccess}
		switch role {
		case string(models.RoleAdmin):
		case string(models.RoleHost):
			ids, err := hostEventIDs(ctx, cfg, userID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch events"})
				return
			}
			match["event_id"] = bson.M{"$in": ids}
		default:
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("contributions")
		cursor, err := col.Aggregate(ctx, mongo.Pipeline{
			bson.D{{Key: "$match", Value: match}},
			bson.D{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute total"})
			return
		}

		var results []struct {
			Total int64 `bson:"total"`
		}
		if err := cursor.All(ctx, &results); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode total"})
			return
		}

		var total int64
		if len(results) > 0 {
			total = results[0].Total
		}

		c.JSON(http.StatusOK, gin.H{"total": total})
	}
}

// ---------------- GET ----------------
func GetContribution(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contribution id"})
			return
		}

		var contribution models.Contribution
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err = cfg.MongoClient.Database(cfg.DBName).
			Collection("contributions").
			FindOne(ctx, bson.M{"_id": oid}).
			Decode(&contribution)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "contribution not found"})
			return
		}

		etag := utils.GenerateETag(contribution.ID, contribution.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		c.JSON(http.StatusOK, contribution)
	}
}

// ---------------- UPDATE ----------------
// An amount edit propagates the delta to the owning event's running
// total in the same $inc.
func UpdateContribution(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contribution id"})
			return
		}

		var input struct {
			Amount int64 `json:"amount" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be greater than 0"})
			return
		}

		database := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var existing models.Contribution
		if err := database.Collection("contributions").FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "contribution not found"})
			return
		}

		now := time.Now()
		if _, err := database.Collection("contributions").UpdateOne(ctx,
			bson.M{"_id": oid},
			bson.M{"$set": bson.M{"amount": input.Amount, "updated_at": now}}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update contribution"})
			return
		}

		// failed contributions are not in the total, so editing one
		// must not touch it
		delta := models.TotalDelta(existing.Status, existing.Amount, existing.Status, input.Amount)
		if delta != 0 {
			if _, err := database.Collection("events").UpdateOne(ctx,
				bson.M{"_id": existing.EventID},
				bson.M{
					"$inc": bson.M{"current_amount": delta},
					"$set": bson.M{"updated_at": now},
				}); err != nil {
				logger.Log.Error("could not adjust event total",
					zap.String("event", existing.EventID.Hex()),
					zap.Int64("delta", delta),
					zap.Error(err))
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "contribution updated", "id": oid.Hex()})
	}
}

// ---------------- DELETE ----------------
func DeleteContribution(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contribution id"})
			return
		}

		database := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var existing models.Contribution
		if err := database.Collection("contributions").FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "contribution not found"})
			return
		}

		res, err := database.Collection("contributions").DeleteOne(ctx, bson.M{"_id": oid})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete contribution"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "contribution not found"})
			return
		}

		// compensating adjustments: pull the references from both
		// parents, and subtract the amount only if it was ever counted
		// (the webhook already backed out failed charges)
		now := time.Now()
		eventUpdate := bson.M{
			"$pull": bson.M{"contributions": oid},
			"$set":  bson.M{"updated_at": now},
		}
		if existing.Status.CountsTowardTotal() {
			eventUpdate["$inc"] = bson.M{"current_amount": -existing.Amount}
		}
		if _, err := database.Collection("events").UpdateOne(ctx,
			bson.M{"_id": existing.EventID},
			eventUpdate); err != nil {
			logger.Log.Error("could not adjust event after delete",
				zap.String("event", existing.EventID.Hex()),
				zap.Error(err))
		}
		if _, err := database.Collection("users").UpdateOne(ctx,
			bson.M{"_id": existing.UserID},
			bson.M{"$pull": bson.M{"contributions": oid}}); err != nil {
			logger.Log.Error("could not unlink contribution from user", zap.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{"message": "contribution deleted", "id": oid.Hex()})
	}
}
