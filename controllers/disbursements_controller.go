package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/actsofsharing/actsofsharing-api/config"
	"github.com/actsofsharing/actsofsharing-api/logger"
	"github.com/actsofsharing/actsofsharing-api/mail"
	"github.com/actsofsharing/actsofsharing-api/models"
	"github.com/actsofsharing/actsofsharing-api/utils"
)

// ---------------- CREATE ----------------
func CreateDisbursement(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		requesterID := c.GetString("user_id")

		var input struct {
			EventID       string `json:"event_id" binding:"required"`
			RecipientName string `json:"recipient_name" binding:"required"`
			AccountNumber string `json:"account_number" binding:"required"`
			Amount        int64  `json:"amount" binding:"required"` // minor units
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be greater than 0"})
			return
		}

		eventID, err := primitive.ObjectIDFromHex(input.EventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		database := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var event models.Event
		if err := database.Collection("events").FindOne(ctx, bson.M{"_id": eventID}).Decode(&event); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		if role != string(models.RoleAdmin) && event.HostID.Hex() != requesterID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		if event.DisbursementID != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "event already has a disbursement"})
			return
		}

		// account numbers are never stored in the clear
		ciphertext, nonce, err := utils.Encrypt([]byte(input.AccountNumber), cfg.EncKey)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not encrypt account number"})
			return
		}

		now := time.Now()
		disbursement := models.Disbursement{
			ID:               primitive.NewObjectID(),
			EventID:          eventID,
			RecipientName:    input.RecipientName,
			EncryptedAccount: ciphertext,
			AccountNonce:     nonce,
			Amount:           input.Amount,
			Status:           models.DisbursementPending,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		if _, err := database.Collection("disbursements").InsertOne(ctx, disbursement); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create disbursement"})
			return
		}

		if _, err := database.Collection("events").UpdateOne(ctx,
			bson.M{"_id": eventID},
			bson.M{"$set": bson.M{"disbursement_id": disbursement.ID, "updated_at": now}}); err != nil {
			logger.Log.Error("could not link disbursement to event",
				zap.String("event", eventID.Hex()),
				zap.Error(err))
		}

		c.JSON(http.StatusCreated, disbursement)
	}
}

// ---------------- LIST ----------------
func ListDisbursements(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		filter := bson.M{}
		if role != string(models.RoleAdmin) {
			ids, err := hostEventIDs(ctx, cfg, userID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch events"})
				return
			}
			filter["event_id"] = bson.M{"$in": ids}
		}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}

		cursor, err := cfg.MongoClient.Database(cfg.DBName).Collection("disbursements").Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch disbursements"})
			return
		}

		var disbursements []models.Disbursement
		if err := cursor.All(ctx, &disbursements); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode disbursements"})
			return
		}
		if disbursements == nil {
			disbursements = []models.Disbursement{}
		}

		c.JSON(http.StatusOK, disbursements)
	}
}

// ---------------- GET ----------------
func GetDisbursement(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid disbursement id"})
			return
		}

		var disbursement models.Disbursement
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err = cfg.MongoClient.Database(cfg.DBName).
			Collection("disbursements").
			FindOne(ctx, bson.M{"_id": oid}).
			Decode(&disbursement)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "disbursement not found"})
			return
		}

		c.JSON(http.StatusOK, disbursement)
	}
}

// ---------------- APPROVE ----------------
// Idempotent: approving an already-completed disbursement returns the
// record unchanged.
func ApproveDisbursement(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid disbursement id"})
			return
		}

		database := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var disbursement models.Disbursement
		if err := database.Collection("disbursements").FindOne(ctx, bson.M{"_id": oid}).Decode(&disbursement); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "disbursement not found"})
			return
		}

		if disbursement.Status == models.DisbursementCompleted {
			c.JSON(http.StatusOK, disbursement)
			return
		}

		now := time.Now()
		if _, err := database.Collection("disbursements").UpdateOne(ctx,
			bson.M{"_id": oid},
			bson.M{"$set": bson.M{
				"status":       models.DisbursementCompleted,
				"disbursed_at": now,
				"updated_at":   now,
			}}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not approve disbursement"})
			return
		}

		disbursement.Status = models.DisbursementCompleted
		disbursement.DisbursedAt = &now
		disbursement.UpdatedAt = now

		// tell the host; delivery failure doesn't undo the approval
		var event models.Event
		if err := database.Collection("events").FindOne(ctx, bson.M{"_id": disbursement.EventID}).Decode(&event); err == nil {
			var host models.User
			if err := database.Collection("users").FindOne(ctx, bson.M{"_id": event.HostID}).Decode(&host); err == nil {
				subject, body := mail.DisbursementEmail(host.Name, event.Title, disbursement.Amount)
				if err := cfg.Mailer.Send(ctx, host.Email, subject, body); err != nil {
					logger.Log.Error("disbursement email failed",
						zap.String("email", host.Email),
						zap.Error(err))
				}
			}
		}

		c.JSON(http.StatusOK, disbursement)
	}
}

// ---------------- FLAG ----------------
func FlagDisbursement(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid disbursement id"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("disbursements")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := col.UpdateOne(ctx,
			bson.M{"_id": oid},
			bson.M{"$set": bson.M{"status": models.DisbursementFlagged, "updated_at": time.Now()}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not flag disbursement"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "disbursement not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "disbursement flagged", "id": oid.Hex()})
	}
}
