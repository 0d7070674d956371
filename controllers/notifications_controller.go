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
)

// ---------------- CREATE + SEND ----------------
// Persists the notification, renders the template for its kind, emails
// the target user, then flips is_sent. A row left at is_sent=false
// marks a delivery that never happened; it stays queryable via
// ?sent=false for manual replay.
func CreateNotification(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			UserID  string `json:"user_id" binding:"required"`
			EventID string `json:"event_id"`
			Type    string `json:"type" binding:"required"`
			Message string `json:"message" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// unknown kinds fail before anything is persisted
		kind, err := models.ParseNotificationType(input.Type)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID, err := primitive.ObjectIDFromHex(input.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		var eventID *primitive.ObjectID
		var eventTitle string
		database := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if input.EventID != "" {
			oid, err := primitive.ObjectIDFromHex(input.EventID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
				return
			}
			var event models.Event
			if err := database.Collection("events").FindOne(ctx, bson.M{"_id": oid}).Decode(&event); err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			eventID = &oid
			eventTitle = event.Title
		}

		var user models.User
		if err := database.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		now := time.Now()
		notification := models.Notification{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			EventID:   eventID,
			Type:      kind,
			Message:   input.Message,
			IsSent:    false,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := database.Collection("notifications").InsertOne(ctx, notification); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create notification"})
			return
		}

		subject, body := mail.NotificationEmail(string(kind), user.Name, eventTitle, input.Message)
		if err := cfg.Mailer.Send(c.Request.Context(), user.Email, subject, body); err != nil {
			logger.Log.Error("notification email failed",
				zap.String("notification", notification.ID.Hex()),
				zap.String("email", user.Email),
				zap.Error(err))
			c.JSON(http.StatusCreated, notification)
			return
		}

		if _, err := database.Collection("notifications").UpdateOne(ctx,
			bson.M{"_id": notification.ID},
			bson.M{"$set": bson.M{"is_sent": true, "updated_at": time.Now()}}); err != nil {
			logger.Log.Error("could not mark notification sent",
				zap.String("notification", notification.ID.Hex()),
				zap.Error(err))
		} else {
			notification.IsSent = true
		}

		c.JSON(http.StatusCreated, notification)
	}
}

// ---------------- LIST ----------------
func ListNotifications(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("notifications")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		filter := bson.M{"user_id": userID}
		if c.GetString("role") == string(models.RoleAdmin) {
			// admins can inspect any user's notifications
			if target := c.Query("user_id"); target != "" {
				if oid, err := primitive.ObjectIDFromHex(target); err == nil {
					filter["user_id"] = oid
				}
			}
		}
		if sent := c.Query("sent"); sent != "" {
			filter["is_sent"] = sent == "true"
		}

		cursor, err := col.Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch notifications"})
			return
		}

		var notifications []models.Notification
		if err := cursor.All(ctx, &notifications); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode notifications"})
			return
		}
		if notifications == nil {
			notifications = []models.Notification{}
		}

		c.JSON(http.StatusOK, notifications)
	}
}
