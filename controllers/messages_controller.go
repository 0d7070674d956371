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
	"github.com/actsofsharing/actsofsharing-api/models"
)

// ---------------- CREATE ----------------
func CreateMessage(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		var input struct {
			Content string `json:"content" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		database := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var event models.Event
		if err := database.Collection("events").FindOne(ctx, bson.M{"_id": eventID}).Decode(&event); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		now := time.Now()
		message := models.Message{
			ID:        primitive.NewObjectID(),
			EventID:   eventID,
			AuthorID:  authorID,
			Content:   input.Content,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if _, err := database.Collection("messages").InsertOne(ctx, message); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create message"})
			return
		}

		if _, err := database.Collection("events").UpdateOne(ctx,
			bson.M{"_id": eventID},
			bson.M{"$push": bson.M{"messages": message.ID}}); err != nil {
			logger.Log.Error("could not link message to event",
				zap.String("message", message.ID.Hex()),
				zap.Error(err))
		}

		c.JSON(http.StatusCreated, message)
	}
}

// ---------------- LIST PER EVENT ----------------
func ListEventMessages(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("messages")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := col.Find(ctx, bson.M{"event_id": eventID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch messages"})
			return
		}

		var messages []models.Message
		if err := cursor.All(ctx, &messages); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode messages"})
			return
		}
		if messages == nil {
			messages = []models.Message{}
		}

		c.JSON(http.StatusOK, messages)
	}
}

// ---------------- UPDATE ----------------
func UpdateMessage(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
			return
		}

		var input struct {
			Content string `json:"content" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("messages")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.Message
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}

		// only the author may edit
		if existing.AuthorID.Hex() != c.GetString("user_id") {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		if _, err := col.UpdateOne(ctx,
			bson.M{"_id": oid},
			bson.M{"$set": bson.M{"content": input.Content, "updated_at": time.Now()}}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update message"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "message updated", "id": oid.Hex()})
	}
}

// ---------------- DELETE ----------------
func DeleteMessage(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
			return
		}

		database := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.Message
		if err := database.Collection("messages").FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}

		if c.GetString("role") != string(models.RoleAdmin) && existing.AuthorID.Hex() != c.GetString("user_id") {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		if _, err := database.Collection("messages").DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
			return
		}

		// prune the owning event's message list
		if _, err := database.Collection("events").UpdateOne(ctx,
			bson.M{"_id": existing.EventID},
			bson.M{"$pull": bson.M{"messages": oid}}); err != nil {
			logger.Log.Error("could not unlink message from event",
				zap.String("message", oid.Hex()),
				zap.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{"message": "message deleted", "id": oid.Hex()})
	}
}
