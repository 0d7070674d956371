package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/actsofsharing/actsofsharing-api/config"
	"github.com/actsofsharing/actsofsharing-api/models"
)

// ---------------- CREATE ----------------
func CreateContact(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name    string `json:"name" binding:"required"`
			Email   string `json:"email" binding:"required"`
			Subject string `json:"subject"`
			Message string `json:"message" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !emailRe.MatchString(input.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
			return
		}

		contact := models.Contact{
			ID:        primitive.NewObjectID(),
			Name:      input.Name,
			Email:     input.Email,
			Subject:   input.Subject,
			Message:   input.Message,
			CreatedAt: time.Now(),
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("contacts")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := col.InsertOne(ctx, contact); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create contact"})
			return
		}

		c.JSON(http.StatusCreated, contact)
	}
}

// ---------------- LIST ----------------
func ListContacts(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		col := cfg.MongoClient.Database(cfg.DBName).Collection("contacts")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := col.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch contacts"})
			return
		}

		var contacts []models.Contact
		if err := cursor.All(ctx, &contacts); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode contacts"})
			return
		}
		if contacts == nil {
			contacts = []models.Contact{}
		}

		c.JSON(http.StatusOK, contacts)
	}
}

// ---------------- DELETE ----------------
func DeleteContact(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("contacts")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := col.DeleteOne(ctx, bson.M{"_id": oid})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete contact"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "contact deleted", "id": oid.Hex()})
	}
}
