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
func CreateTemplate(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name              string `json:"name" binding:"required"`
			Title             string `json:"title" binding:"required"`
			Description       string `json:"description"`
			Location          string `json:"location"`
			SuggestedDonation int64  `json:"suggested_donation"`
			ImageURL          string `json:"image_url"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		now := time.Now()
		tpl := models.Template{
			ID:                primitive.NewObjectID(),
			Name:              input.Name,
			Title:             input.Title,
			Description:       input.Description,
			Location:          input.Location,
			SuggestedDonation: input.SuggestedDonation,
			ImageURL:          input.ImageURL,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("templates")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := col.InsertOne(ctx, tpl); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create template"})
			return
		}

		c.JSON(http.StatusCreated, tpl)
	}
}

// ---------------- LIST ----------------
func ListTemplates(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		col := cfg.MongoClient.Database(cfg.DBName).Collection("templates")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := col.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch templates"})
			return
		}

		var templates []models.Template
		if err := cursor.All(ctx, &templates); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode templates"})
			return
		}
		if templates == nil {
			templates = []models.Template{}
		}

		c.JSON(http.StatusOK, templates)
	}
}

// ---------------- GET ----------------
func GetTemplate(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
			return
		}

		var tpl models.Template
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err = cfg.MongoClient.Database(cfg.DBName).
			Collection("templates").
			FindOne(ctx, bson.M{"_id": oid}).
			Decode(&tpl)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}

		c.JSON(http.StatusOK, tpl)
	}
}

// ---------------- UPDATE ----------------
func UpdateTemplate(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
			return
		}

		var input struct {
			Name              string `json:"name"`
			Title             string `json:"title"`
			Description       string `json:"description"`
			Location          string `json:"location"`
			SuggestedDonation int64  `json:"suggested_donation"`
			ImageURL          string `json:"image_url"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		update := bson.M{"updated_at": time.Now()}
		if input.Name != "" {
			update["name"] = input.Name
		}
		if input.Title != "" {
			update["title"] = input.Title
		}
		if input.Description != "" {
			update["description"] = input.Description
		}
		if input.Location != "" {
			update["location"] = input.Location
		}
		if input.SuggestedDonation > 0 {
			update["suggested_donation"] = input.SuggestedDonation
		}
		if input.ImageURL != "" {
			update["image_url"] = input.ImageURL
		}

		if len(update) == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("templates")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update template"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "template updated", "id": oid.Hex()})
	}
}

// ---------------- DELETE ----------------
func DeleteTemplate(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("templates")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := col.DeleteOne(ctx, bson.M{"_id": oid})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete template"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "template deleted", "id": oid.Hex()})
	}
}
