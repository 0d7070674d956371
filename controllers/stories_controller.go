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
	"github.com/actsofsharing/actsofsharing-api/utils"
)

// ---------------- CREATE ----------------
func CreateStory(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Title   string `form:"title" binding:"required"`
			Content string `form:"content" binding:"required"`
			Author  string `form:"author"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var imageURL string
		form, err := c.MultipartForm()
		if err != nil && err != http.ErrNotMultipart {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
			return
		}
		if form != nil {
			if files := form.File["image"]; len(files) > 0 {
				file, err := files[0].Open()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
					return
				}
				url, err := cfg.Images.Upload(c.Request.Context(), file, "stories")
				file.Close()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed", "details": err.Error()})
					return
				}
				imageURL = url
			}
		}

		now := time.Now()
		story := models.Story{
			ID:        primitive.NewObjectID(),
			Title:     input.Title,
			Content:   input.Content,
			Author:    input.Author,
			ImageURL:  imageURL,
			CreatedAt: now,
			UpdatedAt: now,
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("stories")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := col.InsertOne(ctx, story); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create story"})
			return
		}

		c.JSON(http.StatusCreated, story)
	}
}

// ---------------- LIST ----------------
func ListStories(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		col := cfg.MongoClient.Database(cfg.DBName).Collection("stories")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := col.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch stories"})
			return
		}

		var stories []models.Story
		if err := cursor.All(ctx, &stories); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode stories"})
			return
		}
		if stories == nil {
			stories = []models.Story{}
		}

		c.JSON(http.StatusOK, stories)
	}
}

// ---------------- GET ----------------
func GetStory(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid story id"})
			return
		}

		var story models.Story
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err = cfg.MongoClient.Database(cfg.DBName).
			Collection("stories").
			FindOne(ctx, bson.M{"_id": oid}).
			Decode(&story)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}

		etag := utils.GenerateETag(story.ID, story.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		c.JSON(http.StatusOK, story)
	}
}

// ---------------- UPDATE ----------------
func UpdateStory(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid story id"})
			return
		}

		var input struct {
			Title   string `form:"title"`
			Content string `form:"content"`
			Author  string `form:"author"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		update := bson.M{"updated_at": time.Now()}
		if input.Title != "" {
			update["title"] = input.Title
		}
		if input.Content != "" {
			update["content"] = input.Content
		}
		if input.Author != "" {
			update["author"] = input.Author
		}

		form, _ := c.MultipartForm()
		if form != nil {
			if files := form.File["image"]; len(files) > 0 {
				file, err := files[0].Open()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
					return
				}
				url, err := cfg.Images.Upload(c.Request.Context(), file, "stories")
				file.Close()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed", "details": err.Error()})
					return
				}
				update["image_url"] = url
			}
		}

		if len(update) == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("stories")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update story"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "story updated", "id": oid.Hex()})
	}
}

// ---------------- DELETE ----------------
func DeleteStory(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid story id"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("stories")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.Story
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}

		if _, err := col.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete story"})
			return
		}

		if existing.ImageURL != "" {
			if err := cfg.Images.Delete(ctx, existing.ImageURL); err != nil {
				logger.Log.Warn("could not delete story image", zap.Error(err))
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "story deleted", "id": oid.Hex()})
	}
}
