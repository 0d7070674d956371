package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/actsofsharing/actsofsharing-api/config"
	"github.com/actsofsharing/actsofsharing-api/models"
)

// ---------------- NOMINATE STORY ----------------
func NominateStory(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		nominatorID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
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
			Title   string `json:"title" binding:"required"`
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

		// nominations only make sense while the event is gathering stories
		if event.Status != models.StatusStoryCapture {
			c.JSON(http.StatusBadRequest, gin.H{"error": "event is not in story capture"})
			return
		}

		now := time.Now()
		story := models.EventStory{
			ID:          primitive.NewObjectID(),
			EventID:     eventID,
			NominatorID: nominatorID,
			Title:       input.Title,
			Content:     input.Content,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if _, err := database.Collection("event_stories").InsertOne(ctx, story); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not nominate story"})
			return
		}

		c.JSON(http.StatusCreated, story)
	}
}

// ---------------- LIST EVENT STORIES ----------------
func ListEventStories(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("event_stories")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := col.Find(ctx, bson.M{"event_id": eventID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch stories"})
			return
		}

		var stories []models.EventStory
		if err := cursor.All(ctx, &stories); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode stories"})
			return
		}
		if stories == nil {
			stories = []models.EventStory{}
		}

		c.JSON(http.StatusOK, stories)
	}
}

// ---------------- CAST VOTE ----------------
// Public: guests vote by email. The unique index on (event_id,
// voter_email) makes the first vote win and every retry fail with 409,
// however many times it is submitted.
func CastVote(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		var input struct {
			StoryID    string `json:"story_id" binding:"required"`
			VoterEmail string `json:"voter_email" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !emailRe.MatchString(input.VoterEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
			return
		}

		storyID, err := primitive.ObjectIDFromHex(input.StoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid story id"})
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
		if event.Status != models.StatusVoting {
			c.JSON(http.StatusBadRequest, gin.H{"error": "event is not open for voting"})
			return
		}

		var story models.EventStory
		err = database.Collection("event_stories").
			FindOne(ctx, bson.M{"_id": storyID, "event_id": eventID}).
			Decode(&story)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found for this event"})
			return
		}

		vote := models.Vote{
			ID:         primitive.NewObjectID(),
			EventID:    eventID,
			StoryID:    storyID,
			VoterEmail: input.VoterEmail,
			CreatedAt:  time.Now(),
		}

		if _, err := database.Collection("votes").InsertOne(ctx, vote); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "this email has already voted"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record vote"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "vote recorded", "id": vote.ID.Hex()})
	}
}

// ---------------- RESULTS ----------------
func VoteResults(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("votes")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := col.Aggregate(ctx, mongo.Pipeline{
			bson.D{{Key: "$match", Value: bson.M{"event_id": eventID}}},
			bson.D{{Key: "$group", Value: bson.M{"_id": "$story_id", "votes": bson.M{"$sum": 1}}}},
			bson.D{{Key: "$sort", Value: bson.M{"votes": -1}}},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not tally votes"})
			return
		}

		var results []struct {
			StoryID primitive.ObjectID `bson:"_id" json:"story_id"`
			Votes   int                `bson:"votes" json:"votes"`
		}
		if err := cursor.All(ctx, &results); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode results"})
			return
		}

		c.JSON(http.StatusOK, results)
	}
}
