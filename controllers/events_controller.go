package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/actsofsharing/actsofsharing-api/config"
	"github.com/actsofsharing/actsofsharing-api/logger"
	"github.com/actsofsharing/actsofsharing-api/mail"
	"github.com/actsofsharing/actsofsharing-api/models"
	"github.com/actsofsharing/actsofsharing-api/utils"
)

func parseEventDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return parsed, nil
	}
	layouts := []string{"2006-01-02", "2006-01-02 15:04", "2006-01-02 15:04:05"}
	for _, layout := range layouts {
		if t, e := time.Parse(layout, raw); e == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// ---------------- CREATE ----------------
func CreateEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		hostID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		var input struct {
			Title             string `form:"title"`
			Description       string `form:"description"`
			Date              string `form:"date"`
			Time              string `form:"time"`
			Location          string `form:"location"`
			GuestCount        int    `form:"guest_count"`
			SuggestedDonation int64  `form:"suggested_donation"`
			IsPublic          bool   `form:"is_public"`
			IsDraft           bool   `form:"is_draft"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// drafts skip required-field validation and get defaults
		var date time.Time
		if input.IsDraft {
			if input.Title == "" {
				input.Title = models.DraftTitle
			}
			if input.SuggestedDonation == 0 {
				input.SuggestedDonation = models.DraftSuggestedDonation
			}
		} else {
			if input.Title == "" || input.Date == "" || input.Time == "" || input.Location == "" || input.GuestCount <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "title, date, time, location and guest_count are required to publish"})
				return
			}
		}
		if input.Date != "" {
			date, err = parseEventDate(input.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use RFC3339 or YYYY-MM-DD"})
				return
			}
		}

		// optional cover image
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
				url, err := cfg.Images.Upload(c.Request.Context(), file, "events")
				file.Close()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed", "details": err.Error()})
					return
				}
				imageURL = url
			}
		}

		now := time.Now()
		event := models.Event{
			ID:                primitive.NewObjectID(),
			HostID:            hostID,
			Title:             input.Title,
			Description:       input.Description,
			Date:              date,
			Time:              input.Time,
			Location:          input.Location,
			GuestCount:        input.GuestCount,
			SuggestedDonation: input.SuggestedDonation,
			CurrentAmount:     0,
			Status:            models.StatusUpcoming,
			Guests:            []primitive.ObjectID{},
			InvitedEmails:     []string{},
			Contributions:     []primitive.ObjectID{},
			Messages:          []primitive.ObjectID{},
			ImageURL:          imageURL,
			IsPublic:          input.IsPublic,
			IsDraft:           input.IsDraft,
			ShareURL:          uuid.NewString(),
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		database := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := database.Collection("events").InsertOne(ctx, event); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create event"})
			return
		}

		if _, err := database.Collection("users").UpdateOne(ctx,
			bson.M{"_id": hostID},
			bson.M{"$push": bson.M{"hosted_events": event.ID}}); err != nil {
			logger.Log.Error("could not link event to host", zap.String("event", event.ID.Hex()), zap.Error(err))
		}

		c.JSON(http.StatusCreated, event)
	}
}

// ---------------- LIST (mine / all for admin) ----------------
func ListEvents(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		filter := bson.M{}
		if c.GetString("role") != string(models.RoleAdmin) {
			filter["host_id"] = userID
		}
		if q := c.Query("q"); q != "" {
			filter["title"] = bson.M{"$regex": q, "$options": "i"}
		}
		if status := c.Query("status"); status != "" {
			parsed, err := models.ParseEventStatus(status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			filter["status"] = parsed
		}

		cursor, err := col.Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch events"})
			return
		}

		var events []models.Event
		if err := cursor.All(ctx, &events); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode events"})
			return
		}

		if len(events) == 0 {
			c.JSON(http.StatusOK, []models.Event{})
			return
		}

		latest := events[0]
		for _, ev := range events {
			if ev.UpdatedAt.After(latest.UpdatedAt) {
				latest = ev
			}
		}

		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, events)
	}
}

// ---------------- LIST PUBLIC ----------------
func ListPublicEvents(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		col := cfg.MongoClient.Database(cfg.DBName).Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := col.Find(ctx, bson.M{"is_public": true, "is_draft": false})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch events"})
			return
		}

		var events []models.Event
		if err := cursor.All(ctx, &events); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode events"})
			return
		}
		if events == nil {
			events = []models.Event{}
		}

		c.JSON(http.StatusOK, events)
	}
}

// ---------------- GET ----------------
func GetEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		var event models.Event
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err = cfg.MongoClient.Database(cfg.DBName).
			Collection("events").
			FindOne(ctx, bson.M{"_id": eventID}).
			Decode(&event)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		// drafts and private events are only visible to their host or an admin
		if event.IsDraft || !event.IsPublic {
			if c.GetString("role") != string(models.RoleAdmin) && event.HostID.Hex() != c.GetString("user_id") {
				c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
				return
			}
		}

		etag := utils.GenerateETag(event.ID, event.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		c.JSON(http.StatusOK, event)
	}
}

// ---------------- GET BY SHARE URL ----------------
func GetEventByShareURL(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		shareURL := c.Param("shareUrl")
		if shareURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "share url is required"})
			return
		}

		var event models.Event
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := cfg.MongoClient.Database(cfg.DBName).
			Collection("events").
			FindOne(ctx, bson.M{"share_url": shareURL, "is_draft": false}).
			Decode(&event)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		c.JSON(http.StatusOK, event)
	}
}

// ---------------- UPDATE ----------------
func UpdateEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		requesterID := c.GetString("user_id")

		objID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.Event
		if err := col.FindOne(ctx, bson.M{"_id": objID}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		if role != string(models.RoleAdmin) && existing.HostID.Hex() != requesterID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		var input struct {
			Title             string `form:"title"`
			Description       string `form:"description"`
			Date              string `form:"date"`
			Time              string `form:"time"`
			Location          string `form:"location"`
			GuestCount        int    `form:"guest_count"`
			SuggestedDonation int64  `form:"suggested_donation"`
			IsPublic          *bool  `form:"is_public"`
			IsDraft           *bool  `form:"is_draft"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		update := bson.M{"updated_at": time.Now()}
		if input.Title != "" {
			update["title"] = input.Title
		}
		if input.Description != "" {
			update["description"] = input.Description
		}
		if input.Time != "" {
			update["time"] = input.Time
		}
		if input.Location != "" {
			update["location"] = input.Location
		}
		if input.GuestCount > 0 {
			update["guest_count"] = input.GuestCount
		}
		if input.SuggestedDonation > 0 {
			update["suggested_donation"] = input.SuggestedDonation
		}
		if input.IsPublic != nil {
			update["is_public"] = *input.IsPublic
		}
		if input.Date != "" {
			parsed, err := parseEventDate(input.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use RFC3339 or YYYY-MM-DD"})
				return
			}
			update["date"] = parsed
		}

		// publishing a draft re-runs required-field validation against
		// the merged document
		if input.IsDraft != nil && !*input.IsDraft && existing.IsDraft {
			title := existing.Title
			if input.Title != "" {
				title = input.Title
			}
			evTime := existing.Time
			if input.Time != "" {
				evTime = input.Time
			}
			location := existing.Location
			if input.Location != "" {
				location = input.Location
			}
			guestCount := existing.GuestCount
			if input.GuestCount > 0 {
				guestCount = input.GuestCount
			}
			date := existing.Date
			if d, ok := update["date"].(time.Time); ok {
				date = d
			}
			if title == "" || title == models.DraftTitle || date.IsZero() || evTime == "" || location == "" || guestCount <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "title, date, time, location and guest_count are required to publish"})
				return
			}
			update["is_draft"] = false
		}

		// new cover image
		form, _ := c.MultipartForm()
		if form != nil {
			if files := form.File["image"]; len(files) > 0 {
				file, err := files[0].Open()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open image"})
					return
				}
				url, err := cfg.Images.Upload(c.Request.Context(), file, "events")
				file.Close()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed", "details": err.Error()})
					return
				}
				if existing.ImageURL != "" {
					if err := cfg.Images.Delete(ctx, existing.ImageURL); err != nil {
						logger.Log.Warn("could not delete old event image", zap.Error(err))
					}
				}
				update["image_url"] = url
			}
		}

		if len(update) == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		if _, err := col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update event"})
			return
		}

		var updated models.Event
		if err := col.FindOne(ctx, bson.M{"_id": objID}).Decode(&updated); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve updated event"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "event updated", "event": updated})
	}
}

// ---------------- UPDATE STATUS ----------------
func UpdateEventStatus(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		requesterID := c.GetString("user_id")

		objID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		var input struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		target, err := models.ParseEventStatus(input.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.Event
		if err := col.FindOne(ctx, bson.M{"_id": objID}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		if role != string(models.RoleAdmin) && existing.HostID.Hex() != requesterID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		if !models.CanTransition(existing.Status, target) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "illegal status transition",
				"from":  existing.Status,
				"to":    target,
			})
			return
		}

		if _, err := col.UpdateOne(ctx,
			bson.M{"_id": objID, "status": existing.Status},
			bson.M{"$set": bson.M{"status": target, "updated_at": time.Now()}}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update status"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "status updated", "status": target})
	}
}

// ---------------- INVITE GUESTS ----------------
func InviteGuests(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		requesterID := c.GetString("user_id")

		objID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		var input struct {
			Emails []string `json:"emails" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(input.Emails) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "emails must not be empty"})
			return
		}
		for _, email := range input.Emails {
			if !emailRe.MatchString(email) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address: " + email})
				return
			}
		}

		database := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var event models.Event
		if err := database.Collection("events").FindOne(ctx, bson.M{"_id": objID}).Decode(&event); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		if role != string(models.RoleAdmin) && event.HostID.Hex() != requesterID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		var host models.User
		if err := database.Collection("users").FindOne(ctx, bson.M{"_id": event.HostID}).Decode(&host); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load host"})
			return
		}

		if _, err := database.Collection("events").UpdateOne(ctx,
			bson.M{"_id": objID},
			bson.M{
				"$addToSet": bson.M{"invited_emails": bson.M{"$each": input.Emails}},
				"$set":      bson.M{"updated_at": time.Now()},
			}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record invitations"})
			return
		}

		// invitation emails are best-effort; one bad address must not
		// fail the rest
		shareLink := cfg.FrontendURL + "/e/" + event.ShareURL
		for _, email := range input.Emails {
			subject, body := mail.InviteEmail(host.Name, event.Title, shareLink)
			if err := cfg.Mailer.Send(c.Request.Context(), email, subject, body); err != nil {
				logger.Log.Error("invite email failed",
					zap.String("event", objID.Hex()),
					zap.String("email", email),
					zap.Error(err))
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "guests invited", "count": len(input.Emails)})
	}
}

// ---------------- CREATE FROM TEMPLATE ----------------
func CreateEventFromTemplate(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		hostID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		templateID, err := primitive.ObjectIDFromHex(c.Param("templateId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
			return
		}

		database := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var tpl models.Template
		if err := database.Collection("templates").FindOne(ctx, bson.M{"_id": templateID}).Decode(&tpl); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}

		now := time.Now()
		event := models.Event{
			ID:                primitive.NewObjectID(),
			HostID:            hostID,
			Title:             tpl.Title,
			Description:       tpl.Description,
			Location:          tpl.Location,
			SuggestedDonation: tpl.SuggestedDonation,
			Status:            models.StatusUpcoming,
			Guests:            []primitive.ObjectID{},
			InvitedEmails:     []string{},
			Contributions:     []primitive.ObjectID{},
			Messages:          []primitive.ObjectID{},
			ImageURL:          tpl.ImageURL,
			IsDraft:           true,
			ShareURL:          uuid.NewString(),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if event.Title == "" {
			event.Title = models.DraftTitle
		}
		if event.SuggestedDonation == 0 {
			event.SuggestedDonation = models.DraftSuggestedDonation
		}

		if _, err := database.Collection("events").InsertOne(ctx, event); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create event"})
			return
		}

		if _, err := database.Collection("users").UpdateOne(ctx,
			bson.M{"_id": hostID},
			bson.M{"$push": bson.M{"hosted_events": event.ID}}); err != nil {
			logger.Log.Error("could not link event to host", zap.String("event", event.ID.Hex()), zap.Error(err))
		}

		c.JSON(http.StatusCreated, event)
	}
}

// ---------------- DELETE ----------------
func DeleteEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		requesterID := c.GetString("user_id")

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		database := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var existing models.Event
		if err := database.Collection("events").FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		if role != string(models.RoleAdmin) && existing.HostID.Hex() != requesterID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		res, err := database.Collection("events").DeleteOne(ctx, bson.M{"_id": oid})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete event"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		// prune the host's reference and the cover image; children stay
		// queryable by event_id for auditing
		if _, err := database.Collection("users").UpdateOne(ctx,
			bson.M{"_id": existing.HostID},
			bson.M{"$pull": bson.M{"hosted_events": oid}}); err != nil {
			logger.Log.Error("could not unlink event from host", zap.String("event", oid.Hex()), zap.Error(err))
		}
		if existing.ImageURL != "" {
			if err := cfg.Images.Delete(ctx, existing.ImageURL); err != nil {
				logger.Log.Warn("could not delete event image", zap.Error(err))
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "event deleted", "id": oid.Hex()})
	}
}
