package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/actsofsharing/actsofsharing-api/config"
	"github.com/actsofsharing/actsofsharing-api/logger"
	"github.com/actsofsharing/actsofsharing-api/mail"
	"github.com/actsofsharing/actsofsharing-api/models"
)

// Start registers the two batch jobs: the hourly status sweep and the
// daily reminder run. The returned cron can be stopped on shutdown.
func Start(cfg *config.Config) *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("0 * * * *", func() { SweepEventStatuses(cfg) }); err != nil {
		logger.Log.Fatal("could not schedule status sweep", zap.Error(err))
	}
	if _, err := c.AddFunc("0 8 * * *", func() { SendEventReminders(cfg) }); err != nil {
		logger.Log.Fatal("could not schedule reminders", zap.Error(err))
	}

	c.Start()
	return c
}

// SweepEventStatuses advances time-driven statuses: events whose date
// has passed move from upcoming to ongoing, and events more than three
// hours past their date move from ongoing to completed. Both updates
// are idempotent; re-running with no qualifying events is a no-op.
func SweepEventStatuses(cfg *config.Config) {
	col := cfg.MongoClient.Database(cfg.DBName).Collection("events")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()

	res, err := col.UpdateMany(ctx,
		bson.M{
			"status":   models.StatusUpcoming,
			"is_draft": false,
			"date":     bson.M{"$lte": now},
		},
		bson.M{"$set": bson.M{"status": models.StatusOngoing, "updated_at": now}})
	if err != nil {
		logger.Log.Error("status sweep (upcoming->ongoing) failed", zap.Error(err))
	} else if res.ModifiedCount > 0 {
		logger.Log.Info("events moved to ongoing", zap.Int64("count", res.ModifiedCount))
	}

	res, err = col.UpdateMany(ctx,
		bson.M{
			"status": models.StatusOngoing,
			"date":   bson.M{"$lte": now.Add(-3 * time.Hour)},
		},
		bson.M{"$set": bson.M{"status": models.StatusCompleted, "updated_at": now}})
	if err != nil {
		logger.Log.Error("status sweep (ongoing->completed) failed", zap.Error(err))
	} else if res.ModifiedCount > 0 {
		logger.Log.Info("events moved to completed", zap.Int64("count", res.ModifiedCount))
	}
}

// SendEventReminders emails every invited guest of events happening
// tomorrow. One guest's delivery failure is logged and skipped; it
// never stops the rest of the run.
func SendEventReminders(cfg *config.Config) {
	col := cfg.MongoClient.Database(cfg.DBName).Collection("events")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now()
	tomorrowStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	tomorrowEnd := tomorrowStart.AddDate(0, 0, 1)

	cursor, err := col.Find(ctx, bson.M{
		"status":   models.StatusUpcoming,
		"is_draft": false,
		"date":     bson.M{"$gte": tomorrowStart, "$lt": tomorrowEnd},
	})
	if err != nil {
		logger.Log.Error("reminder query failed", zap.Error(err))
		return
	}

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		logger.Log.Error("reminder decode failed", zap.Error(err))
		return
	}

	for _, event := range events {
		date := event.Date.Format("Monday, January 2")
		if event.Time != "" {
			date += " at " + event.Time
		}
		for _, email := range event.InvitedEmails {
			subject, body := mail.ReminderEmail(event.Title, date, event.Location)
			if err := cfg.Mailer.Send(ctx, email, subject, body); err != nil {
				logger.Log.Error("reminder email failed",
					zap.String("event", event.ID.Hex()),
					zap.String("email", email),
					zap.Error(err))
			}
		}
		logger.Log.Info("reminders dispatched",
			zap.String("event", event.ID.Hex()),
			zap.Int("guests", len(event.InvitedEmails)))
	}
}
