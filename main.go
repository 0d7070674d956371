package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/actsofsharing/actsofsharing-api/config"
	"github.com/actsofsharing/actsofsharing-api/db"
	"github.com/actsofsharing/actsofsharing-api/jobs"
	"github.com/actsofsharing/actsofsharing-api/logger"
	"github.com/actsofsharing/actsofsharing-api/mail"
	"github.com/actsofsharing/actsofsharing-api/payments"
	"github.com/actsofsharing/actsofsharing-api/routes"
	"github.com/actsofsharing/actsofsharing-api/utils"
)

func main() {
	logger.Init()
	defer logger.Log.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal("invalid configuration", zap.Error(err))
	}

	client, err := db.Connect(context.Background(), cfg.MongoURI)
	if err != nil {
		logger.Log.Fatal("could not connect to mongo", zap.Error(err))
	}
	cfg.MongoClient = client

	if err := db.EnsureIndexes(context.Background(), client, cfg.DBName); err != nil {
		logger.Log.Fatal("could not create indexes", zap.Error(err))
	}

	if cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" {
		cfg.Mailer = mail.NewMailgunSender(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.EmailFrom)
	} else {
		logger.Log.Warn("mailgun not configured, emails will be dropped")
		cfg.Mailer = mail.Noop{}
	}
	cfg.Gateway = payments.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		store, err := utils.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			logger.Log.Fatal("invalid cloudinary configuration", zap.Error(err))
		}
		cfg.Images = store
	} else {
		logger.Log.Warn("cloudinary not configured, image uploads disabled")
		cfg.Images = utils.DisabledImages{}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "If-None-Match"},
		ExposeHeaders:    []string{"ETag", "Last-Modified"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, cfg)

	scheduler := jobs.Start(cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Log.Info("shutting down server...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
	}

	if err := client.Disconnect(ctx); err != nil {
		logger.Log.Error("mongo disconnect failed", zap.Error(err))
	}

	logger.Log.Info("server stopped")
}
