package config

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/actsofsharing/actsofsharing-api/mail"
	"github.com/actsofsharing/actsofsharing-api/payments"
	"github.com/actsofsharing/actsofsharing-api/utils"
)

type Config struct {
	Port      string        `env:"PORT" envDefault:"8080"`
	MongoURI  string        `env:"MONGO_URI,required"`
	DBName    string        `env:"DB_NAME" envDefault:"actsofsharing"`
	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`

	// 64 hex chars (32 bytes) for AES-256-GCM
	EncryptionKey string `env:"ENCRYPTION_KEY,required"`

	MailgunDomain string `env:"MAILGUN_DOMAIN"`
	MailgunAPIKey string `env:"MAILGUN_API_KEY"`
	EmailFrom     string `env:"EMAIL_FROM" envDefault:"Acts of Sharing <no-reply@actsofsharing.com>"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	Currency            string `env:"CURRENCY" envDefault:"usd"`

	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// wired at startup, not from env
	MongoClient *mongo.Client    `env:"-"`
	EncKey      []byte           `env:"-"`
	Mailer      mail.Sender      `env:"-"`
	Gateway     payments.Gateway `env:"-"`
	Images      utils.ImageStore `env:"-"`
}

// Load reads .env (if present) and the process environment, and fails
// fast when a required variable is missing or malformed so the server
// never starts half-configured.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	key, err := hex.DecodeString(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be 32 bytes (64 hex chars), got %d bytes", len(key))
	}
	cfg.EncKey = key

	return &cfg, nil
}
