package controllers

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/actsofsharing/actsofsharing-api/config"
	"github.com/actsofsharing/actsofsharing-api/logger"
	"github.com/actsofsharing/actsofsharing-api/mail"
	"github.com/actsofsharing/actsofsharing-api/models"
	"github.com/actsofsharing/actsofsharing-api/utils"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ---------------- REGISTER ----------------
func Register(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name     string `json:"name" binding:"required"`
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required,min=8"`
			Role     string `json:"role"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if !emailRe.MatchString(input.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
			return
		}

		// roles are a closed set; nobody self-registers as admin
		role := models.RoleParticipant
		if input.Role != "" {
			parsed, err := models.ParseRole(input.Role)
			if err != nil || parsed == models.RoleAdmin {
				c.JSON(http.StatusBadRequest, gin.H{"error": "role must be host or participant"})
				return
			}
			role = parsed
		}

		hash, err := utils.HashPassword(input.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
			return
		}

		now := time.Now()
		user := models.User{
			ID:                primitive.NewObjectID(),
			Name:              input.Name,
			Email:             input.Email,
			PasswordHash:      hash,
			Role:              role,
			IsVerified:        false,
			VerificationToken: uuid.NewString(),
			HostedEvents:      []primitive.ObjectID{},
			Contributions:     []primitive.ObjectID{},
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := col.InsertOne(ctx, user); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
			return
		}

		// verification email is best-effort; the account exists either way
		verifyURL := cfg.FrontendURL + "/verify?token=" + user.VerificationToken
		subject, body := mail.VerificationEmail(user.Name, verifyURL)
		if err := cfg.Mailer.Send(c.Request.Context(), user.Email, subject, body); err != nil {
			logger.Log.Error("verification email failed", zap.String("email", user.Email), zap.Error(err))
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":      user.ID.Hex(),
			"message": "registered, check your email to verify your account",
		})
	}
}

// ---------------- VERIFY EMAIL ----------------
func VerifyEmail(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := col.UpdateOne(ctx,
			bson.M{"verification_token": token, "is_verified": false},
			bson.M{
				"$set":   bson.M{"is_verified": true, "updated_at": time.Now()},
				"$unset": bson.M{"verification_token": ""},
			})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify account"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid or already used verification token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "email verified, you can now log in"})
	}
}

// ---------------- LOGIN ----------------
func Login(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := col.FindOne(ctx, bson.M{"email": input.Email}).Decode(&user); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}

		if !utils.CheckPassword(user.PasswordHash, input.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}

		if !user.IsVerified {
			c.JSON(http.StatusForbidden, gin.H{"error": "account not verified, check your email"})
			return
		}

		token, err := utils.GenerateToken(user.ID.Hex(), string(user.Role), cfg.JWTSecret, cfg.JWTExpiry)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user": gin.H{
				"id":    user.ID.Hex(),
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	}
}

// ---------------- REQUEST PASSWORD RESET ----------------
func RequestPasswordReset(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email string `json:"email" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		database := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// respond 200 either way so the endpoint can't be used to probe
		// which emails have accounts
		var user models.User
		if err := database.Collection("users").FindOne(ctx, bson.M{"email": input.Email}).Decode(&user); err == nil {
			reset := models.PasswordResetToken{
				ID:        primitive.NewObjectID(),
				UserID:    user.ID,
				Token:     uuid.NewString(),
				ExpiresAt: time.Now().Add(time.Hour),
				CreatedAt: time.Now(),
			}
			if _, err := database.Collection("password_reset_tokens").InsertOne(ctx, reset); err != nil {
				logger.Log.Error("could not store reset token", zap.Error(err))
			} else {
				resetURL := cfg.FrontendURL + "/reset-password?token=" + reset.Token
				subject, body := mail.PasswordResetEmail(user.Name, resetURL)
				if err := cfg.Mailer.Send(c.Request.Context(), user.Email, subject, body); err != nil {
					logger.Log.Error("reset email failed", zap.String("email", user.Email), zap.Error(err))
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "if that email has an account, a reset link is on its way"})
	}
}

// ---------------- RESET PASSWORD ----------------
func ResetPassword(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Token    string `json:"token" binding:"required"`
			Password string `json:"password" binding:"required,min=8"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		database := cfg.MongoClient.Database(cfg.DBName)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var reset models.PasswordResetToken
		err := database.Collection("password_reset_tokens").
			FindOne(ctx, bson.M{"token": input.Token, "used": false, "expires_at": bson.M{"$gt": time.Now()}}).
			Decode(&reset)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid or expired reset token"})
			return
		}

		hash, err := utils.HashPassword(input.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
			return
		}

		if _, err := database.Collection("users").UpdateOne(ctx,
			bson.M{"_id": reset.UserID},
			bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now()}}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update password"})
			return
		}

		if _, err := database.Collection("password_reset_tokens").UpdateOne(ctx,
			bson.M{"_id": reset.ID},
			bson.M{"$set": bson.M{"used": true}}); err != nil {
			logger.Log.Error("could not mark reset token used", zap.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{"message": "password updated"})
	}
}
