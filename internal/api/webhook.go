package api

import (
	"context" // Context for Redis operations
	"encoding/json"
	"io"       // Reading the raw request body
	"net/http" // HTTP status codes
	"strings"  // Case-insensitive comparisons
	"time"     // Timestamps for logging

	"karma_ledger/internal/config" // Injected configuration
	"karma_ledger/internal/domain" // Importing domain models
	"karma_ledger/internal/karma"  // Tier schedule
	"karma_ledger/internal/utils"  // Cache helpers
	"karma_ledger/internal/webhook"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// WebhookHandler processes inbound payment-notification deliveries and
// credits karma to the matching user. Every validation failure is a benign
// skip acknowledged with 200 "OK" so the upstream provider does not retry;
// only infrastructure faults surface as a 400.
func WebhookHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body) // Read the raw payload
		if err != nil || !json.Valid(body) {
			// Syntactically broken delivery is the one client-side fault path
			logrus.WithField("error", "invalid JSON body").Error("Webhook rejected")
			c.String(http.StatusBadRequest, "Error processing webhook")
			return
		}

		logrus.WithFields(logrus.Fields{
			"timestamp": time.Now().Format(time.RFC3339), // Delivery timestamp
			"bytes":     len(body),                       // Payload size
		}).Info("Webhook received")

		p := webhook.Parse(body) // Normalize the untrusted payload
		switch p.Kind {
		case webhook.KindRPC:
			// Raw RPC frames are acknowledged but never credited
			logrus.Info("Skipped: raw RPC payload format")
			c.String(http.StatusOK, "OK")
			return
		case webhook.KindUnrecognized:
			logrus.Info("Skipped: unrecognized payload format")
			c.String(http.StatusOK, "OK")
			return
		}

		// Network check
		if p.Network != cfg.Network {
			logrus.WithField("network", p.Network).Info("Skipped: invalid network")
			c.String(http.StatusOK, "OK")
			return
		}
		// Required-field check, including the configured receiving wallet
		if p.FromAddress == "" || p.ToAddress == "" || p.TxHash == "" || cfg.ReceivingWallet == "" {
			logrus.Info("Skipped: missing required fields")
			c.String(http.StatusOK, "OK")
			return
		}
		// Recipient check: the transfer must be to our receiving wallet
		receiving := strings.ToLower(cfg.ReceivingWallet)
		if p.ToAddress != receiving {
			logrus.WithFields(logrus.Fields{
				"expected": receiving,   // Configured receiving wallet
				"received": p.ToAddress, // Actual recipient
			}).Info("Skipped: transaction not to receiving wallet")
			c.String(http.StatusOK, "OK")
			return
		}
		// Amount check
		if !p.ValueOK || !(p.Value > 0) {
			logrus.WithField("value", p.Value).Info("Skipped: invalid transaction value")
			c.String(http.StatusOK, "OK")
			return
		}
		// Asset check
		if p.Asset != cfg.Asset {
			logrus.WithField("asset", p.Asset).Info("Skipped: invalid asset type")
			c.String(http.StatusOK, "OK")
			return
		}

		// Find user by wallet address (stored lowercase, payload normalized)
		var user domain.User
		if err := db.Where("wallet_address = ?", p.FromAddress).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				// An unregistered sender is a no-op, not an error
				logrus.WithField("wallet", p.FromAddress).Info("Skipped: no user with wallet address")
				c.String(http.StatusOK, "OK")
				return
			}
			logrus.WithField("error", err.Error()).Error("Webhook user lookup failed")
			c.String(http.StatusBadRequest, "Error processing webhook")
			return
		}

		karmaToAdd := karma.ForAmount(p.Value) // Resolve the tier award
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,      // Matched user
			"value":   p.Value,      // Transfer amount
			"karma":   karmaToAdd,   // Award for this tier
			"balance": user.Credits, // Balance before crediting
		}).Info("Karma calculation")

		if karmaToAdd == 0 {
			// Below the lowest threshold
			logrus.Info("No karma added (amount too small)")
			c.String(http.StatusOK, "OK")
			return
		}

		// Apply the credit atomically: a single relative UPDATE so concurrent
		// deliveries for the same user never lose increments
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&domain.User{}).Where("id = ?", user.ID).
				UpdateColumn("credits", gorm.Expr("credits + ?", karmaToAdd)).Error; err != nil {
				return err // Return error to rollback
			}
			// Record the credit in the audit trail
			event := domain.CreditEvent{
				UserID: user.ID,    // Credited user
				TxHash: p.TxHash,   // Claimed transaction hash
				Amount: p.Value,    // Transfer amount
				Karma:  karmaToAdd, // Karma awarded
				Source: "webhook",  // Credit source
			}
			if err := tx.Create(&event).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,     // Credited user
				"tx_hash": p.TxHash,    // Claimed transaction hash
				"karma":   karmaToAdd,  // Karma that failed to apply
				"error":   err.Error(), // Error message
			}).Error("Webhook credit failed")
			c.String(http.StatusBadRequest, "Error processing webhook")
			return
		}

		// Log successful credit
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,    // Credited user
			"email":   user.Email, // Credited user email
			"tx_hash": p.TxHash,   // Claimed transaction hash
			"karma":   karmaToAdd, // Karma awarded
		}).Info("Karma credited from webhook")
		// Invalidate balance and history cache for this user
		if rdb != nil {
			utils.InvalidateUserCache(context.Background(), rdb, user.ID)
		}
		c.String(http.StatusOK, "OK")
	}
}
