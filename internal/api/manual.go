package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strings"  // Email normalization

	"karma_ledger/internal/domain" // Importing domain models
	"karma_ledger/internal/utils"  // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// manualCreditKarma is the fixed award granted per manual-credit call
// (10 points, the 0.001 ETH tier). The supplied txHash is recorded but not
// verified on chain, and repeated calls with the same hash re-credit.
const manualCreditKarma = 10

// ManualCreditRequest represents a manual karma credit request
type ManualCreditRequest struct {
	TxHash    string `json:"txHash"`    // Claimed transaction hash
	UserEmail string `json:"userEmail"` // Email of the user to credit
}

// ManualCreditHandler is the fallback path for crediting karma when the
// webhook pipeline fails operationally
func ManualCreditHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ManualCreditRequest // Bind JSON request to struct
		_ = c.ShouldBindJSON(&req)  // A broken body leaves both fields empty and fails validation below
		// Validate both fields are present
		if req.TxHash == "" || req.UserEmail == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Missing txHash or userEmail",
			})
			return
		}
		var user domain.User // Find user by email
		email := strings.ToLower(strings.TrimSpace(req.UserEmail))
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				// Unknown user, generic message
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"error":   "User not found",
				})
				return
			}
			logrus.WithField("error", err.Error()).Error("Manual karma credit error")
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Internal server error",
			})
			return
		}
		// The user must already be a wallet holder to receive a recovery credit
		if user.WalletAddress == nil || *user.WalletAddress == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "User has no wallet address",
			})
			return
		}
		oldBalance := user.Credits // Balance before crediting
		// Apply the fixed credit atomically alongside its audit row
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&domain.User{}).Where("id = ?", user.ID).
				UpdateColumn("credits", gorm.Expr("credits + ?", manualCreditKarma)).Error; err != nil {
				return err // Return error to rollback
			}
			event := domain.CreditEvent{
				UserID: user.ID,           // Credited user
				TxHash: req.TxHash,        // Claimed transaction hash
				Karma:  manualCreditKarma, // Fixed award
				Source: "manual",          // Credit source
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
				"tx_hash": req.TxHash,  // Claimed transaction hash
				"error":   err.Error(), // Error message
			}).Error("Manual karma credit error")
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Internal server error",
			})
			return
		}
		// Log successful manual credit
		logrus.WithFields(logrus.Fields{
			"user":        email,                          // Credited user email
			"tx_hash":     req.TxHash,                     // Claimed transaction hash
			"karma_added": manualCreditKarma,              // Fixed award
			"new_balance": oldBalance + manualCreditKarma, // Balance after crediting
		}).Info("Manual karma credit")
		// Invalidate balance and history cache for this user
		if rdb != nil {
			utils.InvalidateUserCache(context.Background(), rdb, user.ID)
		}
		// Return old/new balance and the amount added
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Karma credited successfully",
			"data": gin.H{
				"oldBalance": oldBalance,                     // Balance before crediting
				"newBalance": oldBalance + manualCreditKarma, // Balance after crediting
				"karmaAdded": manualCreditKarma,              // Fixed award
				"txHash":     req.TxHash,                     // Claimed transaction hash
			},
		})
	}
}
