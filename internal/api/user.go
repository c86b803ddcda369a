package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"regexp"   // Wallet address format check
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Time durations

	"karma_ledger/internal/domain" // Importing domain models
	"karma_ledger/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// walletPattern matches a 0x-prefixed 20-byte hex address
var walletPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// CreditsHandler returns the karma balance for the authenticated user
func CreditsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, exists := c.Get("userID")
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}
		ctx := context.Background()                                // Context for Redis operations
		cacheKey := utils.CreditsKey(userID.(uint))                // Cache key for the balance
		var credits int64                                          // Balance to return
		found, err := utils.GetCache(ctx, rdb, cacheKey, &credits) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"credits": credits, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			// Return not found if the user no longer exists
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, user.Credits, 60*time.Second) // Cache the balance for 60 seconds
		c.JSON(http.StatusOK, gin.H{"credits": user.Credits, "cached": false})
	}
}

// WalletRequest represents a wallet-linking request
type WalletRequest struct {
	WalletAddress string `json:"walletAddress"` // Address to link; empty clears the link
}

// LinkWalletHandler sets or clears the wallet address for the authenticated
// user. At most one user may hold a given address.
func LinkWalletHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, exists := c.Get("userID")
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}
		var req WalletRequest // Bind JSON request to struct
		_ = c.ShouldBindJSON(&req)
		addr := strings.TrimSpace(req.WalletAddress)
		// An absent or empty address clears the link
		if addr == "" {
			if err := db.Model(&domain.User{}).Where("id = ?", userID).
				Update("wallet_address", nil).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wallet address"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"walletAddress": nil})
			return
		}
		// Validate the address format before storing
		if !walletPattern.MatchString(addr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet address format"})
			return
		}
		lower := strings.ToLower(addr) // Stored lowercase for case-insensitive matching
		if err := db.Model(&domain.User{}).Where("id = ?", userID).
			Update("wallet_address", lower).Error; err != nil {
			// The unique index rejects an address already held by another user
			c.JSON(http.StatusBadRequest, gin.H{"error": "Wallet address already in use"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"walletAddress": lower})
	}
}

// CreditHistoryHandler returns the credit audit trail for the authenticated
// user, newest first, paginated
func CreditHistoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, exists := c.Get("userID")
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}
		page := 1      // Default page
		pageSize := 20 // Default page size
		// If page exists in query
		if p := c.Query("page"); p != "" {
			// Convert page to integer
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// If page_size exists in query
		if ps := c.Query("page_size"); ps != "" {
			// Convert page_size to integer
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size if valid
			}
		}
		offset := (page - 1) * pageSize // Calculate offset
		ctx := context.Background()     // Context for Redis operations
		cacheKey := utils.HistoryKey(userID.(uint), page, pageSize)
		var cached struct {
			Events     []domain.CreditEvent `json:"events"`      // List of credit events
			Page       int                  `json:"page"`        // Current page
			PageSize   int                  `json:"page_size"`   // Page size
			Total      int64                `json:"total"`       // Total credit events
			TotalPages int                  `json:"total_pages"` // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"events":      cached.Events,     // Cached credit events
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total credit events
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,
			})
			return
		}
		var total int64 // Total count of credit events
		// Count total events for pagination
		if err := db.Model(&domain.CreditEvent{}).
			Where("user_id = ?", userID).
			Count(&total).Error; err != nil {
			// If counting fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count credit events"})
			return
		}
		var events []domain.CreditEvent // Slice to hold credit events
		// Fetch paginated events
		if err := db.Where("user_id = ?", userID).
			Order("created_at desc").
			Offset(offset).
			Limit(pageSize).
			Find(&events).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch credit events"})
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"events":      events,     // List of credit events
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total credit events
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Not from cache
		}
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp) // Return credit history
	}
}
