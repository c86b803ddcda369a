package domain

import "time"

// User Model
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`              // Primary key
	Email         string    `gorm:"uniqueIndex;not null" json:"email"` // Unique email, stored lowercase
	Password      string    `gorm:"not null" json:"-"`                 // Bcrypt hash, never serialized
	WalletAddress *string   `gorm:"uniqueIndex" json:"walletAddress"`  // Linked wallet, lowercase; NULLs are exempt from the unique index
	Credits       int64     `gorm:"not null;default:0" json:"credits"` // Karma balance
	CreatedAt     time.Time `json:"createdAt"`                         // Managed by GORM
	UpdatedAt     time.Time `json:"updatedAt"`                         // Managed by GORM
}
