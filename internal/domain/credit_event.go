package domain

// CreditEvent Model — one row per applied karma credit (audit trail)
type CreditEvent struct {
	ID        uint    `gorm:"primaryKey" json:"id"`                  // Primary key
	UserID    uint    `gorm:"index;not null" json:"userId"`          // Credited user
	TxHash    string  `json:"txHash"`                                // Claimed transaction hash (not verified on chain)
	Amount    float64 `json:"amount"`                                // Payment amount in ETH (0 for manual credits)
	Karma     int64   `json:"karma"`                                 // Karma awarded
	Source    string  `json:"source"`                                // Credit source: webhook, manual
	CreatedAt int64   `gorm:"autoCreateTime:milli" json:"createdAt"` // Timestamp of creation in milliseconds
}
