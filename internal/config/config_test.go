package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SUPPORTED_NETWORK", "")
	t.Setenv("SUPPORTED_ASSET", "")
	t.Setenv("RECEIVING_WALLET", "")

	cfg := LoadConfig()

	assert.Equal(t, "ETH_SEPOLIA", cfg.Network)
	assert.Equal(t, "ETH", cfg.Asset)
	assert.Empty(t, cfg.ReceivingWallet)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("SUPPORTED_NETWORK", "ETH_MAINNET")
	t.Setenv("SUPPORTED_ASSET", "MATIC")
	t.Setenv("RECEIVING_WALLET", "  0xReceivingWallet  ")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("REDIS_DB", "3")

	cfg := LoadConfig()

	assert.Equal(t, "ETH_MAINNET", cfg.Network)
	assert.Equal(t, "MATIC", cfg.Asset)
	assert.Equal(t, "0xReceivingWallet", cfg.ReceivingWallet) // Trimmed
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 3, cfg.RedisDB)
}
