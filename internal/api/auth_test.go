package api

import (
	"net/http"
	"testing"

	"karma_ledger/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupCreatesUser(t *testing.T) {
	env := newTestEnv(t)

	w := env.postJSON(t, "/api/auth/signup", map[string]any{
		"email":    "test@example.com",
		"password": "password123",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "User created successfully", decodeBody(t, w)["message"])

	var user domain.User
	require.NoError(t, env.db.Where("email = ?", "test@example.com").First(&user).Error)
	assert.Equal(t, int64(0), user.Credits)
	assert.Nil(t, user.WalletAddress)
	// The password is stored hashed, never verbatim
	assert.NotEqual(t, "password123", user.Password)
	assert.Greater(t, len(user.Password), 20)
}

func TestSignupNormalizesEmail(t *testing.T) {
	env := newTestEnv(t)

	w := env.postJSON(t, "/api/auth/signup", map[string]any{
		"email":    "  Test@Example.COM ",
		"password": "password123",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code)
	var user domain.User
	require.NoError(t, env.db.Where("email = ?", "test@example.com").First(&user).Error)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "test@example.com", "", 0)

	w := env.postJSON(t, "/api/auth/signup", map[string]any{
		"email":    "test@example.com",
		"password": "password123",
	}, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already exists", decodeBody(t, w)["error"])
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing email", map[string]any{"password": "password123"}},
		{"missing password", map[string]any{"email": "test@example.com"}},
		{"invalid email format", map[string]any{"email": "invalid-email", "password": "password123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.postJSON(t, "/api/auth/signup", tt.body, "")
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decodeBody(t, w)["error"])
		})
	}
}

func TestLoginReturnsToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "test@example.com", "", 0) // createUser hashes "password123"

	w := env.postJSON(t, "/api/auth/login", map[string]any{
		"email":    "test@example.com",
		"password": "password123",
	}, "")

	require.Equal(t, http.StatusOK, w.Code)
	token, ok := decodeBody(t, w)["token"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, token)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "wrong@example.com", "password123"},
		{"wrong password", "test@example.com", "wrongpassword"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.createUser(t, "test@example.com", "", 0)

			w := env.postJSON(t, "/api/auth/login", map[string]any{
				"email":    tt.email,
				"password": tt.password,
			}, "")

			require.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Invalid credentials", decodeBody(t, w)["error"])
		})
	}
}
