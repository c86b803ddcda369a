package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"karma_ledger/internal/config"
	"karma_ledger/internal/domain"
	"karma_ledger/internal/middleware"
	"karma_ledger/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Addresses shared across handler tests.
const (
	testReceivingWallet = "0xRRR035Cc6644c002532c692aF58B11306b2ea524"
	testSenderWallet    = "0x742d35Cc6644c002532c692aF58B11306b2ea524"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	rdb    *redis.Client
	cfg    *config.Config
}

// newTestEnv wires the full route table against an in-memory sqlite database
// and a miniredis instance, mirroring cmd/server.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logrus.SetLevel(logrus.ErrorLevel) // Keep pipeline skip logging out of test output

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection so every session sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.CreditEvent{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		ReceivingWallet: testReceivingWallet,
		Network:         "ETH_SEPOLIA",
		Asset:           "ETH",
	}

	r := gin.New()
	r.POST("/api/auth/signup", SignupHandler(db))
	r.POST("/api/auth/login", LoginHandler(db, cfg))
	userGroup := r.Group("/api/user")
	userGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	userGroup.GET("/credits", CreditsHandler(db, rdb))
	userGroup.GET("/credits/history", CreditHistoryHandler(db, rdb))
	userGroup.POST("/wallet", LinkWalletHandler(db))
	r.POST("/api/webhook", WebhookHandler(db, rdb, cfg))
	r.POST("/api/manual-karma-credit", ManualCreditHandler(db, rdb))

	return &testEnv{router: r, db: db, rdb: rdb, cfg: cfg}
}

// createUser inserts a user directly. wallet may be "" for an unlinked user.
func (e *testEnv) createUser(t *testing.T, email, wallet string, credits int64) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{Email: email, Password: string(hash), Credits: credits}
	if wallet != "" {
		user.WalletAddress = &wallet
	}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

// tokenFor mints a valid bearer token for a user.
func (e *testEnv) tokenFor(t *testing.T, user domain.User) string {
	t.Helper()
	token, err := utils.GenerateJWT(user.ID, user.Email, e.cfg.JWTSecret)
	require.NoError(t, err)
	return token
}

// postJSON sends a JSON-marshaled body to the router.
func (e *testEnv) postJSON(t *testing.T, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return e.postRaw(t, path, b, token)
}

// postRaw sends an arbitrary byte body, for payload-shape tests.
func (e *testEnv) postRaw(t *testing.T, path string, body []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// get performs an authenticated GET.
func (e *testEnv) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a JSON response body into a generic map.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// reloadUser fetches the current persisted state of a user.
func (e *testEnv) reloadUser(t *testing.T, id uint) domain.User {
	t.Helper()
	var user domain.User
	require.NoError(t, e.db.First(&user, id).Error)
	return user
}

// notifierPayload builds a valid notification-provider delivery; overrides
// tweak individual activity fields.
func notifierPayload(network string, activity map[string]any) map[string]any {
	base := map[string]any{
		"fromAddress": testSenderWallet,
		"toAddress":   testReceivingWallet,
		"value":       0.01,
		"hash":        "0x123456789abcdef",
		"asset":       "ETH",
	}
	for k, v := range activity {
		base[k] = v
	}
	return map[string]any{
		"event": map[string]any{
			"network":  network,
			"activity": []any{base},
		},
	}
}
