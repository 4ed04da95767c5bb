package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"barylstyle/contacts-api/config"
	"barylstyle/contacts-api/db"
	"barylstyle/contacts-api/internal/model"
	"barylstyle/contacts-api/internal/repository"
	"barylstyle/contacts-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(NewRequestIDMiddleware())
	r.Use(mw...)
	r.Any("/", func(c *gin.Context) {
		if c.Request.Body != nil {
			if _, err := io.ReadAll(c.Request.Body); err != nil {
				c.String(http.StatusRequestEntityTooLarge, "too large")
				return
			}
		}
		c.String(http.StatusOK, c.GetString("userID"))
	})
	return r
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, w.Header().Get(RequestIDHeader), 10)
}

func TestAuthMiddleware(t *testing.T) {
	gdb, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	users := repository.NewGormUserRepository(gdb)
	secret := []byte("secret")

	u := &model.User{Email: "ann@example.com", Password: "hash", Subscription: model.SubscriptionStarter}
	require.NoError(t, users.Create(context.Background(), u))

	token, exp, err := security.IssueSessionToken(secret, u.ID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, users.SetToken(context.Background(), u.ID, &token, &exp))

	stale, _, err := security.IssueSessionToken(secret, u.ID, time.Hour)
	require.NoError(t, err)

	ghost, _, err := security.IssueSessionToken(secret, "ghost", time.Hour)
	require.NoError(t, err)

	r := newEngine(NewAuthMiddleware(users, secret))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"not the stored token", "Bearer " + stale, http.StatusUnauthorized},
		{"unknown user", "Bearer " + ghost, http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				body := decodeMessage(t, w)
				assert.Equal(t, "Not authorized", body["message"])
				assert.NotEmpty(t, body["requestID"])
			} else {
				assert.Equal(t, u.ID, w.Body.String())
			}
		})
	}
}

func TestBodySizeLimiter(t *testing.T) {
	r := newEngine(BodySizeLimiter(8))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("way past the limit")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body size exceeds limit", decodeMessage(t, w)["message"])

	// Without a content length the limit is enforced while reading
	req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(strings.NewReader("way past the limit")))
	req.ContentLength = -1
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newEngine(RateLimiterMiddleware(ctx, RateLimiterConfig{RequestsPerSecond: 1, Burst: 2}))

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterDisabled(t *testing.T) {
	r := newEngine(RateLimiterMiddleware(context.Background(), RateLimiterConfig{}))

	for range 20 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestTurnstile(t *testing.T) {
	verifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)

		ok := body["secret"] == "turnstile-secret" && body["response"] == "good"
		json.NewEncoder(w).Encode(map[string]any{"success": ok})
	}))
	defer verifier.Close()

	cfg := &config.TurnstileConfig{Enabled: true, SecretToken: "turnstile-secret"}
	r := newEngine(newTurnstileMiddleware(cfg, verifier.URL))

	send := func(token string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if token != "" {
			req.Header.Set("TurnstileToken", token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusBadRequest, send(""))
	assert.Equal(t, http.StatusUnauthorized, send("bad"))
	assert.Equal(t, http.StatusOK, send("good"))

	cfg.Enabled = false
	assert.Equal(t, http.StatusOK, send(""))
}
