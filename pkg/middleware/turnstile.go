package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"barylstyle/contacts-api/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const turnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

type turnstileResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// NewTurnstileMiddleware checks the Cloudflare Turnstile token sent in the
// TurnstileToken header. It is a no-op when turnstile is disabled.
func NewTurnstileMiddleware(cfg *config.TurnstileConfig) gin.HandlerFunc {
	return newTurnstileMiddleware(cfg, turnstileVerifyURL)
}

func newTurnstileMiddleware(cfg *config.TurnstileConfig, verifyURL string) gin.HandlerFunc {
	client := &http.Client{Timeout: 10 * time.Second}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		token := c.Request.Header.Get("TurnstileToken")
		if token == "" {
			abort(c, http.StatusBadRequest, "Missing or invalid turnstile token")
			return
		}

		payload, _ := json.Marshal(gin.H{
			"secret":   cfg.SecretToken,
			"response": token,
			"remoteip": c.ClientIP(),
		})

		req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, verifyURL, bytes.NewReader(payload))
		if err != nil {
			abort(c, http.StatusInternalServerError, "Server error")
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			zap.L().Error("Turnstile verification request failed", zap.Error(err), zap.String("requestID", RequestID(c)))
			abort(c, http.StatusUnauthorized, notAuthorized)
			return
		}
		defer resp.Body.Close()

		var res turnstileResponse
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil || !res.Success {
			zap.L().Debug("Turnstile challenge failed", zap.Strings("errorCodes", res.ErrorCodes), zap.String("requestID", RequestID(c)))
			abort(c, http.StatusUnauthorized, notAuthorized)
			return
		}

		c.Next()
	}
}
