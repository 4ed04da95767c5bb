package middleware

import (
	"errors"
	"net/http"
	"strings"

	"barylstyle/contacts-api/internal/model"
	"barylstyle/contacts-api/internal/repository"
	"barylstyle/contacts-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const notAuthorized = "Not authorized"

// NewAuthMiddleware guards routes with the bearer session token issued at
// login. The token must verify and also still be the one stored for the
// user, so logging out or logging in again revokes it.
func NewAuthMiddleware(users repository.UserRepository, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := RequestID(c)

		scheme, tokenStr, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || scheme != "Bearer" || tokenStr == "" {
			abort(c, http.StatusUnauthorized, notAuthorized)
			return
		}

		userID, err := security.ParseSessionToken(secret, tokenStr)
		if err != nil {
			zap.L().Debug("Rejected session token", zap.Error(err), zap.String("requestID", requestID))
			abort(c, http.StatusUnauthorized, notAuthorized)
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				abort(c, http.StatusUnauthorized, notAuthorized)
				return
			}

			zap.L().Error("Failed to fetch user for session", zap.Error(err), zap.String("requestID", requestID))
			abort(c, http.StatusInternalServerError, "Server error")
			return
		}

		if user.Token == nil || *user.Token != tokenStr {
			abort(c, http.StatusUnauthorized, notAuthorized)
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// CurrentUser returns the user stored by NewAuthMiddleware
func CurrentUser(c *gin.Context) *model.User {
	return c.MustGet("user").(*model.User)
}
