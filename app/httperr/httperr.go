// Package httperr is the single place where handler errors become HTTP
// responses
package httperr

import (
	"errors"
	"net/http"
	"strings"

	"barylstyle/contacts-api/internal/apperr"
	"barylstyle/contacts-api/pkg/middleware"
	"barylstyle/contacts-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const msgTooLarge = "Request body size exceeds limit"

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "http: request body too large")
}

// Abort writes err as {"message", "requestID"} with the status of its
// apperr kind. Anything outside the taxonomy is logged and reported as a
// generic server error.
func Abort(c *gin.Context, err error) {
	requestID := middleware.RequestID(c)

	if tooLarge(err) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
			"message":   msgTooLarge,
			"requestID": requestID,
		})
		return
	}

	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("Request failed",
			zap.Error(err),
			zap.String("requestID", requestID),
			zap.String("path", c.FullPath()))
	}

	c.AbortWithStatusJSON(status, gin.H{
		"message":   apperr.PublicMessage(err),
		"requestID": requestID,
	})
}

// Bind reports a failed ShouldBind call
func Bind(c *gin.Context, err error) {
	if tooLarge(err) {
		Abort(c, err)
		return
	}

	zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", middleware.RequestID(c)))
	Abort(c, apperr.Validation(validators.Describe(err)))
}
