// Package middleware contains any custom middleware used in the app
package middleware

import (
	"barylstyle/contacts-api/pkg/util"

	"github.com/gin-gonic/gin"
)

const RequestIDHeader = "X-Request-ID"

// NewRequestIDMiddleware returns a new middleware function that generates a request ID for
// each incoming request and sets it as requestID
func NewRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := util.RandStr(10)

		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestID returns the ID assigned by NewRequestIDMiddleware, or an empty
// string when the middleware didn't run
func RequestID(c *gin.Context) string {
	return c.GetString("requestID")
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"message":   msg,
		"requestID": RequestID(c),
	})
}
