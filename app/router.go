// Package app builds the HTTP router and its routes
package app

import (
	"context"
	"net/http"
	"slices"
	"time"

	"barylstyle/contacts-api/app/contact"
	"barylstyle/contacts-api/app/root"
	"barylstyle/contacts-api/app/user"
	"barylstyle/contacts-api/internal"
	"barylstyle/contacts-api/pkg/middleware"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const maxJSONBody = 1 << 20

var store = persist.NewMemoryStore(time.Minute)

// NewRouter registers every route on a new gin engine. ctx bounds the
// lifetime of the router's background cleanup.
func NewRouter(ctx context.Context, d *internal.Deps) *gin.Engine {
	cfg := d.Config
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.Host.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS", "HEAD"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: !slices.Contains(cfg.Host.CORSOrigins, "*"),
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "Method not allowed"})
	})

	jwt := middleware.NewAuthMiddleware(d.Users, []byte(cfg.JWT.Secret))
	turnstile := middleware.NewTurnstileMiddleware(&cfg.Turnstile)
	rateLimiter := middleware.RateLimiterMiddleware(ctx, middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.Security.RateLimit,
		Burst:             cfg.Security.RateLimit * 2,
	})
	jsonBody := middleware.BodySizeLimiter(maxJSONBody)

	m := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)
	}

	u := m.Group("/users")
	{
		// POST /api/users/signup	-> Registers a new user
		u.POST("/signup", turnstile, jsonBody, func(c *gin.Context) { user.UserSignup(c, d) })

		// POST /api/users/login 	-> Logs in a user and returns a session token
		u.POST("/login", jsonBody, func(c *gin.Context) { user.UserLogin(c, d) })

		// GET /api/users/logout	-> Revokes the current session token
		u.GET("/logout", jwt, func(c *gin.Context) { user.UserLogout(c, d) })

		// GET /api/users/current	-> Returns the authenticated user
		u.GET("/current", jwt, func(c *gin.Context) { user.UserCurrent(c, d) })

		// PATCH /api/users/subscription	-> Changes the subscription plan
		u.PATCH("/subscription", jwt, jsonBody, func(c *gin.Context) { user.UserSubscription(c, d) })

		// PATCH /api/users/avatars	-> Uploads a new avatar
		u.PATCH("/avatars", jwt, middleware.BodySizeLimiter(cfg.Avatar.MaxSize), func(c *gin.Context) { user.UserAvatar(c, d) })

		// GET /api/users/verify/:token	-> Verifies an e-mail address
		u.GET("/verify/:token", func(c *gin.Context) { user.UserVerify(c, d) })

		// POST /api/users/verify	-> Sends the verification e-mail again
		u.POST("/verify", jsonBody, func(c *gin.Context) { user.UserResendVerification(c, d) })
	}

	ct := m.Group("/contacts", jwt)
	{
		// GET /api/contacts		-> Lists the user's contacts
		ct.GET("", func(c *gin.Context) { contact.ContactList(c, d) })

		// GET /api/contacts/:id	-> Returns a single contact
		ct.GET("/:id", func(c *gin.Context) { contact.ContactGet(c, d) })

		// POST /api/contacts		-> Creates a contact
		ct.POST("", jsonBody, func(c *gin.Context) { contact.ContactCreate(c, d) })

		// PUT /api/contacts/:id	-> Updates some fields of a contact
		ct.PUT("/:id", jsonBody, func(c *gin.Context) { contact.ContactUpdate(c, d) })

		// PATCH /api/contacts/:id/favorite	-> Marks or unmarks a contact as favorite
		ct.PATCH("/:id/favorite", jsonBody, func(c *gin.Context) { contact.ContactFavorite(c, d) })

		// DELETE /api/contacts/:id	-> Deletes a contact
		ct.DELETE("/:id", func(c *gin.Context) { contact.ContactDelete(c, d) })
	}

	// Avatars stored on S3 are served by the bucket itself
	if cfg.Storage.Type == "local" {
		router.Group(internal.AvatarURLPrefix, cacheVersioned(60)).Static("/", cfg.Storage.LocalDir)
	}

	return router
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}

// cacheVersioned only caches requests carrying a ?v= version. The bare path
// of an avatar changes content on every upload.
func cacheVersioned(sec int) gin.HandlerFunc {
	cached := cacheFor(sec)

	return func(c *gin.Context) {
		if c.Query("v") == "" {
			c.Next()
			return
		}

		cached(c)
	}
}
