package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Techtees/civicpro/internal/analytics"
	"github.com/Techtees/civicpro/internal/errors"
	"github.com/Techtees/civicpro/internal/storage"
)

// RouterConfig carries the router's tunables.
type RouterConfig struct {
	CORSOrigins         []string
	RatingRatePerMinute int
	RatingRateBurst     int
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(store storage.Store, svc *analytics.Service, auth *Auth, logger *slog.Logger, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(logger))
	r.Use(errors.RecoveryHandler())
	r.Use(errors.ErrorHandler())
	r.Use(corsMiddleware(cfg.CORSOrigins))

	handlers := NewHandlers(store, svc, auth, logger)
	admin := NewAdminHandlers(store, svc, logger)
	ratingLimiter := NewIPRateLimiter(cfg.RatingRatePerMinute, cfg.RatingRateBurst)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().UTC()})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/politicians", handlers.ListPoliticians)
		apiGroup.GET("/politicians/:id", handlers.GetPolitician)
		apiGroup.GET("/politicians/:id/promises", handlers.ListPromises)
		apiGroup.GET("/politicians/:id/voting-records", handlers.ListVotingRecords)
		apiGroup.GET("/comparison", handlers.GetComparison)
		apiGroup.POST("/ratings", ratingLimiter.Middleware(), handlers.SubmitRating)

		apiGroup.POST("/auth/login", handlers.Login)
		apiGroup.POST("/auth/logout", handlers.Logout)
		apiGroup.GET("/auth/session", auth.RequireAuth(), handlers.Session)
	}

	adminGroup := r.Group("/api/admin", auth.RequireAuth(), auth.RequireAdmin())
	{
		adminGroup.POST("/politicians", admin.CreatePolitician)
		adminGroup.PUT("/politicians/:id", admin.UpdatePolitician)
		adminGroup.DELETE("/politicians/:id", admin.DeletePolitician)

		adminGroup.POST("/promises", admin.CreatePromise)
		adminGroup.PUT("/promises/:id", admin.UpdatePromise)
		adminGroup.DELETE("/promises/:id", admin.DeletePromise)

		adminGroup.GET("/bills", admin.ListBills)
		adminGroup.POST("/bills", admin.CreateBill)
		adminGroup.DELETE("/bills/:id", admin.DeleteBill)

		adminGroup.POST("/voting-records", admin.CreateVotingRecord)
		adminGroup.DELETE("/voting-records/:id", admin.DeleteVotingRecord)

		adminGroup.GET("/ratings/pending", admin.ListPendingRatings)
		adminGroup.PUT("/ratings/:id", admin.ModerateRating)

		adminGroup.GET("/stats", admin.Stats)
		adminGroup.GET("/logs", admin.ListLogs)
	}

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	allowAll := len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		// Credentials cannot be combined with a wildcard origin.
		config.AllowAllOrigins = true
		config.AllowCredentials = false
	} else {
		config.AllowOrigins = origins
	}
	return cors.New(config)
}
