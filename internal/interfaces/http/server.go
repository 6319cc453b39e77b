package http

import (
	"net/http"
	"time"

	"github.com/antonkh/budget-approval/internal/application/service"
	"github.com/antonkh/budget-approval/internal/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter assembles the gin router with webhook and admin endpoints
func NewRouter(cfg *config.Config, events *EventHandler, cards *CardHandler, approvals service.ApprovalService, logger *zap.Logger) *gin.Engine {
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "budget-approval",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// Lark webhook endpoints
	router.POST(cfg.Lark.EventPath, events.Handle)
	router.POST(cfg.Lark.CardActionPath, cards.Handle)

	// Admin API endpoints (for monitoring)
	api := router.Group("/api/v1")
	{
		api.GET("/expenses/unpaid", func(c *gin.Context) {
			records, err := approvals.ListUnpaid(c.Request.Context())
			if err != nil {
				logger.Error("Failed to list unpaid records", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list unpaid records"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"records": records})
		})
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
