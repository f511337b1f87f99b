package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/personal-finance-ledger/internal/api_gateway/handler"
	"github.com/personal-finance-ledger/internal/api_gateway/middleware"
	"github.com/personal-finance-ledger/internal/platform/auth"
)

type handlers struct {
	entries      *handler.EntryHandler
	reports      *handler.ReportHandler
	installments *handler.InstallmentHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, provider auth.Provider, h handlers, asyncEnabled bool) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// Health check endpoint for monitoring, no owner required
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Owner(logger, provider))
	{
		entries := v1.Group("/entries")
		{
			entries.POST("", h.entries.Create)
			entries.GET("", h.entries.List)
			entries.GET("/:id", h.entries.GetByID)
			entries.PUT("/:id", h.entries.Update)
			entries.DELETE("/:id", h.entries.Delete)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/summary", h.reports.Summary)
			reports.GET("/categories", h.reports.Categories)
		}

		installments := v1.Group("/installments")
		{
			installments.POST("", h.installments.Create)
			if asyncEnabled {
				installments.POST("/async", h.installments.Submit)
			}
		}
	}
}
