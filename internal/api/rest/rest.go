package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/commdesk/cts/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig, rateCfg middleware.RateLimitConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// Submission routes share one rate limit bucket per client
	submitLimit := middleware.RateLimit(rateCfg)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Email endpoints
		v1.POST("/emails", middleware.Auth(authCfg), submitLimit, handler.LogEmail)
		v1.GET("/emails", handler.ListEmails)
		v1.GET("/emails/stats", handler.GetEmailStats)

		// Document endpoints
		v1.POST("/documents", middleware.Auth(authCfg), submitLimit, handler.LogDocument)
		v1.GET("/documents", handler.ListDocuments)
		v1.GET("/documents/stats", handler.GetDocumentStats)
		v1.GET("/documents/tracking/:trackingNumber", handler.GetDocumentByTrackingNumber)
		v1.GET("/documents/:id/files", handler.GetDocumentFiles)

		// Status tracking endpoints
		v1.PUT("/status", middleware.Auth(authCfg), submitLimit, handler.UpdateStatus)
		v1.GET("/status/history", handler.GetStatusHistory)
		v1.GET("/status/stats", handler.GetStatusStats)

		// Attachment downloads
		v1.GET("/attachments/:storedName", handler.DownloadAttachment)

		// Report export
		v1.GET("/reports/export", handler.ExportReport)
	}
}
