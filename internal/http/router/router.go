package router

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/petmarket-trust/internal/config"
	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/http/middleware"
	"github.com/ignatzorin/petmarket-trust/internal/interface/http/handler"
)

// Handlers собирает все обработчики HTTP API.
type Handlers struct {
	Health            *handler.HealthHandler
	WS                *handler.WSHandler
	Verification      *handler.VerificationHandler
	Report            *handler.ReportHandler
	Notification      *handler.NotificationHandler
	AdminVerification *handler.AdminVerificationHandler
	AdminReport       *handler.AdminReportHandler
}

const (
	breederOnlyMessage = "Доступ только для заводчиков"
	adminOnlyMessage   = "Доступ только для администраторов"
)

func SetupRouter(cfg *config.Config, h Handlers, tokens middleware.TokenParser) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if cfg.SentryDSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	if h.Health != nil {
		r.GET("/health", h.Health.Health)
	}

	api := r.Group("/api")
	if h.WS != nil {
		// Токен передаётся в query, браузер не умеет ставить заголовки для WebSocket.
		api.GET("/ws", h.WS.Handle)
	}

	writeLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokens))

	verification := protected.Group("/verification")
	verification.Use(middleware.RequireRole(valueobject.RoleBreeder, breederOnlyMessage))
	{
		verification.POST("", h.Verification.Open)
		verification.POST("/documents", h.Verification.SubmitDocuments)
		verification.GET("/status", h.Verification.Status)
	}

	reports := protected.Group("/reports")
	{
		reports.POST("", writeLimit, h.Report.Create)
		reports.GET("", h.Report.ListMine)
	}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.Notification.List)
		notifications.PUT("/:id/read", middleware.UUIDValidator("id"), h.Notification.MarkAsRead)
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(valueobject.RoleAdmin, adminOnlyMessage))
	{
		admin.GET("/verification/pending", h.AdminVerification.ListPending)
		admin.GET("/verification/:subjectId", h.AdminVerification.Get)
		admin.PUT("/verification/:subjectId", writeLimit, h.AdminVerification.Update)

		admin.GET("/reports", h.AdminReport.List)
		admin.GET("/reports/:reportId", h.AdminReport.Get)
		admin.PUT("/reports/:reportId", writeLimit, h.AdminReport.Update)
		admin.POST("/reports/:reportId/escalate", writeLimit, h.AdminReport.Escalate)
	}

	return r
}
