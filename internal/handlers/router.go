package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/medihack/competency-service/internal/auth"
	"github.com/medihack/competency-service/internal/cache"
	"github.com/medihack/competency-service/internal/config"
	"github.com/medihack/competency-service/internal/metrics"
	"github.com/medihack/competency-service/internal/models"
	"github.com/medihack/competency-service/internal/services"
	"github.com/medihack/competency-service/internal/utils"
)

type HandlerManager struct {
	authHandler       *AuthHandler
	assessmentHandler *AssessmentHandler
	userHandler       *UserHandler
	adminHandler      *AdminHandler
	healthHandler     *HealthHandler
	authMiddleware    *JWTAuthMiddleware
	rateLimiter       *RateLimiter
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokens *auth.TokenManager,
	cm *cache.CacheManager,
	rateLimit config.RateLimitConfig,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Auth(), logger),
		assessmentHandler: NewAssessmentHandler(serviceManager.Assessment(), logger),
		userHandler:       NewUserHandler(serviceManager.User(), logger),
		adminHandler:      NewAdminHandler(serviceManager.Admin(), logger),
		healthHandler:     NewHealthHandler(serviceManager, cm),
		authMiddleware:    NewJWTAuthMiddleware(tokens),
		rateLimiter:       NewRateLimiter(rateLimit),
	}
}

// Close stops the rate limiter's background sweep.
func (hm *HandlerManager) Close() {
	hm.rateLimiter.Stop()
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthHandler.HealthCheck)
	router.GET("/metrics", metrics.PrometheusHandler())

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", hm.authHandler.Register)
		authRoutes.POST("/login", hm.authHandler.Login)
		authRoutes.POST("/admin/login", hm.authHandler.AdminLogin)
	}

	api.GET("/assessment/competencies", hm.assessmentHandler.ListCompetencies)

	// Nurse routes
	nurse := api.Group("")
	nurse.Use(hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireUserMiddleware())
	{
		assessment := nurse.Group("/assessment")
		{
			assessment.POST("/session/start", hm.assessmentHandler.StartSession)
			assessment.POST("/session/complete", hm.assessmentHandler.CompleteSession)
			assessment.GET("/session/:id/results", hm.assessmentHandler.GetSessionResults)

			// Generative routes share a per-user budget
			generative := assessment.Group("")
			generative.Use(RateLimitMiddleware(hm.rateLimiter))
			{
				generative.POST("/scenarios/generate", hm.assessmentHandler.GenerateScenarios)
				generative.POST("/evaluate", hm.assessmentHandler.Evaluate)
				generative.POST("/voice", hm.assessmentHandler.GenerateVoice)
				generative.POST("/summary/consolidated", hm.assessmentHandler.GenerateConsolidatedSummary)
			}
		}

		user := nurse.Group("/user")
		{
			user.GET("/profile", hm.userHandler.GetProfile)
			user.GET("/progress", hm.userHandler.GetProgress)
			user.GET("/history", hm.userHandler.GetHistory)
		}
	}

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
	{
		admin.GET("/nurses", hm.adminHandler.GetNurseRoster)
		admin.GET("/nurses/export", hm.adminHandler.ExportNurseRoster)
	}
}
