package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/finwise/finwise-backend/internal/http/handlers"
	httpMW "github.com/finwise/finwise-backend/internal/http/middleware"
	"github.com/finwise/finwise-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	AuthHandler     *httpH.AuthHandler
	UserHandler     *httpH.UserHandler
	ProgressHandler *httpH.ProgressHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("finwise-backend"))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/password-reset", cfg.AuthHandler.SendPasswordReset)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/refresh", cfg.AuthHandler.Refresh)
			protected.POST("/logout", cfg.AuthHandler.Logout)
			protected.POST("/verify/send", cfg.AuthHandler.SendVerification)
			protected.POST("/verify/confirm", cfg.AuthHandler.ConfirmVerification)
		}

		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me/learning-style", cfg.UserHandler.SetLearningStyle)
			protected.PATCH("/me/topics", cfg.UserHandler.SetPreferredTopics)
			protected.PATCH("/me/knowledge-level", cfg.UserHandler.SetKnowledgeLevel)
			protected.PATCH("/me/age", cfg.UserHandler.SetAge)
		}

		if cfg.ProgressHandler != nil {
			protected.GET("/progress", cfg.ProgressHandler.Get)
			protected.POST("/progress/init", cfg.ProgressHandler.Init)
			protected.POST("/progress/points", cfg.ProgressHandler.AddPoints)
			protected.POST("/progress/modules/complete", cfg.ProgressHandler.CompleteModule)
			protected.POST("/progress/topics/complete", cfg.ProgressHandler.CompleteTopic)
		}
	}

	return r
}
