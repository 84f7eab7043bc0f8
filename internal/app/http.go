package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/finwise/finwise-backend/internal/http"
	httpH "github.com/finwise/finwise-backend/internal/http/handlers"
	httpMW "github.com/finwise/finwise-backend/internal/http/middleware"
	"github.com/finwise/finwise-backend/internal/pkg/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	User     *httpH.UserHandler
	Progress *httpH.ProgressHandler
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Auth:     httpH.NewAuthHandler(services.Auth),
		User:     httpH.NewUserHandler(services.User),
		Progress: httpH.NewProgressHandler(services.Progress),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:             log,
		AuthMiddleware:  middleware.Auth,
		HealthHandler:   handlers.Health,
		AuthHandler:     handlers.Auth,
		UserHandler:     handlers.User,
		ProgressHandler: handlers.Progress,
	})
}
