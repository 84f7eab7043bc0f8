package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/finwise/finwise-backend/internal/data/db"
	"github.com/finwise/finwise-backend/internal/observability"
	"github.com/finwise/finwise-backend/internal/pkg/logger"
	"github.com/finwise/finwise-backend/internal/platform/mail"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services

	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "finwise-backend",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	mailClient := mail.NewFromEnv(log)

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, mailClient)
	handlerset := wireHandlers(log, serviceset)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(a.Cfg.HTTPAddr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		a.otelShutdown = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
