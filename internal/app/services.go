package app

import (
	"gorm.io/gorm"

	"github.com/finwise/finwise-backend/internal/pkg/logger"
	"github.com/finwise/finwise-backend/internal/platform/mail"
	"github.com/finwise/finwise-backend/internal/services"
)

type Services struct {
	Auth     services.AuthService
	User     services.UserService
	Progress services.ProgressService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, mailClient mail.Client) Services {
	log.Info("Wiring services...")
	return Services{
		Auth: services.NewAuthService(
			db,
			log,
			repos.User,
			repos.UserToken,
			mailClient,
			cfg.JWTSecretKey,
			cfg.AccessTokenTTL,
			cfg.RefreshTokenTTL,
		),
		User:     services.NewUserService(db, log, repos.User),
		Progress: services.NewProgressService(db, log, repos.Progress),
	}
}
