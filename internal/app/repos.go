package app

import (
	"gorm.io/gorm"

	repoauth "github.com/finwise/finwise-backend/internal/data/repos/auth"
	repolearning "github.com/finwise/finwise-backend/internal/data/repos/learning"
	repouser "github.com/finwise/finwise-backend/internal/data/repos/user"
	"github.com/finwise/finwise-backend/internal/pkg/logger"
)

type Repos struct {
	User      repouser.UserRepo
	UserToken repoauth.UserTokenRepo
	Progress  repolearning.ProgressRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repouser.NewUserRepo(db, log),
		UserToken: repoauth.NewUserTokenRepo(db, log),
		Progress:  repolearning.NewProgressRepo(db, log),
	}
}
