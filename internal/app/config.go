package app

import (
	"time"

	"github.com/finwise/finwise-backend/internal/pkg/envutil"
	"github.com/finwise/finwise-backend/internal/pkg/logger"
)

type Config struct {
	HTTPAddr        string
	Environment     string
	Version         string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	accessTTLSeconds := envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTTLSeconds := envutil.GetEnvAsInt("REFRESH_TOKEN_TTL", 604800, log)
	return Config{
		HTTPAddr:        envutil.GetEnv("HTTP_ADDR", ":8080", log),
		Environment:     envutil.GetEnv("ENVIRONMENT", "development", log),
		Version:         envutil.GetEnv("SERVICE_VERSION", "dev", log),
		JWTSecretKey:    envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL:  time.Duration(accessTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTTLSeconds) * time.Second,
	}
}
