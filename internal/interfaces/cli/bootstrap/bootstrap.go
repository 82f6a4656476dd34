// Package bootstrap loads configuration and opens the shared resources every
// command needs.
package bootstrap

import (
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/leasebot/internal/infrastructure/config"
	"github.com/orris-inc/leasebot/internal/infrastructure/database"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

// Setup loads config for env, initializes logging and the business timezone
// and opens the database. Callers must defer database.Close.
func Setup(env string) (*config.Config, logger.Interface, error) {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = MapEnvToGinMode(cfg.Server.Mode)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode == gin.DebugMode); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Server.Timezone, err)
	}

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cfg, logger.NewLogger(), nil
}

func MapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return gin.ReleaseMode
	case "development", "dev", "debug":
		return gin.DebugMode
	case "test", "testing":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
