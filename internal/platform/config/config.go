package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" env-default:"ballotcore"`
	HTTPPort    string `env:"HTTP_PORT" env-default:"8080"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	// Worker schedules, robfig/cron spec syntax.
	SweepSchedule   string `env:"SWEEP_SCHEDULE" env-default:"@every 60s"`
	CleanupSchedule string `env:"CLEANUP_SCHEDULE" env-default:"@every 1h"`

	// Expired challenges are kept this long past expiry before deletion.
	ChallengeRetention time.Duration `env:"CHALLENGE_RETENTION" env-default:"24h"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment config: %w", err)
	}
	return cfg, nil
}
