package computehealthscore

import (
	"time"

	"copro-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

// NewConfig applies the task's workers.<task-type> timeout over the defaults.
func NewConfig(app *config.Config) *Config {
	c := LoadConfig()
	if t := config.GetDuration(config.GetWorkerConfig(app, TaskType).Timeout); t > 0 {
		c.Timeout = t
	}
	return c
}
