package validatecondosnapshot

import (
	"time"

	"copro-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// FailOnInvalid throws SNAPSHOT_VALIDATION_FAILED instead of
	// completing with valid=false. Jobs can override it per instance.
	FailOnInvalid bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

func NewConfig(app *config.Config) *Config {
	c := LoadConfig()
	if t := config.GetDuration(config.GetWorkerConfig(app, TaskType).Timeout); t > 0 {
		c.Timeout = t
	}
	return c
}
