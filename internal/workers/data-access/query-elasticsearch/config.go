package queryelasticsearch

import (
	"time"

	"copro-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// Index is searched when the job does not name one.
	Index string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Index:   "condo_reports",
	}
}

func NewConfig(app *config.Config) *Config {
	c := LoadConfig()
	if t := config.GetDuration(config.GetWorkerConfig(app, TaskType).Timeout); t > 0 {
		c.Timeout = t
	}
	if app.Enrichment.CondoIndex != "" {
		c.Index = app.Enrichment.CondoIndex
	}
	return c
}
