package enrichcondo

import (
	"time"

	"copro-workers/internal/common/config"
)

type Config struct {
	Timeout            time.Duration
	DiagnosticLimit    int
	TransactionLimit   int
	NearbyRadiusMeters float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:            30 * time.Second,
		DiagnosticLimit:    10,
		TransactionLimit:   10,
		NearbyRadiusMeters: 500,
	}
}

func NewConfig(app *config.Config) *Config {
	c := LoadConfig()
	if t := config.GetDuration(config.GetWorkerConfig(app, TaskType).Timeout); t > 0 {
		c.Timeout = t
	}
	if app.Enrichment.DiagnosticLimit > 0 {
		c.DiagnosticLimit = app.Enrichment.DiagnosticLimit
	}
	if app.Enrichment.TransactionLimit > 0 {
		c.TransactionLimit = app.Enrichment.TransactionLimit
	}
	if app.Enrichment.NearbyRadiusMeters > 0 {
		c.NearbyRadiusMeters = app.Enrichment.NearbyRadiusMeters
	}
	return c
}
