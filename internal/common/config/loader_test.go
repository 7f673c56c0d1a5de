package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: copro
    user: copro
    password: ${TEST_COPRO_DB_PASSWORD}
  elasticsearch:
    addresses:
      - http://localhost:9200
  redis:
    address: localhost:6379
workers:
  compute-health-score:
    enabled: true
  send-risk-alert:
    enabled: false
    max_retries: 1
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "copro-workers", cfg.App.Name)
	assert.Equal(t, 10, cfg.Camunda.MaxJobsActive)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, 10, cfg.Enrichment.DiagnosticLimit)
	assert.Equal(t, 10, cfg.Enrichment.TransactionLimit)
	assert.Equal(t, 500.0, cfg.Enrichment.NearbyRadiusMeters)
	assert.Equal(t, "condo_reports", cfg.Enrichment.ReportIndex)
	assert.Equal(t, 15*time.Minute, cfg.Enrichment.CacheTTL())
	assert.Equal(t, ":8080", cfg.Observability.MetricsAddr)
	assert.Equal(t, "copro-workers", cfg.Observability.ServiceName)
	assert.Equal(t, "json", cfg.Logging.Format)

	score := cfg.Workers["compute-health-score"]
	assert.Equal(t, 5, score.MaxJobsActive)
	assert.Equal(t, 30000, score.Timeout)
	assert.Equal(t, 3, score.MaxRetries)
	assert.Equal(t, 1, cfg.Workers["send-risk-alert"].MaxRetries)
}

func TestLoadFromFile_EnvExpansionAndOverride(t *testing.T) {
	t.Setenv("TEST_COPRO_DB_PASSWORD", "s3cret")
	t.Setenv("DATABASE_POSTGRES_HOST", "db.internal")

	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "host=db.internal")
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing broker",
			yaml:    "database:\n  postgres:\n    host: h\n",
			wantErr: "camunda.broker_address",
		},
		{
			name: "missing redis",
			yaml: `
camunda: {broker_address: b}
database:
  postgres: {host: h, database: d, user: u}
  elasticsearch: {url: "http://es:9200"}
`,
			wantErr: "database.redis.address",
		},
		{
			name: "email without sender",
			yaml: `
camunda: {broker_address: b}
database:
  postgres: {host: h, database: d, user: u}
  elasticsearch: {url: "http://es:9200"}
  redis: {address: "r:6379"}
notifications:
  email: {enabled: true}
`,
			wantErr: "from_email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestWorkerConfigLookup(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"enrich-condo": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "enrich-condo"))
	assert.True(t, IsWorkerEnabled(cfg, "build-timeline"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "enrich-condo").MaxJobsActive)
	assert.Equal(t, 30000, GetWorkerConfig(cfg, "build-timeline").Timeout)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestElasticsearchURLs(t *testing.T) {
	assert.Equal(t, []string{"http://a:9200"}, ElasticsearchConfig{URL: "http://a:9200"}.GetURLs())
	assert.Equal(t, []string{"http://b:9200"}, ElasticsearchConfig{URL: "http://a:9200", Addresses: []string{"http://b:9200"}}.GetURLs())
	assert.Nil(t, ElasticsearchConfig{}.GetURLs())
}
