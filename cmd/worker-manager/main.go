package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	awsclients "copro-workers/internal/common/aws"
	"copro-workers/internal/common/camunda"
	"copro-workers/internal/common/config"
	"copro-workers/internal/common/database"
	"copro-workers/internal/common/logger"
	"copro-workers/internal/common/observability"
	"copro-workers/internal/search"
	"copro-workers/internal/store"
	buildtimeline "copro-workers/internal/workers/condo/build-timeline"
	computehealthscore "copro-workers/internal/workers/condo/compute-health-score"
	enrichcondo "copro-workers/internal/workers/condo/enrich-condo"
	estimaterenovation "copro-workers/internal/workers/condo/estimate-renovation"
	validatecondosnapshot "copro-workers/internal/workers/condo/validate-condo-snapshot"
	queryelasticsearch "copro-workers/internal/workers/data-access/query-elasticsearch"
	querypostgresql "copro-workers/internal/workers/data-access/query-postgresql"
	sendriskalert "copro-workers/internal/workers/notification/send-risk-alert"
	"copro-workers/pkg/registry"
)

// retryWithBackoff doubles the delay after every failed attempt.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, name string) error {
	var err error
	delay := initialDelay
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = operation(); err == nil {
			if attempt > 1 {
				log.Info("connected after retry", zap.String("service", name), zap.Int("attempt", attempt))
			}
			return nil
		}
		if attempt == maxRetries {
			break
		}
		log.Warn("connection attempt failed, retrying",
			zap.String("service", name),
			zap.Int("attempt", attempt),
			zap.Duration("retryIn", delay),
			zap.Error(err),
		)
		time.Sleep(delay)
		delay *= 2
	}
	return fmt.Errorf("%s: giving up after %d attempts: %w", name, maxRetries, err)
}

// observedHandler feeds the OpenTelemetry job instruments next to the
// prometheus counters each handler maintains itself.
type observedHandler struct {
	taskType string
	next     camunda.JobHandler
	obs      *observability.Observability
}

func (h observedHandler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.next.Handle(client, job)
	h.obs.RecordJob(context.Background(), h.taskType, "handled", time.Since(start))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.Build(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting worker manager",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()
	const maxRetries = 5
	const retryDelay = 2 * time.Second

	obs, err := observability.New(cfg.Observability)
	if err != nil {
		zapLog.Fatal("failed to set up observability", zap.Error(err))
	}

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		c, err := camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		if err != nil {
			return err
		}
		zeebe = c
		return nil
	}, cfg.Camunda.ConnectRetries, retryDelay, zapLog, "zeebe")
	if err != nil {
		zapLog.Fatal("failed to create Zeebe client", zap.Error(err))
	}

	// --- PostgreSQL ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("failed to open PostgreSQL", zap.Error(err))
	}
	err = retryWithBackoff(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return pg.Ping(pingCtx)
	}, maxRetries, retryDelay, zapLog, "postgres")
	if err != nil {
		zapLog.Fatal("PostgreSQL unreachable", zap.Error(err))
	}
	if os.Getenv("MIGRATE_ON_START") == "true" {
		if err := store.Migrate(ctx, pg.DB); err != nil {
			zapLog.Fatal("schema migration failed", zap.Error(err))
		}
		zapLog.Info("registry schema migrated")
	}

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return rdb.Ping(pingCtx)
	}, maxRetries, retryDelay, zapLog, "redis")
	if err != nil {
		// the cache degrades to database reads, so redis is not fatal
		zapLog.Warn("Redis unreachable, snapshot cache will miss", zap.Error(err))
	}

	// --- Elasticsearch ---
	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("failed to create Elasticsearch client", zap.Error(err))
	}
	err = retryWithBackoff(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := es.Ping(pingCtx); err != nil {
			return err
		}
		return es.EnsureIndex(pingCtx, cfg.Enrichment.ReportIndex, search.ReportMapping)
	}, maxRetries, retryDelay, zapLog, "elasticsearch")
	if err != nil {
		zapLog.Fatal("Elasticsearch unreachable", zap.Error(err))
	}

	// --- AWS ---
	var sesClient awsclients.SESService
	var snsClient awsclients.SNSService
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		aws, err := awsclients.NewClients(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("failed to load AWS clients", zap.Error(err))
		}
		sesClient, snsClient = aws.SES, aws.SNS
	} else {
		zapLog.Info("notifications disabled, AWS clients not loaded")
	}

	snapshots := store.NewSnapshotStore(pg.DB)
	cached := store.NewCachedSnapshots(snapshots, rdb.Client, cfg.Enrichment.CacheTTL(), log)
	reports := search.NewReportIndex(es.Client, cfg.Enrichment.ReportIndex)

	registrations := []camunda.Registration{
		{
			TaskType: validatecondosnapshot.TaskType,
			Handler:  validatecondosnapshot.NewHandler(validatecondosnapshot.NewConfig(cfg), log),
		},
		{
			TaskType: computehealthscore.TaskType,
			Handler:  computehealthscore.NewHandler(computehealthscore.NewConfig(cfg), cached, log),
		},
		{
			TaskType: estimaterenovation.TaskType,
			Handler:  estimaterenovation.NewHandler(estimaterenovation.NewConfig(cfg), cached, log),
		},
		{
			TaskType: buildtimeline.TaskType,
			Handler:  buildtimeline.NewHandler(buildtimeline.NewConfig(cfg), cached, log),
		},
		{
			TaskType: enrichcondo.TaskType,
			Handler:  enrichcondo.NewHandler(enrichcondo.NewConfig(cfg), cached, snapshots, reports, obs, log),
		},
		{
			TaskType: querypostgresql.TaskType,
			Handler:  querypostgresql.NewHandler(querypostgresql.NewConfig(cfg), cached, log),
		},
		{
			TaskType: queryelasticsearch.TaskType,
			Handler:  queryelasticsearch.NewHandler(queryelasticsearch.NewConfig(cfg), es.Client, log),
		},
		{
			TaskType: sendriskalert.TaskType,
			Handler:  sendriskalert.NewHandler(sendriskalert.NewConfig(cfg), snapshots, sesClient, snsClient, log),
		},
	}

	catalog, err := registry.Default()
	if err != nil {
		zapLog.Fatal("failed to load activity registry", zap.Error(err))
	}

	var workers []worker.JobWorker
	for _, reg := range registrations {
		if _, ok := catalog.Find(reg.TaskType); !ok {
			zapLog.Warn("task type missing from activity registry", zap.String("taskType", reg.TaskType))
		}
		reg.Handler = observedHandler{taskType: reg.TaskType, next: reg.Handler, obs: obs}
		if w := camunda.StartWorker(zeebe.GetClient(), reg, config.GetWorkerConfig(cfg, reg.TaskType), log); w != nil {
			workers = append(workers, w)
		}
	}
	zapLog.Info("workers registered", zap.Int("active", len(workers)), zap.Int("known", len(registrations)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true
		for name, ping := range map[string]func(context.Context) error{
			"postgres":      pg.Ping,
			"redis":         rdb.Ping,
			"elasticsearch": es.Ping,
			"zeebe":         zeebe.HealthCheck,
		} {
			if err := ping(checkCtx); err != nil {
				checks[name] = err.Error()
				// redis only slows reads down
				if name != "redis" {
					ready = false
				}
				continue
			}
			checks[name] = "ok"
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not ready", http.StatusServiceUnavailable
		}
		writeStatus(w, code, map[string]interface{}{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	srv := &http.Server{
		Addr:              cfg.Observability.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("health/metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("health/metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("shutdown signal received, stopping workers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("error stopping health server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("error flushing telemetry", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("error closing Zeebe client", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		zapLog.Error("error closing Redis client", zap.Error(err))
	}
	if err := pg.Close(); err != nil {
		zapLog.Error("error closing PostgreSQL pool", zap.Error(err))
	}

	zapLog.Info("worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
