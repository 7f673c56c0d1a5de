package enrichcondo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"copro-workers/internal/common/camunda"
	apperrors "copro-workers/internal/common/errors"
	"copro-workers/internal/common/logger"
	"copro-workers/internal/common/metrics"
	"copro-workers/internal/enrichment/renovation"
	"copro-workers/internal/enrichment/scoring"
	"copro-workers/internal/enrichment/timeline"
	"copro-workers/internal/models"
	"copro-workers/internal/store"
)

const (
	TaskType = "enrich-condo"
)

var (
	ErrInvalidInput  = errors.New("INVALID_INPUT")
	ErrCondoNotFound = errors.New("CONDO_NOT_FOUND")
	ErrRegistryRead  = errors.New("QUERY_EXECUTION_FAILED")
	ErrPersistFailed = errors.New("ENRICHMENT_PERSIST_FAILED")
	ErrIndexFailed   = errors.New("REPORT_INDEX_FAILED")
)

type ReportStore interface {
	SaveEnrichment(ctx context.Context, report *models.EnrichmentReport) error
}

type ReportIndexer interface {
	IndexReport(ctx context.Context, report *models.EnrichmentReport) error
}

type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
}

type Handler struct {
	config   *Config
	registry store.Reader
	reports  ReportStore
	index    ReportIndexer
	tracer   Tracer
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
	now      func() time.Time
}

// NewHandler wires the enrichment run. index may be nil when search is
// disabled; reports are then only persisted.
func NewHandler(config *Config, registry store.Reader, reports ReportStore, index ReportIndexer, tracer Tracer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		registry: registry,
		reports:  reports,
		index:    index,
		tracer:   tracer,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
		now:      time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	done := metrics.StartJob(TaskType)
	defer done()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.Wrap(apperrors.ErrCodeParseError, err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, h.mapError(err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (out *Output, err error) {
	if input.Snapshot == nil && input.CondoID == "" {
		return nil, fmt.Errorf("%w: condoId or snapshot is required", ErrInvalidInput)
	}

	runID := uuid.New().String()
	ctx, span := h.startSpan(ctx, runID, input.CondoID)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	snap, err := store.ResolveSnapshot(ctx, h.registry, input.CondoID, input.Snapshot)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCondoNotFound, input.CondoID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot: %w", ErrRegistryRead, err)
	}

	diagnostics, transactions, err := h.histories(ctx, snap, input)
	if err != nil {
		return nil, err
	}

	report := h.buildReport(runID, snap, transactions, diagnostics)

	if err := h.reports.SaveEnrichment(ctx, report); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	indexed := false
	if h.index != nil {
		if err := h.index.IndexReport(ctx, report); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIndexFailed, err)
		}
		indexed = true
	}

	metrics.ObserveScore(report.Score)
	metrics.ObserveRenovation(report.Renovation)
	if report.RiskAlert {
		metrics.CondoRiskAlerts.Inc()
	}

	span.SetAttributes(
		attribute.Int("condo.global_score", report.Score.Global),
		attribute.Bool("condo.risk_alert", report.RiskAlert),
	)
	h.logger.Info("condo enriched", map[string]interface{}{
		"runId":       runID,
		"condoId":     report.CondoID,
		"globalScore": report.Score.Global,
		"confidence":  report.Score.Confidence,
		"riskAlert":   report.RiskAlert,
		"items":       len(report.Renovation.Items),
		"events":      len(report.Timeline),
		"indexed":     indexed,
	})

	return &Output{
		RunID:              runID,
		CondoID:            report.CondoID,
		GlobalScore:        report.Score.Global,
		Confidence:         report.Score.Confidence,
		RiskScore:          report.Score.Risk,
		RiskAlert:          report.RiskAlert,
		RenovationTotalMin: report.Renovation.TotalMin,
		RenovationTotalMax: report.Renovation.TotalMax,
		Reliability:        report.Renovation.Reliability,
		EventCount:         len(report.Timeline),
		Indexed:            indexed,
	}, nil
}

func (h *Handler) startSpan(ctx context.Context, runID, condoID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("enrichment.run_id", runID),
		attribute.String("condo.id", condoID),
	}
	if h.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, TaskType)
	}
	return h.tracer.StartSpan(ctx, TaskType, attrs...)
}

// histories loads whichever of the two histories the job did not carry
// inline, and bounds inline ones to the same limits. Both reads run in
// parallel; the first failure cancels the other.
func (h *Handler) histories(ctx context.Context, snap *models.EntitySnapshot, input *Input) ([]models.DiagnosticRecord, []models.TransactionRecord, error) {
	limits := store.HistoryLimits{
		Diagnostics:  h.config.DiagnosticLimit,
		Transactions: h.config.TransactionLimit,
		RadiusMeters: h.config.NearbyRadiusMeters,
	}
	diagnostics := limits.TrimDiagnostics(input.Diagnostics)
	transactions := limits.TrimTransactions(input.Transactions)

	g, ctx := errgroup.WithContext(ctx)
	if diagnostics == nil {
		g.Go(func() error {
			loaded, err := limits.LoadDiagnostics(ctx, h.registry, snap)
			if err != nil {
				return fmt.Errorf("%w: diagnostics: %w", ErrRegistryRead, err)
			}
			diagnostics = loaded
			return nil
		})
	}
	if transactions == nil {
		g.Go(func() error {
			loaded, err := limits.LoadTransactions(ctx, h.registry, snap)
			if err != nil {
				return fmt.Errorf("%w: transactions: %w", ErrRegistryRead, err)
			}
			transactions = loaded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return diagnostics, transactions, nil
}

func (h *Handler) buildReport(runID string, snap *models.EntitySnapshot, transactions []models.TransactionRecord, diagnostics []models.DiagnosticRecord) *models.EnrichmentReport {
	now := h.now().UTC()
	score := scoring.ComputeScore(snap)

	report := &models.EnrichmentReport{
		RunID:       runID,
		CondoID:     snap.ID,
		Slug:        snap.Slug,
		Name:        snap.Name,
		City:        snap.City,
		EnergyClass: snap.EnergyClass,
		ComputedAt:  now,
		Score:       score,
		Renovation:  renovation.Estimate(snap),
		Timeline:    timeline.BuildTimelineAt(snap, transactions, diagnostics, now),
		// any risk penalty at all raises the alert
		RiskAlert: score.Risk < scoring.MaxRisk,
	}
	if snap.HasCoordinates() {
		report.Location = &models.GeoPoint{Lat: *snap.Latitude, Lon: *snap.Longitude}
	}
	return report
}

func (h *Handler) mapError(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err)
	case errors.Is(err, ErrCondoNotFound):
		return apperrors.Wrap(apperrors.ErrCodeCondoNotFound, err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrCodeQueryTimeout, err)
	case errors.Is(err, ErrPersistFailed):
		return apperrors.Wrap(apperrors.ErrCodeEnrichmentPersistFailed, err)
	case errors.Is(err, ErrIndexFailed):
		return apperrors.Wrap(apperrors.ErrCodeReportIndexFailed, err)
	default:
		return apperrors.Wrap(apperrors.ErrCodeQueryExecutionFailed, err)
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	if err := camunda.CompleteJob(context.Background(), client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.JobCompleted(TaskType)
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, stdErr *apperrors.StandardError) {
	metrics.JobFailed(TaskType, string(stdErr.Code))
	h.errors.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
