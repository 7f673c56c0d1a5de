package buildtimeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"copro-workers/internal/common/camunda"
	apperrors "copro-workers/internal/common/errors"
	"copro-workers/internal/common/logger"
	"copro-workers/internal/common/metrics"
	"copro-workers/internal/enrichment/timeline"
	"copro-workers/internal/models"
	"copro-workers/internal/store"
)

const (
	TaskType = "build-timeline"
)

var (
	ErrInvalidInput  = errors.New("INVALID_INPUT")
	ErrCondoNotFound = errors.New("CONDO_NOT_FOUND")
	ErrHistoryLookup = errors.New("QUERY_EXECUTION_FAILED")
)

type Handler struct {
	config   *Config
	registry store.Reader
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, registry store.Reader, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		registry: registry,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
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
		code := apperrors.ErrCodeQueryExecutionFailed
		if errors.Is(err, ErrInvalidInput) {
			code = apperrors.ErrCodeInvalidInput
		} else if errors.Is(err, ErrCondoNotFound) {
			code = apperrors.ErrCodeCondoNotFound
		} else if errors.Is(err, context.DeadlineExceeded) {
			code = apperrors.ErrCodeQueryTimeout
		}
		h.failJob(client, job, apperrors.Wrap(code, err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Snapshot == nil && input.CondoID == "" {
		return nil, fmt.Errorf("%w: condoId or snapshot is required", ErrInvalidInput)
	}

	snap, err := store.ResolveSnapshot(ctx, h.registry, input.CondoID, input.Snapshot)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCondoNotFound, input.CondoID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHistoryLookup, err)
	}

	diagnostics, err := h.diagnostics(ctx, snap, input.Diagnostics)
	if err != nil {
		return nil, err
	}
	transactions, err := h.transactions(ctx, snap, input.Transactions)
	if err != nil {
		return nil, err
	}

	events := timeline.BuildTimeline(snap, transactions, diagnostics)

	h.logger.Info("timeline built", map[string]interface{}{
		"condoId":      snap.ID,
		"events":       len(events),
		"diagnostics":  len(diagnostics),
		"transactions": len(transactions),
	})

	return &Output{
		CondoID:    snap.ID,
		Events:     events,
		EventCount: len(events),
	}, nil
}

func (h *Handler) diagnostics(ctx context.Context, snap *models.EntitySnapshot, inline []models.DiagnosticRecord) ([]models.DiagnosticRecord, error) {
	if inline != nil {
		return h.limits().TrimDiagnostics(inline), nil
	}
	diags, err := h.limits().LoadDiagnostics(ctx, h.registry, snap)
	if err != nil {
		return nil, fmt.Errorf("%w: diagnostics: %w", ErrHistoryLookup, err)
	}
	return diags, nil
}

func (h *Handler) transactions(ctx context.Context, snap *models.EntitySnapshot, inline []models.TransactionRecord) ([]models.TransactionRecord, error) {
	if inline != nil {
		return h.limits().TrimTransactions(inline), nil
	}
	txs, err := h.limits().LoadTransactions(ctx, h.registry, snap)
	if err != nil {
		return nil, fmt.Errorf("%w: transactions: %w", ErrHistoryLookup, err)
	}
	return txs, nil
}

func (h *Handler) limits() store.HistoryLimits {
	return store.HistoryLimits{
		Diagnostics:  h.config.DiagnosticLimit,
		Transactions: h.config.TransactionLimit,
		RadiusMeters: h.config.NearbyRadiusMeters,
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
