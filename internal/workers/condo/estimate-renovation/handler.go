package estimaterenovation

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
	"copro-workers/internal/enrichment/renovation"
	"copro-workers/internal/store"
)

const (
	TaskType = "estimate-renovation"
)

var (
	ErrInvalidInput   = errors.New("INVALID_INPUT")
	ErrCondoNotFound  = errors.New("CONDO_NOT_FOUND")
	ErrSnapshotLookup = errors.New("QUERY_EXECUTION_FAILED")
)

type Handler struct {
	config    *Config
	snapshots store.Reader
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, snapshots store.Reader, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		snapshots: snapshots,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
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
		var code apperrors.ErrorCode
		switch {
		case errors.Is(err, ErrInvalidInput):
			code = apperrors.ErrCodeInvalidInput
		case errors.Is(err, ErrCondoNotFound):
			code = apperrors.ErrCodeCondoNotFound
		case errors.Is(err, context.DeadlineExceeded):
			code = apperrors.ErrCodeQueryTimeout
		default:
			code = apperrors.ErrCodeQueryExecutionFailed
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

	snap, err := store.ResolveSnapshot(ctx, h.snapshots, input.CondoID, input.Snapshot)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCondoNotFound, input.CondoID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotLookup, err)
	}

	estimate := renovation.Estimate(snap)
	metrics.ObserveRenovation(estimate)

	h.logger.Info("renovation estimated", map[string]interface{}{
		"condoId":     snap.ID,
		"items":       len(estimate.Items),
		"totalMin":    estimate.TotalMin,
		"totalMax":    estimate.TotalMax,
		"reliability": string(estimate.Reliability),
	})

	return &Output{
		CondoID:     snap.ID,
		Estimate:    estimate,
		ItemCount:   len(estimate.Items),
		TotalMin:    estimate.TotalMin,
		TotalMax:    estimate.TotalMax,
		Reliability: estimate.Reliability,
	}, nil
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
