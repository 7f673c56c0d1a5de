package validatecondosnapshot

import (
	"bytes"
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
	"copro-workers/internal/common/validation"
	"copro-workers/internal/models"
)

const (
	TaskType = "validate-condo-snapshot"
)

var (
	ErrInvalidInput             = errors.New("INVALID_INPUT")
	ErrSnapshotValidationFailed = errors.New("SNAPSHOT_VALIDATION_FAILED")
)

// ValidationFailure carries the individual problems so they reach the
// BPMN error details.
type ValidationFailure struct {
	Problems []string
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("%s: %d problems", ErrSnapshotValidationFailed, len(e.Problems))
}

func (e *ValidationFailure) Unwrap() error { return ErrSnapshotValidationFailed }

type Handler struct {
	config *Config
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	raw := bytes.TrimSpace(input.Snapshot)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: snapshot is required", ErrInvalidInput)
	}

	result, err := validation.ValidateSnapshot([]byte(raw))
	if err != nil {
		// malformed JSON never reaches the schema
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	output := &Output{Valid: result.Valid, Errors: result.Errors}
	if result.Valid {
		var snap models.EntitySnapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		output.CondoID = snap.ID
	}

	h.logger.Info("snapshot validated", map[string]interface{}{
		"condoId":    output.CondoID,
		"valid":      output.Valid,
		"errorCount": len(output.Errors),
	})

	if !result.Valid && h.failOnInvalid(input) {
		return nil, &ValidationFailure{Problems: result.Messages()}
	}
	return output, nil
}

func (h *Handler) failOnInvalid(input *Input) bool {
	if input.FailOnInvalid != nil {
		return *input.FailOnInvalid
	}
	return h.config.FailOnInvalid
}

func (h *Handler) mapError(err error) *apperrors.StandardError {
	var failure *ValidationFailure
	switch {
	case errors.As(err, &failure):
		return apperrors.NewSnapshotValidationError(failure.Problems)
	case errors.Is(err, ErrInvalidInput):
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err)
	default:
		return apperrors.Wrap(apperrors.ErrCodeInternal, err)
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
