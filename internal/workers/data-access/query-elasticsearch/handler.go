package queryelasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"

	"copro-workers/internal/common/camunda"
	apperrors "copro-workers/internal/common/errors"
	"copro-workers/internal/common/logger"
	"copro-workers/internal/common/metrics"
	"copro-workers/internal/workers/data-access/query-elasticsearch/queries"
)

const (
	TaskType = "query-elasticsearch"
)

var (
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout     = errors.New("SEARCH_TIMEOUT")
	ErrIndexNotFound     = errors.New("INDEX_NOT_FOUND")
	ErrInvalidQueryType  = errors.New("INVALID_QUERY_TYPE")
	ErrInvalidInput      = errors.New("INVALID_INPUT")
)

type Handler struct {
	config *Config
	client *elasticsearch.Client
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		client: client,
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
		h.failJob(client, job, h.mapError(&input, err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", ErrInvalidInput)
	}

	q := queries.SearchQuery{
		Index:     h.index(input),
		QueryType: input.QueryType,
		Filters:   input.Filters,
		From:      input.Pagination.From,
		Size:      input.Pagination.Size,
	}

	result, err := queries.Execute(ctx, h.client, q)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrUnknownQueryType):
			return nil, fmt.Errorf("%w: %w", ErrInvalidQueryType, err)
		case errors.Is(err, queries.ErrMissingParam), errors.Is(err, queries.ErrMissingIndex):
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		case errors.Is(err, queries.ErrIndexNotFound):
			return nil, fmt.Errorf("%w: %w", ErrIndexNotFound, err)
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: %w", ErrSearchTimeout, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrSearchQueryFailed, err)
		}
	}

	metrics.QueryDuration.WithLabelValues(input.QueryType).Observe(float64(result.Took) / 1000)
	h.logger.Info("search completed", map[string]interface{}{
		"queryType": input.QueryType,
		"totalHits": result.TotalHits,
		"returned":  len(result.Data),
	})

	return &Output{
		Data:      result.Data,
		TotalHits: result.TotalHits,
		MaxScore:  result.MaxScore,
		Took:      result.Took,
	}, nil
}

func (h *Handler) index(input *Input) string {
	if input.IndexName != "" {
		return input.IndexName
	}
	return h.config.Index
}

func (h *Handler) mapError(input *Input, err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidQueryType):
		return apperrors.NewInvalidQueryTypeError(input.QueryType)
	case errors.Is(err, ErrInvalidInput):
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err)
	case errors.Is(err, ErrIndexNotFound):
		return apperrors.NewIndexNotFoundError(h.index(input))
	case errors.Is(err, ErrSearchTimeout):
		return apperrors.Wrap(apperrors.ErrCodeSearchTimeout, err)
	default:
		return apperrors.NewSearchQueryFailedError(input.QueryType, err)
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
