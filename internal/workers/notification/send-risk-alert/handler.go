package sendriskalert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	awsclients "copro-workers/internal/common/aws"
	"copro-workers/internal/common/camunda"
	apperrors "copro-workers/internal/common/errors"
	"copro-workers/internal/common/logger"
	"copro-workers/internal/common/metrics"
	"copro-workers/internal/models"
	"copro-workers/internal/store"
)

const (
	TaskType = "send-risk-alert"
)

var (
	ErrInvalidInput           = errors.New("INVALID_INPUT")
	ErrUnknownTemplate        = errors.New("UNKNOWN_TEMPLATE")
	ErrNoRecipients           = errors.New("NO_RECIPIENTS")
	ErrRegistryRead           = errors.New("QUERY_EXECUTION_FAILED")
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// WatcherStore is the postgres side of the worker.
type WatcherStore interface {
	Watchers(ctx context.Context, condoID string) ([]models.Watcher, error)
	GetEnrichment(ctx context.Context, condoID string) (*models.EnrichmentReport, error)
	RecordNotification(ctx context.Context, n store.Notification) error
}

type Handler struct {
	config    *Config
	store     WatcherStore
	sesClient awsclients.SESService
	snsClient awsclients.SNSService
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(config *Config, watchers WatcherStore, sesClient awsclients.SESService, snsClient awsclients.SNSService, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		store:     watchers,
		sesClient: sesClient,
		snsClient: snsClient,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
		now:       time.Now,
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

type delivery struct {
	watcher models.Watcher
	channel string
	err     error
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CondoID == "" {
		return nil, fmt.Errorf("%w: condoId is required", ErrInvalidInput)
	}
	notificationType := input.NotificationType
	if notificationType == "" {
		notificationType = TypeRiskAlert
	}
	tmpl, ok := templates[notificationType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, notificationType)
	}

	watchers, err := h.store.Watchers(ctx, input.CondoID)
	if err != nil {
		return nil, fmt.Errorf("%w: watchers: %w", ErrRegistryRead, err)
	}
	if len(watchers) == 0 {
		return nil, fmt.Errorf("%w: condo %s", ErrNoRecipients, input.CondoID)
	}

	data, err := h.templateData(ctx, input)
	if err != nil {
		return nil, err
	}
	subject := renderTemplate(tmpl.Subject, data)
	body := renderTemplate(tmpl.Body, data)

	sentAt := h.now().UTC()
	notificationID := uuid.New().String()

	var deliveries []delivery
	for _, w := range watchers {
		if h.config.EmailEnabled && w.Email != "" {
			err := h.sendEmail(ctx, w.Email, subject, body)
			deliveries = append(deliveries, delivery{watcher: w, channel: ChannelEmail, err: err})
		}
		// SMS is reserved for high priority alerts
		if h.config.SMSEnabled && w.Phone != "" && input.Priority == PriorityHigh {
			err := h.sendSMS(ctx, w.Phone, subject+": "+body)
			deliveries = append(deliveries, delivery{watcher: w, channel: ChannelSMS, err: err})
		}
	}

	output := &Output{
		NotificationID: notificationID,
		Recipients:     len(watchers),
		SentAt:         sentAt.Format(time.RFC3339),
	}
	var failures []error
	for _, d := range deliveries {
		status := StatusSent
		if d.err != nil {
			status = StatusFailed
			failures = append(failures, fmt.Errorf("%s to %s: %w", d.channel, d.watcher.ID, d.err))
			h.logger.Error("delivery failed", map[string]interface{}{
				"channel":   d.channel,
				"watcherId": d.watcher.ID,
				"error":     d.err.Error(),
			})
		} else if d.channel == ChannelEmail {
			output.EmailSent++
		} else {
			output.SMSSent++
		}
		metrics.NotificationsSent.WithLabelValues(d.channel, status).Inc()
		h.record(ctx, store.Notification{
			ID:        uuid.New().String(),
			CondoID:   input.CondoID,
			WatcherID: d.watcher.ID,
			Channel:   d.channel,
			Status:    status,
			Subject:   subject,
			CreatedAt: sentAt,
		})
	}

	switch {
	case len(deliveries) == 0:
		output.Status = StatusDisabled
	case len(failures) == len(deliveries):
		return nil, fmt.Errorf("%w: %w", ErrNotificationSendFailed, errors.Join(failures...))
	case len(failures) > 0:
		output.Status = StatusPartial
	default:
		output.Status = StatusSent
	}

	h.logger.Info("risk alert dispatched", map[string]interface{}{
		"notificationId": notificationID,
		"condoId":        input.CondoID,
		"status":         output.Status,
		"emailSent":      output.EmailSent,
		"smsSent":        output.SMSSent,
	})
	return output, nil
}

// templateData merges the latest enrichment report with the job metadata;
// metadata wins.
func (h *Handler) templateData(ctx context.Context, input *Input) (map[string]interface{}, error) {
	data := map[string]interface{}{
		"condoId":   input.CondoID,
		"condoName": input.CondoID,
		"runId":     input.RunID,
	}

	report, err := h.store.GetEnrichment(ctx, input.CondoID)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("%w: enrichment: %w", ErrRegistryRead, err)
	default:
		if report.Name != "" {
			data["condoName"] = report.Name
		}
		data["city"] = report.City
		data["globalScore"] = report.Score.Global
		data["riskScore"] = report.Score.Risk
		data["renovationTotalMax"] = report.Renovation.TotalMax
	}

	for k, v := range input.Metadata {
		data[k] = v
	}
	return data, nil
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, awsclients.EmailInput(h.config.FromEmail, to, subject, body))
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	_, err := h.snsClient.Publish(ctx, awsclients.SMSInput(to, message, h.config.SMSSenderID))
	return err
}

// record logs the delivery; a failed insert does not undo a sent message.
func (h *Handler) record(ctx context.Context, n store.Notification) {
	if err := h.store.RecordNotification(ctx, n); err != nil {
		h.logger.Warn("failed to record notification", map[string]interface{}{
			"notificationId": n.ID,
			"error":          err.Error(),
		})
	}
}

func (h *Handler) mapError(input *Input, err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnknownTemplate):
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err)
	case errors.Is(err, ErrNoRecipients):
		return apperrors.Wrap(apperrors.ErrCodeNoRecipients, err).WithMetadata("condoId", input.CondoID)
	case errors.Is(err, ErrNotificationSendFailed):
		return apperrors.NewNotificationSendFailedError("all", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrCodeQueryTimeout, err)
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
