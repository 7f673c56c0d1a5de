package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler reports a failed job to Zeebe: retryable errors fail the job
// with a decremented retry count, the rest are thrown as BPMN errors.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Decide returns the retry count to fail the job with, or false when the
// error must be thrown instead.
func Decide(stdErr *StandardError, jobRetries int32) (int32, bool) {
	budget := int32(GetRetryCount(stdErr.Code))
	if !stdErr.Retryable || budget == 0 || jobRetries <= 1 {
		return 0, false
	}
	return min(jobRetries-1, budget), true
}

func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := AsStandardError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	retries, retry := Decide(stdErr, job.Retries)
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"workflowInstance": job.ProcessInstanceKey,
		"errorCode":        string(stdErr.Code),
		"details":          stdErr.Details,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"retry":            retry,
		"retries":          retries,
	})

	varsJSON, marshalErr := json.Marshal(bpmnErr.ToErrorVariables())

	var sendErr error
	if retry {
		cmd := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(retries).
			ErrorMessage(stdErr.Error())
		withVars, err := cmd.VariablesFromString(string(varsJSON))
		if marshalErr == nil && err == nil {
			_, sendErr = withVars.Send(ctx)
		} else {
			_, sendErr = cmd.Send(ctx)
		}
	} else {
		cmd := client.NewThrowErrorCommand().
			JobKey(job.Key).
			ErrorCode(bpmnErr.Code).
			ErrorMessage(stdErr.Error())
		withVars, err := cmd.VariablesFromString(string(varsJSON))
		if marshalErr == nil && err == nil {
			_, sendErr = withVars.Send(ctx)
		} else {
			_, sendErr = cmd.Send(ctx)
		}
	}

	if sendErr != nil {
		h.logger.Error("failed to report job failure", map[string]interface{}{
			"jobKey": job.Key,
			"error":  sendErr.Error(),
		})
	}
}
