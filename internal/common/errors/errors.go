// Package errors maps worker failures onto BPMN error codes and retry
// budgets understood by the process models.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeParseError               ErrorCode = "PARSE_ERROR"
	ErrCodeInvalidInput             ErrorCode = "INVALID_INPUT"
	ErrCodeCondoNotFound            ErrorCode = "CONDO_NOT_FOUND"
	ErrCodeSnapshotValidationFailed ErrorCode = "SNAPSHOT_VALIDATION_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeInvalidQueryType         ErrorCode = "INVALID_QUERY_TYPE"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound     ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeEnrichmentPersistFailed ErrorCode = "ENRICHMENT_PERSIST_FAILED"
	ErrCodeReportIndexFailed       ErrorCode = "REPORT_INDEX_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeNoRecipients           ErrorCode = "NO_RECIPIENTS"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

type codeInfo struct {
	message string
	retries int
}

// retries > 0 marks a technical failure worth another attempt; business
// errors are thrown to the process model straight away
var codeTable = map[ErrorCode]codeInfo{
	ErrCodeParseError:               {"Job variables could not be parsed", 0},
	ErrCodeInvalidInput:             {"Job variables are incomplete", 0},
	ErrCodeCondoNotFound:            {"Condominium not found", 0},
	ErrCodeSnapshotValidationFailed: {"Condominium snapshot failed validation", 0},
	ErrCodeDatabaseConnectionFailed: {"Database connection error", 3},
	ErrCodeQueryExecutionFailed:     {"Database query execution error", 3},
	ErrCodeQueryTimeout:             {"Database query timeout", 2},
	ErrCodeInvalidQueryType:         {"Unsupported query type", 0},
	ErrCodeSearchQueryFailed:        {"Search query error", 3},
	ErrCodeSearchTimeout:            {"Search query timeout", 2},
	ErrCodeIndexNotFound:            {"Search index not found", 0},
	ErrCodeEnrichmentPersistFailed:  {"Enrichment report could not be stored", 3},
	ErrCodeReportIndexFailed:        {"Enrichment report could not be indexed", 3},
	ErrCodeNotificationSendFailed:   {"Notification could not be sent", 3},
	ErrCodeNoRecipients:             {"No watcher to notify", 0},
	ErrCodeInternal:                 {"Unexpected error", 0},
}

// StandardError is the structured failure a worker reports for a job.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
}

func (e *StandardError) Unwrap() error { return e.cause }

// WithMetadata attaches a key that ends up in the BPMN error variables.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// New builds a StandardError for a known code.
func New(code ErrorCode, details string) *StandardError {
	info, ok := codeTable[code]
	if !ok {
		info = codeTable[ErrCodeInternal]
	}
	return &StandardError{
		Code:      code,
		Message:   info.message,
		Details:   details,
		Retryable: info.retries > 0,
		Timestamp: time.Now().UTC(),
	}
}

// Wrap is New with the cause kept for errors.Is / errors.As.
func Wrap(code ErrorCode, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	e := New(code, details)
	e.cause = err
	return e
}

func NewCondoNotFoundError(condoID string) *StandardError {
	return New(ErrCodeCondoNotFound, "condoId: "+condoID).WithMetadata("condoId", condoID)
}

func NewSnapshotValidationError(problems []string) *StandardError {
	return New(ErrCodeSnapshotValidationFailed, strings.Join(problems, "; "))
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return Wrap(ErrCodeQueryExecutionFailed, err).WithMetadata("queryType", queryType)
}

func NewQueryTimeoutError(queryType string) *StandardError {
	return New(ErrCodeQueryTimeout, "queryType: "+queryType)
}

func NewInvalidQueryTypeError(queryType string) *StandardError {
	return New(ErrCodeInvalidQueryType, "queryType: "+queryType)
}

func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return Wrap(ErrCodeSearchQueryFailed, err).WithMetadata("queryType", queryType)
}

func NewIndexNotFoundError(index string) *StandardError {
	return New(ErrCodeIndexNotFound, "index: "+index)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return Wrap(ErrCodeNotificationSendFailed, err).WithMetadata("channel", channel)
}

// AsStandardError returns err as a StandardError, wrapping unknown errors
// as non-retryable internal errors.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return Wrap(ErrCodeInternal, err)
}

// BPMNError is what gets thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables flattens the error into process variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// GetRetryCount is the retry budget of a code; unknown codes get none.
func GetRetryCount(code ErrorCode) int {
	return codeTable[code].retries
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// ConvertToBPMNError keeps the internal code as BPMN code; the models catch
// these strings on boundary events.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func GetErrorCategory(code ErrorCode) string {
	s := string(code)
	switch {
	case strings.Contains(s, "SEARCH") || strings.Contains(s, "INDEX"):
		return "SEARCH"
	case strings.Contains(s, "DATABASE") || strings.Contains(s, "QUERY"):
		return "DATABASE"
	case strings.Contains(s, "NOTIFICATION") || strings.Contains(s, "RECIPIENTS"):
		return "NOTIFICATION"
	case strings.Contains(s, "CONDO") || strings.Contains(s, "SNAPSHOT") || strings.Contains(s, "ENRICHMENT"):
		return "CONDO"
	case strings.Contains(s, "PARSE") || strings.Contains(s, "INPUT"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
