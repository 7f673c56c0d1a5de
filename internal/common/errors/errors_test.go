package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_KnownAndUnknownCodes(t *testing.T) {
	e := New(ErrCodeQueryTimeout, "queryType: condo_snapshot")
	assert.True(t, e.Retryable)
	assert.Equal(t, "Database query timeout", e.Message)
	assert.Equal(t, "QUERY_TIMEOUT: Database query timeout (queryType: condo_snapshot)", e.Error())

	unknown := New(ErrorCode("SOMETHING_ELSE"), "")
	assert.False(t, unknown.Retryable)
	assert.Equal(t, "Unexpected error", unknown.Message)
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	wrapped := fmt.Errorf("save report: %w", NewQueryExecutionFailedError("condo_snapshot", cause))

	assert.ErrorIs(t, wrapped, cause)

	stdErr := AsStandardError(wrapped)
	require.NotNil(t, stdErr)
	assert.Equal(t, ErrCodeQueryExecutionFailed, stdErr.Code)
	assert.Equal(t, "condo_snapshot", stdErr.Metadata["queryType"])
}

func TestAsStandardError(t *testing.T) {
	assert.Nil(t, AsStandardError(nil))

	plain := AsStandardError(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.False(t, plain.Retryable)
	assert.Equal(t, "boom", plain.Details)
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeDatabaseConnectionFailed, 3},
		{ErrCodeQueryExecutionFailed, 3},
		{ErrCodeEnrichmentPersistFailed, 3},
		{ErrCodeNotificationSendFailed, 3},
		{ErrCodeQueryTimeout, 2},
		{ErrCodeSearchTimeout, 2},
		{ErrCodeCondoNotFound, 0},
		{ErrCodeSnapshotValidationFailed, 0},
		{ErrCodeInvalidQueryType, 0},
		{ErrorCode("UNKNOWN"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetRetryCount(tt.code))
			assert.Equal(t, tt.expected > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewCondoNotFoundError("c-42")

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "CONDO_NOT_FOUND", bpmnErr.Code)
	assert.Equal(t, 0, bpmnErr.Retries)
	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "CONDO_NOT_FOUND", vars["errorCode"])
	assert.Equal(t, "c-42", vars["condoId"])
	assert.Equal(t, "CONDO_NOT_FOUND", vars["originalErrorCode"])
	assert.Equal(t, false, vars["retryable"])
}

func TestConvertToBPMNError_NonRetryableOverride(t *testing.T) {
	stdErr := New(ErrCodeQueryExecutionFailed, "constraint violation")
	stdErr.Retryable = false

	assert.Equal(t, 0, ConvertToBPMNError(stdErr).Retries)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		jobRetries  int32
		wantRetries int32
		wantRetry   bool
	}{
		{"business error is thrown", NewCondoNotFoundError("x"), 3, 0, false},
		{"technical error retries", New(ErrCodeQueryExecutionFailed, ""), 3, 2, true},
		{"budget caps job retries", New(ErrCodeSearchTimeout, ""), 10, 2, true},
		{"last attempt is thrown", New(ErrCodeQueryExecutionFailed, ""), 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retries, retry := Decide(tt.err, tt.jobRetries)
			assert.Equal(t, tt.wantRetry, retry)
			assert.Equal(t, tt.wantRetries, retries)
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeSearchQueryFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeReportIndexFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNoRecipients))
	assert.Equal(t, "CONDO", GetErrorCategory(ErrCodeSnapshotValidationFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeParseError))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestNewSnapshotValidationError(t *testing.T) {
	e := NewSnapshotValidationError([]string{"totalLots: must be >= 0", "energyClass: invalid"})
	assert.Equal(t, "totalLots: must be >= 0; energyClass: invalid", e.Details)
}
