package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "copro-workers/internal/common/errors"
	"copro-workers/internal/common/validation"
)

func TestDefault(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	require.NoError(t, reg.Validate())
	assert.Len(t, reg.Activities, 8)

	a, ok := reg.Find("enrich-condo")
	require.True(t, ok)
	assert.Equal(t, "condo", a.Category)
	assert.Contains(t, a.ErrorCodes, "REPORT_INDEX_FAILED")

	_, ok = reg.Find("owner-lookup")
	assert.False(t, ok)
}

func TestDefault_ErrorCodesAreKnown(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	for _, a := range reg.Activities {
		for _, code := range a.ErrorCodes {
			e := apperrors.New(apperrors.ErrorCode(code), "")
			if code != string(apperrors.ErrCodeInternal) {
				assert.NotEqual(t, "Unexpected error", e.Message, "%s lists unknown code %s", a.ID, code)
			}
		}
	}
}

func TestDefault_InputSchemas(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	tests := []struct {
		taskType string
		vars     map[string]interface{}
		valid    bool
	}{
		{"compute-health-score", map[string]interface{}{"condoId": "c-1"}, true},
		{"compute-health-score", map[string]interface{}{"snapshot": map[string]interface{}{"id": "c-1"}}, true},
		{"compute-health-score", map[string]interface{}{}, false},
		{"query-postgresql", map[string]interface{}{"queryType": "condo_snapshot", "condoId": "c-1"}, true},
		{"query-postgresql", map[string]interface{}{"queryType": "owner_lookup"}, false},
		{"query-elasticsearch", map[string]interface{}{"queryType": "condos_nearby", "pagination": map[string]interface{}{"size": -1}}, false},
		{"build-timeline", map[string]interface{}{"condoId": "c-1", "transactions": []interface{}{map[string]interface{}{"date": "2024-05-02", "price": 1}}}, true},
		{"build-timeline", map[string]interface{}{"condoId": "c-1", "transactions": []interface{}{map[string]interface{}{"price": 1}}}, false},
		{"enrich-condo", map[string]interface{}{"condoId": "c-1", "transactions": []interface{}{map[string]interface{}{"area": 50}}}, false},
		{"send-risk-alert", map[string]interface{}{"condoId": "c-1", "notificationType": "risk_alert"}, true},
		{"send-risk-alert", map[string]interface{}{"condoId": ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.taskType, func(t *testing.T) {
			a, ok := reg.Find(tt.taskType)
			require.True(t, ok)
			result, err := validation.ValidateDocument(a.InputSchema, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid, "%v", result.Messages())
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{
		{ID: "a", TaskType: "t", Timeout: "10s"},
		{ID: "a", TaskType: "t", Timeout: "ten seconds", Retries: -1},
		{},
	}}

	err := reg.Validate()

	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `duplicate id "a"`)
	assert.Contains(t, msg, `duplicate taskType "t"`)
	assert.Contains(t, msg, "activities[1]: timeout")
	assert.Contains(t, msg, "retries must not be negative")
	assert.Contains(t, msg, "activities[2]: id is required")
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"2","activities":[{"id":"x","taskType":"x","timeout":"1m"}]}`), 0o600))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "2", reg.Version)
	d, err := reg.Activities[0].TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, "1m0s", d.String())

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))
}
