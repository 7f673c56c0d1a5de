package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(r *ValidationResult) []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateSnapshot_Valid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"minimal", `{"id":"c-1"}`},
		{"nulls everywhere", `{"id":"c-1","constructionPeriod":null,"energyClass":null,"totalLots":null,"inRiskPreventionPlan":null}`},
		{
			name: "complete",
			doc: `{
				"id": "c-1",
				"constructionPeriod": "1961-1974",
				"syndicType": "professional",
				"isCooperative": false,
				"totalLots": 24,
				"worksFundContribution": "1500.50",
				"inRiskPreventionPlan": true,
				"energyClass": "E",
				"hasElevator": true,
				"floorCount": 7,
				"marketAnnualPriceChangePct": -3.2,
				"marketTransactionCount": 12,
				"latitude": 48.85,
				"longitude": 2.35,
				"lastUpdateDate": "2025-09-30"
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateSnapshot(tt.doc)
			require.NoError(t, err)
			assert.True(t, result.Valid, "%v", result.Messages())
			assert.Empty(t, result.Errors)
		})
	}
}

func TestValidateSnapshot_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		doc           interface{}
		expectedField string
	}{
		{"missing id", `{"totalLots": 3}`, "(root)"},
		{"negative lots", `{"id":"c-1","totalLots":-2}`, "totalLots"},
		{"fractional floors", `{"id":"c-1","floorCount":2.5}`, "floorCount"},
		{"unknown period", `{"id":"c-1","constructionPeriod":"1800s"}`, "constructionPeriod"},
		{"lowercase energy class", []byte(`{"id":"c-1","energyClass":"c"}`), "energyClass"},
		{"string flag", map[string]interface{}{"id": "c-1", "adHocMandate": "yes"}, "adHocMandate"},
		{"bad decimal", `{"id":"c-1","worksFundContribution":"12,5"}`, "worksFundContribution"},
		{"latitude out of range", `{"id":"c-1","latitude":123}`, "latitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateSnapshot(tt.doc)
			require.NoError(t, err)
			assert.False(t, result.Valid)
			assert.Contains(t, fieldsOf(result), tt.expectedField)
			assert.NotEmpty(t, result.Messages())
		})
	}
}

func TestValidateSnapshot_MalformedJSON(t *testing.T) {
	_, err := ValidateSnapshot(`{"id":`)
	assert.Error(t, err)
}

func TestValidateDocument(t *testing.T) {
	schema := map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"condoId"},
		"properties": map[string]interface{}{
			"condoId": map[string]interface{}{"type": "string"},
		},
	}

	ok, err := ValidateDocument(schema, map[string]interface{}{"condoId": "c-9"})
	require.NoError(t, err)
	assert.True(t, ok.Valid)

	bad, err := ValidateDocument(schema, map[string]interface{}{"condoId": 9})
	require.NoError(t, err)
	assert.False(t, bad.Valid)
	assert.Equal(t, []string{"condoId"}, fieldsOf(bad))
}
