package models

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriState_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected TriState
		known    bool
	}{
		{"explicit true", `{"flag": true}`, True, true},
		{"explicit false", `{"flag": false}`, False, true},
		{"explicit null", `{"flag": null}`, Unknown, false},
		{"absent", `{}`, Unknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				Flag TriState `json:"flag"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.expected, v.Flag)
			assert.Equal(t, tt.known, v.Flag.IsKnown())
		})
	}
}

func TestTriState_RejectsNonBoolean(t *testing.T) {
	var ts TriState
	assert.Error(t, json.Unmarshal([]byte(`"yes"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`1`), &ts))
}

func TestTriState_MarshalJSON(t *testing.T) {
	out, err := json.Marshal([]TriState{True, False, Unknown})
	require.NoError(t, err)
	assert.Equal(t, `[true,false,null]`, string(out))
}

func TestFromNullBool(t *testing.T) {
	assert.Equal(t, Unknown, FromNullBool(sql.NullBool{}))
	assert.Equal(t, False, FromNullBool(sql.NullBool{Valid: true}))
	assert.Equal(t, True, FromNullBool(sql.NullBool{Bool: true, Valid: true}))
}

func TestSnapshot_SyndicKnown(t *testing.T) {
	assert.False(t, (&EntitySnapshot{}).SyndicKnown())
	assert.False(t, (&EntitySnapshot{IsCooperative: False}).SyndicKnown())
	assert.True(t, (&EntitySnapshot{IsCooperative: True}).SyndicKnown())
	assert.True(t, (&EntitySnapshot{SyndicType: SyndicVolunteer}).SyndicKnown())
	assert.False(t, (&EntitySnapshot{SyndicType: "management company"}).SyndicKnown())
}
