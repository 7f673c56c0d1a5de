package validatecondosnapshot

import (
	"encoding/json"

	"copro-workers/internal/common/validation"
)

type Input struct {
	Snapshot      json.RawMessage `json:"snapshot"`
	FailOnInvalid *bool           `json:"failOnInvalid,omitempty"`
}

type Output struct {
	Valid   bool                         `json:"valid"`
	CondoID string                       `json:"condoId,omitempty"`
	Errors  []validation.ValidationError `json:"errors"`
}
