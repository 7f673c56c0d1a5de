// Package validation checks job payloads against JSON schemas before they
// reach the enrichment functions.
package validation

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/condo_snapshot.json
var condoSnapshotSchema string

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Messages flattens the errors into "field: message" strings.
func (r *ValidationResult) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return out
}

var (
	snapshotSchemaOnce sync.Once
	snapshotSchema     *gojsonschema.Schema
	snapshotSchemaErr  error
)

// SnapshotSchema returns the compiled condominium snapshot schema.
func SnapshotSchema() (*gojsonschema.Schema, error) {
	snapshotSchemaOnce.Do(func() {
		snapshotSchema, snapshotSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(condoSnapshotSchema))
	})
	return snapshotSchema, snapshotSchemaErr
}

// ValidateSnapshot validates a raw snapshot document: a JSON string,
// []byte or an already decoded value.
func ValidateSnapshot(doc interface{}) (*ValidationResult, error) {
	schema, err := SnapshotSchema()
	if err != nil {
		return nil, fmt.Errorf("compile snapshot schema: %w", err)
	}
	return validate(schema, documentLoader(doc))
}

// ValidateDocument validates doc against an arbitrary schema given as a Go
// value (typically a decoded JSON object).
func ValidateDocument(schema interface{}, doc interface{}) (*ValidationResult, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return validate(compiled, documentLoader(doc))
}

func documentLoader(doc interface{}) gojsonschema.JSONLoader {
	switch v := doc.(type) {
	case string:
		return gojsonschema.NewStringLoader(v)
	case []byte:
		return gojsonschema.NewBytesLoader(v)
	default:
		return gojsonschema.NewGoLoader(v)
	}
}

func validate(schema *gojsonschema.Schema, doc gojsonschema.JSONLoader) (*ValidationResult, error) {
	result, err := schema.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid(), Errors: []ValidationError{}}
	for _, e := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    e.Type(),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool {
		return out.Errors[i].Field < out.Errors[j].Field
	})
	return out, nil
}
