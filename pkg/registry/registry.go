package registry

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

//go:embed activities.json
var builtin []byte

// Default returns the catalog compiled into the binary.
func Default() (*ActivityRegistry, error) {
	return parse(builtin)
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode activity registry: %w", err)
	}
	return &reg, nil
}

// Find looks an activity up by task type.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// TimeoutDuration parses Timeout, zero when unset.
func (a *Activity) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(a.Timeout)
}

// Validate reports every structural problem at once.
func (r *ActivityRegistry) Validate() error {
	var errs []error
	ids := map[string]bool{}
	taskTypes := map[string]bool{}

	for i, a := range r.Activities {
		where := fmt.Sprintf("activities[%d]", i)
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("%s: id is required", where))
		} else if ids[a.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate id %q", where, a.ID))
		}
		ids[a.ID] = true

		if a.TaskType == "" {
			errs = append(errs, fmt.Errorf("%s: taskType is required", where))
		} else if taskTypes[a.TaskType] {
			errs = append(errs, fmt.Errorf("%s: duplicate taskType %q", where, a.TaskType))
		}
		taskTypes[a.TaskType] = true

		if _, err := a.TimeoutDuration(); err != nil {
			errs = append(errs, fmt.Errorf("%s: timeout: %w", where, err))
		}
		if a.Retries < 0 {
			errs = append(errs, fmt.Errorf("%s: retries must not be negative", where))
		}
	}
	return errors.Join(errs...)
}
