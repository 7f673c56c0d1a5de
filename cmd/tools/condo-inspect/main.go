// condo-inspect runs the enrichment functions against snapshot files,
// without Zeebe or any database.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"copro-workers/internal/common/validation"
	"copro-workers/internal/enrichment/renovation"
	"copro-workers/internal/enrichment/scoring"
	"copro-workers/internal/enrichment/timeline"
	"copro-workers/internal/models"
	"copro-workers/pkg/registry"
)

// history is the optional -history file.
type history struct {
	Diagnostics  []models.DiagnosticRecord  `json:"diagnostics"`
	Transactions []models.TransactionRecord `json:"transactions"`
}

type scoreOutput struct {
	CondoID string             `json:"condoId"`
	Score   models.ScoreResult `json:"score"`
}

type estimateOutput struct {
	CondoID    string                    `json:"condoId"`
	Renovation models.RenovationEstimate `json:"renovation"`
}

type timelineOutput struct {
	CondoID  string                 `json:"condoId"`
	Timeline []models.TimelineEvent `json:"timeline"`
}

type validateOutput struct {
	Valid  bool                         `json:"valid"`
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		help(stderr)
		return 2
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	snapshotPath := fs.String("snapshot", "", "Path to a condominium snapshot JSON file")
	historyPath := fs.String("history", "", "Path to a {diagnostics, transactions} JSON file (timeline only)")
	now := fs.String("now", "", "Reference date for the timeline, YYYY-MM-DD (default today)")
	pretty := fs.Bool("pretty", false, "Indent the JSON output")
	taskType := fs.String("task", "", "Task type whose input schema to check (job only)")
	varsPath := fs.String("vars", "", "Path to a job variables JSON file (job only)")

	switch args[0] {
	case "score", "estimate", "timeline", "validate", "tasks", "job":
	case "help", "-h", "--help":
		help(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n", args[0])
		help(stderr)
		return 2
	}

	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	switch args[0] {
	case "tasks":
		catalog, err := registry.Default()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return write(stdout, stderr, catalog.Activities, *pretty, 0)
	case "job":
		return checkJob(stdout, stderr, *taskType, *varsPath, *pretty)
	}
	if *snapshotPath == "" {
		fmt.Fprintln(stderr, "Error: -snapshot is required.")
		fs.Usage()
		return 2
	}

	raw, err := os.ReadFile(*snapshotPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading snapshot: %v\n", err)
		return 1
	}

	var out interface{}
	code := 0
	switch args[0] {
	case "validate":
		result, err := validation.ValidateSnapshot(raw)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		out = validateOutput{Valid: result.Valid, Errors: result.Errors}
		if !result.Valid {
			code = 1
		}

	case "score":
		snap, err := decodeSnapshot(raw)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		out = scoreOutput{CondoID: snap.ID, Score: scoring.ComputeScore(snap)}

	case "estimate":
		snap, err := decodeSnapshot(raw)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		out = estimateOutput{CondoID: snap.ID, Renovation: renovation.Estimate(snap)}

	case "timeline":
		snap, err := decodeSnapshot(raw)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		var h history
		if *historyPath != "" {
			if err := readJSON(*historyPath, &h); err != nil {
				fmt.Fprintf(stderr, "Error reading history: %v\n", err)
				return 1
			}
		}
		at := time.Now().UTC()
		if *now != "" {
			at, err = time.Parse("2006-01-02", *now)
			if err != nil {
				fmt.Fprintf(stderr, "Error: -now: %v\n", err)
				return 2
			}
		}
		out = timelineOutput{
			CondoID:  snap.ID,
			Timeline: timeline.BuildTimelineAt(snap, h.Transactions, h.Diagnostics, at),
		}
	}

	return write(stdout, stderr, out, *pretty, code)
}

// checkJob validates job variables against the input schema registered
// for the task type.
func checkJob(stdout, stderr io.Writer, taskType, varsPath string, pretty bool) int {
	if taskType == "" || varsPath == "" {
		fmt.Fprintln(stderr, "Error: -task and -vars are required for job.")
		return 2
	}
	catalog, err := registry.Default()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	activity, ok := catalog.Find(taskType)
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown task type %q\n", taskType)
		return 1
	}
	raw, err := os.ReadFile(varsPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading variables: %v\n", err)
		return 1
	}
	result, err := validation.ValidateDocument(activity.InputSchema, raw)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	code := 0
	if !result.Valid {
		code = 1
	}
	return write(stdout, stderr, validateOutput{Valid: result.Valid, Errors: result.Errors}, pretty, code)
}

func write(stdout, stderr io.Writer, out interface{}, pretty bool, code int) int {
	enc := json.NewEncoder(stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}
	return code
}

// decodeSnapshot refuses snapshots the schema rejects, so scores are never
// computed on out-of-range input.
func decodeSnapshot(raw []byte) (*models.EntitySnapshot, error) {
	result, err := validation.ValidateSnapshot(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed snapshot: %w", err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid snapshot: %v", result.Messages())
	}
	var snap models.EntitySnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func help(w io.Writer) {
	fmt.Fprintln(w, "Usage: condo-inspect <command> [-snapshot <file>] [options]")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  score     Compute the health sub-scores, global score and confidence index")
	fmt.Fprintln(w, "  estimate  Estimate probable renovation works and their cost range")
	fmt.Fprintln(w, "  timeline  Build the dated event timeline (-history, -now)")
	fmt.Fprintln(w, "  validate  Check the snapshot against the JSON schema")
	fmt.Fprintln(w, "  tasks     List the registered task types")
	fmt.Fprintln(w, "  job       Check job variables against a task input schema (-task, -vars)")
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -pretty   Indent the JSON output")
}
