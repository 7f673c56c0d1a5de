package enrichcondo

import "copro-workers/internal/models"

type Input struct {
	CondoID      string                     `json:"condoId"`
	Snapshot     *models.EntitySnapshot     `json:"snapshot,omitempty"`
	Transactions []models.TransactionRecord `json:"transactions,omitempty"`
	Diagnostics  []models.DiagnosticRecord  `json:"diagnostics,omitempty"`
}

// Output is the run summary handed back to the process; the full report
// lives in postgres and the search index.
type Output struct {
	RunID              string             `json:"runId"`
	CondoID            string             `json:"condoId"`
	GlobalScore        int                `json:"globalScore"`
	Confidence         int                `json:"confidence"`
	RiskScore          int                `json:"riskScore"`
	RiskAlert          bool               `json:"riskAlert"`
	RenovationTotalMin int64              `json:"renovationTotalMin"`
	RenovationTotalMax int64              `json:"renovationTotalMax"`
	Reliability        models.Reliability `json:"reliability"`
	EventCount         int                `json:"eventCount"`
	Indexed            bool               `json:"indexed"`
}
