package buildtimeline

import "copro-workers/internal/models"

// Input histories that are absent are loaded from the registry; an empty
// list is taken as given.
type Input struct {
	CondoID      string                     `json:"condoId"`
	Snapshot     *models.EntitySnapshot     `json:"snapshot,omitempty"`
	Transactions []models.TransactionRecord `json:"transactions,omitempty"`
	Diagnostics  []models.DiagnosticRecord  `json:"diagnostics,omitempty"`
}

type Output struct {
	CondoID    string                 `json:"condoId"`
	Events     []models.TimelineEvent `json:"events"`
	EventCount int                    `json:"eventCount"`
}
