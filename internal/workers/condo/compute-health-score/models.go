package computehealthscore

import "copro-workers/internal/models"

// Input names the condominium to score. An inline snapshot takes
// precedence over the registry lookup.
type Input struct {
	CondoID  string                 `json:"condoId"`
	Snapshot *models.EntitySnapshot `json:"snapshot,omitempty"`
}

type Output struct {
	CondoID     string             `json:"condoId"`
	Score       models.ScoreResult `json:"score"`
	GlobalScore int                `json:"globalScore"`
	Confidence  int                `json:"confidence"`
}
