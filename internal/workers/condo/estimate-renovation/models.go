package estimaterenovation

import "copro-workers/internal/models"

type Input struct {
	CondoID  string                 `json:"condoId"`
	Snapshot *models.EntitySnapshot `json:"snapshot,omitempty"`
}

// Output repeats the totals at top level so gateways can branch on them
// without a FEEL path into the estimate.
type Output struct {
	CondoID     string                    `json:"condoId"`
	Estimate    models.RenovationEstimate `json:"estimate"`
	ItemCount   int                       `json:"itemCount"`
	TotalMin    int64                     `json:"totalMin"`
	TotalMax    int64                     `json:"totalMax"`
	Reliability models.Reliability        `json:"reliability"`
}
