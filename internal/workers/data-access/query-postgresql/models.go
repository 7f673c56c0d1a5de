package querypostgresql

import "copro-workers/internal/models"

type Input struct {
	QueryType    string   `json:"queryType"`
	CondoID      string   `json:"condoId,omitempty"`
	Slug         string   `json:"slug,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	RadiusMeters float64  `json:"radiusMeters,omitempty"`
	Limit        int      `json:"limit,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

var (
	QueryTypeCondoSnapshot      = models.QueryTypeCondoSnapshot
	QueryTypeCondoBySlug        = models.QueryTypeCondoBySlug
	QueryTypeDiagnosticHistory  = models.QueryTypeDiagnosticHistory
	QueryTypeNearbyTransactions = models.QueryTypeNearbyTransactions
	QueryTypeCondoEnrichment    = models.QueryTypeCondoEnrichment
)
