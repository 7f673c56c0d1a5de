package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"copro-workers/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
)

const (
	DefaultLimit        = 10
	MaxLimit            = 100
	DefaultRadiusMeters = 500.0
)

// Source is the registry read side; store.SnapshotStore and
// store.CachedSnapshots both satisfy it.
type Source interface {
	GetSnapshot(ctx context.Context, id string) (*models.EntitySnapshot, error)
	GetSnapshotBySlug(ctx context.Context, slug string) (*models.EntitySnapshot, error)
	DiagnosticHistory(ctx context.Context, condoID string, limit int) ([]models.DiagnosticRecord, error)
	NearbyTransactions(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]models.TransactionRecord, error)
	GetEnrichment(ctx context.Context, condoID string) (*models.EnrichmentReport, error)
}

type Params struct {
	CondoID      string
	Slug         string
	Latitude     *float64
	Longitude    *float64
	RadiusMeters float64
	Limit        int
}

// limit clamps the requested row count to 1..MaxLimit.
func (p Params) limit() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	default:
		return p.Limit
	}
}

func (p Params) radius() float64 {
	if p.RadiusMeters <= 0 {
		return DefaultRadiusMeters
	}
	return p.RadiusMeters
}

// QueryFunc returns the data and its row count. A missing record is an
// empty result, not an error.
type QueryFunc func(ctx context.Context, src Source, params Params) (interface{}, int, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeCondoSnapshot:      CondoSnapshot,
	models.QueryTypeCondoBySlug:        CondoBySlug,
	models.QueryTypeDiagnosticHistory:  DiagnosticHistory,
	models.QueryTypeNearbyTransactions: NearbyTransactions,
	models.QueryTypeCondoEnrichment:    CondoEnrichment,
}

// Execute runs a registered query. The returned duration is in
// milliseconds.
func Execute(ctx context.Context, src Source, queryType models.QueryType, params Params) (interface{}, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	start := time.Now()
	data, count, err := fn(ctx, src, params)
	return data, count, time.Since(start).Milliseconds(), err
}
