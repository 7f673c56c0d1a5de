package store

import (
	"context"
	"slices"

	"copro-workers/internal/models"
)

// HistoryLimits bounds the diagnostics and nearby sales fed to a timeline.
type HistoryLimits struct {
	Diagnostics  int
	Transactions int
	RadiusMeters float64
}

// LoadDiagnostics loads the latest diagnostics; a snapshot without id has none.
func (l HistoryLimits) LoadDiagnostics(ctx context.Context, r Reader, snap *models.EntitySnapshot) ([]models.DiagnosticRecord, error) {
	if snap.ID == "" {
		return nil, nil
	}
	return r.DiagnosticHistory(ctx, snap.ID, l.Diagnostics)
}

// LoadTransactions looks up sales around the condominium. Without
// coordinates there is nothing to anchor the radius on.
func (l HistoryLimits) LoadTransactions(ctx context.Context, r Reader, snap *models.EntitySnapshot) ([]models.TransactionRecord, error) {
	if !snap.HasCoordinates() {
		return nil, nil
	}
	return r.NearbyTransactions(ctx, *snap.Latitude, *snap.Longitude, l.RadiusMeters, l.Transactions)
}

// TrimDiagnostics bounds a caller-supplied list the way DiagnosticHistory
// does: most recent first, undated last, at most l.Diagnostics entries.
func (l HistoryLimits) TrimDiagnostics(in []models.DiagnosticRecord) []models.DiagnosticRecord {
	if in == nil {
		return nil
	}
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b models.DiagnosticRecord) int {
		switch {
		case a.Date == nil && b.Date == nil:
			return 0
		case a.Date == nil:
			return 1
		case b.Date == nil:
			return -1
		}
		return b.Date.Compare(a.Date.Time)
	})
	return truncate(out, l.Diagnostics)
}

// TrimTransactions keeps the l.Transactions most recent sales.
func (l HistoryLimits) TrimTransactions(in []models.TransactionRecord) []models.TransactionRecord {
	if in == nil {
		return nil
	}
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b models.TransactionRecord) int {
		return b.Date.Compare(a.Date.Time)
	})
	return truncate(out, l.Transactions)
}

// a non-positive limit leaves the list whole
func truncate[T any](in []T, limit int) []T {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}
