package queries

import (
	"context"
	"errors"
	"fmt"

	"copro-workers/internal/models"
	"copro-workers/internal/store"
)

func CondoSnapshot(ctx context.Context, src Source, params Params) (interface{}, int, error) {
	if params.CondoID == "" {
		return nil, 0, fmt.Errorf("%w: condoId", ErrMissingParam)
	}
	return single(src.GetSnapshot(ctx, params.CondoID))
}

func CondoBySlug(ctx context.Context, src Source, params Params) (interface{}, int, error) {
	if params.Slug == "" {
		return nil, 0, fmt.Errorf("%w: slug", ErrMissingParam)
	}
	return single(src.GetSnapshotBySlug(ctx, params.Slug))
}

func CondoEnrichment(ctx context.Context, src Source, params Params) (interface{}, int, error) {
	if params.CondoID == "" {
		return nil, 0, fmt.Errorf("%w: condoId", ErrMissingParam)
	}
	return single(src.GetEnrichment(ctx, params.CondoID))
}

func single[T any](v *T, err error) (interface{}, int, error) {
	if errors.Is(err, store.ErrNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return v, 1, nil
}

func DiagnosticHistory(ctx context.Context, src Source, params Params) (interface{}, int, error) {
	if params.CondoID == "" {
		return nil, 0, fmt.Errorf("%w: condoId", ErrMissingParam)
	}
	diags, err := src.DiagnosticHistory(ctx, params.CondoID, params.limit())
	if err != nil {
		return nil, 0, err
	}
	return diags, len(diags), nil
}

// NearbyTransactions centers on the given point, or on the condominium's
// registered coordinates when only condoId is set.
func NearbyTransactions(ctx context.Context, src Source, params Params) (interface{}, int, error) {
	lat, lon := params.Latitude, params.Longitude
	if lat == nil || lon == nil {
		if params.CondoID == "" {
			return nil, 0, fmt.Errorf("%w: latitude/longitude or condoId", ErrMissingParam)
		}
		snap, err := src.GetSnapshot(ctx, params.CondoID)
		if errors.Is(err, store.ErrNotFound) {
			return []models.TransactionRecord{}, 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
		if !snap.HasCoordinates() {
			return []models.TransactionRecord{}, 0, nil
		}
		lat, lon = snap.Latitude, snap.Longitude
	}

	txs, err := src.NearbyTransactions(ctx, *lat, *lon, params.radius(), params.limit())
	if err != nil {
		return nil, 0, err
	}
	return txs, len(txs), nil
}
