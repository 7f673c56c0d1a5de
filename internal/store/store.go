// Package store reads condominium registry data from postgres and keeps the
// enrichment reports, watchers and notification log next to it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"copro-workers/internal/models"
)

var ErrNotFound = errors.New("not found")

// Reader is what the enrichment workers need from the registry.
type Reader interface {
	GetSnapshot(ctx context.Context, id string) (*models.EntitySnapshot, error)
	DiagnosticHistory(ctx context.Context, condoID string, limit int) ([]models.DiagnosticRecord, error)
	NearbyTransactions(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]models.TransactionRecord, error)
}

type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

const snapshotColumns = `id, slug, name, address, city, postal_code, latitude, longitude,
	construction_period, syndic_type, is_cooperative, total_lots, works_fund_contribution,
	in_risk_prevention_plan, provisional_administration, unsanitary_procedure,
	common_equipment_procedure, ordinary_peril_order, imminent_peril_order, ad_hoc_mandate,
	energy_class, collective_heating, has_elevator, floor_count, has_caretaker,
	market_annual_price_change_pct, market_transaction_count,
	bylaw_date, registration_date, last_update_date`

func (s *SnapshotStore) GetSnapshot(ctx context.Context, id string) (*models.EntitySnapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+snapshotColumns+` FROM condos WHERE id = $1`, id)
	return scanSnapshot(row)
}

func (s *SnapshotStore) GetSnapshotBySlug(ctx context.Context, slug string) (*models.EntitySnapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+snapshotColumns+` FROM condos WHERE slug = $1`, slug)
	return scanSnapshot(row)
}

func scanSnapshot(row *sql.Row) (*models.EntitySnapshot, error) {
	var (
		snap                                      models.EntitySnapshot
		slug, name, address, city, postalCode     sql.NullString
		period, syndic, energy                    sql.NullString
		lat, lon                                  sql.NullFloat64
		cooperative, riskPlan, provisional        sql.NullBool
		unsanitary, equipment, ordinary, imminent sql.NullBool
		adHoc, heating, elevator, caretaker       sql.NullBool
		lots, floors, txCount                     sql.NullInt64
		bylaw, registration, lastUpdate           sql.NullTime
	)

	err := row.Scan(
		&snap.ID, &slug, &name, &address, &city, &postalCode, &lat, &lon,
		&period, &syndic, &cooperative, &lots, &snap.WorksFundContribution,
		&riskPlan, &provisional, &unsanitary,
		&equipment, &ordinary, &imminent, &adHoc,
		&energy, &heating, &elevator, &floors, &caretaker,
		&snap.MarketAnnualPriceChangePct, &txCount,
		&bylaw, &registration, &lastUpdate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan condo: %w", err)
	}

	snap.Slug, snap.Name, snap.Address = slug.String, name.String, address.String
	snap.City, snap.PostalCode = city.String, postalCode.String
	snap.Latitude, snap.Longitude = floatPtr(lat), floatPtr(lon)

	snap.ConstructionPeriod = models.ParsePeriod(period.String)
	switch models.SyndicType(syndic.String) {
	case models.SyndicProfessional, models.SyndicVolunteer:
		snap.SyndicType = models.SyndicType(syndic.String)
	}
	if c := models.EnergyClass(energy.String); c.Known() {
		snap.EnergyClass = c
	}

	snap.IsCooperative = models.FromNullBool(cooperative)
	snap.InRiskPreventionPlan = models.FromNullBool(riskPlan)
	snap.ProvisionalAdministration = models.FromNullBool(provisional)
	snap.UnsanitaryProcedure = models.FromNullBool(unsanitary)
	snap.CommonEquipmentProcedure = models.FromNullBool(equipment)
	snap.OrdinaryPerilOrder = models.FromNullBool(ordinary)
	snap.ImminentPerilOrder = models.FromNullBool(imminent)
	snap.AdHocMandate = models.FromNullBool(adHoc)
	snap.CollectiveHeating = models.FromNullBool(heating)
	snap.HasElevator = models.FromNullBool(elevator)
	snap.HasCaretaker = models.FromNullBool(caretaker)

	snap.TotalLots, snap.FloorCount, snap.MarketTransactionCount = intPtr(lots), intPtr(floors), intPtr(txCount)
	snap.BylawDate, snap.RegistrationDate, snap.LastUpdateDate = timePtr(bylaw), timePtr(registration), timePtr(lastUpdate)

	return &snap, nil
}

// DiagnosticHistory returns the most recent diagnostics first; undated rows
// come last.
func (s *SnapshotStore) DiagnosticHistory(ctx context.Context, condoID string, limit int) ([]models.DiagnosticRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT diagnosed_at, energy_class, ghg_class
		FROM condo_diagnostics
		WHERE condo_id = $1
		ORDER BY diagnosed_at DESC NULLS LAST
		LIMIT $2`, condoID, limit)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	out := make([]models.DiagnosticRecord, 0, limit)
	for rows.Next() {
		var (
			at          sql.NullTime
			energy, ghg sql.NullString
		)
		if err := rows.Scan(&at, &energy, &ghg); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		out = append(out, models.DiagnosticRecord{
			Date:        timePtr(at),
			EnergyClass: knownClass(energy),
			GHGClass:    knownClass(ghg),
		})
	}
	return out, rows.Err()
}

const earthRadiusMeters = 6371000.0

// NearbyTransactions returns the latest sales within radiusMeters of the
// point. The bounding box narrows the scan, the haversine term is exact.
func (s *SnapshotStore) NearbyTransactions(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]models.TransactionRecord, error) {
	minLat, maxLat, minLon, maxLon := boundingBox(lat, lon, radiusMeters)

	rows, err := s.db.QueryContext(ctx, `
		SELECT sold_at, area, price, property_type
		FROM condo_transactions
		WHERE latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4
		  AND 2 * 6371000 * asin(sqrt(
		        power(sin(radians(latitude - $5) / 2), 2) +
		        cos(radians($5)) * cos(radians(latitude)) * power(sin(radians(longitude - $6) / 2), 2)
		      )) <= $7
		ORDER BY sold_at DESC
		LIMIT $8`,
		minLat, maxLat, minLon, maxLon, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]models.TransactionRecord, 0, limit)
	for rows.Next() {
		var (
			soldAt      time.Time
			area, price decimal.Decimal
			kind        sql.NullString
		)
		if err := rows.Scan(&soldAt, &area, &price, &kind); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, models.TransactionRecord{
			Date:         models.CalendarDay(soldAt),
			Area:         area,
			Price:        price,
			PropertyType: kind.String,
		})
	}
	return out, rows.Err()
}

func boundingBox(lat, lon, radiusMeters float64) (minLat, maxLat, minLon, maxLon float64) {
	dLat := radiusMeters / earthRadiusMeters * 180 / math.Pi
	dLon := dLat
	if c := math.Cos(lat * math.Pi / 180); c > 1e-9 {
		dLon = dLat / c
	}
	return lat - dLat, lat + dLat, lon - dLon, lon + dLon
}

// SaveEnrichment upserts the latest report of a condominium.
func (s *SnapshotStore) SaveEnrichment(ctx context.Context, report *models.EnrichmentReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO condo_enrichments (condo_id, run_id, global_score, confidence, risk_alert, report, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (condo_id) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			global_score = EXCLUDED.global_score,
			confidence = EXCLUDED.confidence,
			risk_alert = EXCLUDED.risk_alert,
			report = EXCLUDED.report,
			computed_at = EXCLUDED.computed_at`,
		report.CondoID, report.RunID, report.Score.Global, report.Score.Confidence,
		report.RiskAlert, body, report.ComputedAt)
	if err != nil {
		return fmt.Errorf("upsert enrichment: %w", err)
	}
	return nil
}

func (s *SnapshotStore) GetEnrichment(ctx context.Context, condoID string) (*models.EnrichmentReport, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT report FROM condo_enrichments WHERE condo_id = $1`, condoID).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query enrichment: %w", err)
	}

	var report models.EnrichmentReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("decode enrichment: %w", err)
	}
	return &report, nil
}

func (s *SnapshotStore) Watchers(ctx context.Context, condoID string) ([]models.Watcher, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone
		FROM condo_watchers
		WHERE condo_id = $1 AND active
		ORDER BY created_at`, condoID)
	if err != nil {
		return nil, fmt.Errorf("query watchers: %w", err)
	}
	defer rows.Close()

	var out []models.Watcher
	for rows.Next() {
		var (
			w     models.Watcher
			phone sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.Name, &w.Email, &phone); err != nil {
			return nil, fmt.Errorf("scan watcher: %w", err)
		}
		w.Phone = phone.String
		out = append(out, w)
	}
	return out, rows.Err()
}

// Notification is one delivery attempt to a watcher.
type Notification struct {
	ID        string
	CondoID   string
	WatcherID string
	Channel   string
	Status    string
	Subject   string
	CreatedAt time.Time
}

func (s *SnapshotStore) RecordNotification(ctx context.Context, n Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, condo_id, watcher_id, channel, status, subject, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.CondoID, n.WatcherID, n.Channel, n.Status, n.Subject, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return models.IntPtr(int(v.Int64))
}

func timePtr(v sql.NullTime) *models.Date {
	if !v.Valid {
		return nil
	}
	return models.DatePtr(&v.Time)
}

func knownClass(v sql.NullString) models.EnergyClass {
	if c := models.EnergyClass(v.String); c.Known() {
		return c
	}
	return models.EnergyUnknown
}
