package timeline

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copro-workers/internal/models"
)

var fixedNow = time.Date(2026, time.March, 14, 15, 30, 0, 0, time.UTC)

func datePtr(year int, month time.Month, day int) *models.Date {
	d := models.NewDate(year, month, day)
	return &d
}

func titles(events []models.TimelineEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Title)
	}
	return out
}

func sampleTransactions() []models.TransactionRecord {
	return []models.TransactionRecord{
		{
			Date:  models.NewDate(2023, time.June, 2),
			Area:  decimal.NewFromInt(62),
			Price: decimal.NewFromInt(310000),
		},
		{
			Date:         models.NewDate(2019, time.November, 20),
			Area:         decimal.NewFromInt(45),
			Price:        decimal.NewFromInt(198000),
			PropertyType: "apartment",
		},
	}
}

func sampleDiagnostics() []models.DiagnosticRecord {
	return []models.DiagnosticRecord{
		{Date: datePtr(2021, time.March, 1), EnergyClass: models.EnergyD},
		{Date: datePtr(2015, time.May, 5)},
		{EnergyClass: models.EnergyC},
	}
}

// ==========================
// Event sources
// ==========================

func TestBuildTimeline_EmptySnapshot(t *testing.T) {
	events := BuildTimelineAt(&models.EntitySnapshot{}, nil, nil, fixedNow)

	require.NotNil(t, events)
	assert.Empty(t, events)
}

func TestBuildTimeline_ConstructionAnchor(t *testing.T) {
	events := BuildTimelineAt(&models.EntitySnapshot{ConstructionPeriod: models.Period1949To1960}, nil, nil, fixedNow)

	require.Len(t, events, 1)
	assert.Equal(t, models.CategoryConstruction, events[0].Category)
	assert.Equal(t, models.NewDate(1955, time.January, 1), events[0].OccurredAt)
	assert.Equal(t, events[0].OccurredAt.UnixMilli(), events[0].SortKey)
}

func TestBuildTimeline_DiagnosticsAndTransactions(t *testing.T) {
	events := BuildTimelineAt(&models.EntitySnapshot{}, sampleTransactions(), sampleDiagnostics(), fixedNow)

	assert.Equal(t, []string{
		"Nearby sale",
		"Energy diagnostic: class D",
		"Nearby sale: apartment",
		"Energy diagnostic: unknown class",
	}, titles(events), "undated diagnostics are skipped")

	assert.Equal(t, models.CategoryTransaction, events[0].Category)
	assert.Equal(t, "62 m² sold for 310000 € (5000 €/m²)", events[0].Description)
	assert.Equal(t, "45 m² sold for 198000 € (4400 €/m²)", events[2].Description)
	assert.Equal(t, models.CategoryEnergy, events[1].Category)
}

func TestBuildTimeline_TransactionWithoutArea(t *testing.T) {
	events := BuildTimelineAt(&models.EntitySnapshot{}, []models.TransactionRecord{
		{Date: models.NewDate(2022, time.January, 10), Price: decimal.NewFromInt(150000)},
	}, nil, fixedNow)

	require.Len(t, events, 1)
	assert.Equal(t, "0 m² sold for 150000 €", events[0].Description)
}

func TestBuildTimeline_UndatedTransactionSkipped(t *testing.T) {
	var sales []models.TransactionRecord
	require.NoError(t, json.Unmarshal([]byte(`[
		{"area": 50, "price": 100000},
		{"date": "2024-05-02", "area": 40, "price": 120000}
	]`), &sales))

	events := BuildTimelineAt(&models.EntitySnapshot{}, sales, nil, fixedNow)

	require.Len(t, events, 1)
	assert.Equal(t, models.NewDate(2024, time.May, 2), events[0].OccurredAt)
	for _, e := range events {
		assert.Positive(t, e.SortKey)
	}
}

// ==========================
// Same-day tie-breaks
// ==========================

func TestBuildTimeline_LastUpdateTieBreaks(t *testing.T) {
	updated := datePtr(2025, time.September, 30)
	s := &models.EntitySnapshot{
		SyndicType:           models.SyndicProfessional,
		InRiskPreventionPlan: models.True,
		LastUpdateDate:       updated,
		RegistrationDate:     updated,
	}

	events := BuildTimelineAt(s, nil, nil, fixedNow)

	require.Len(t, events, 4)
	assert.Equal(t, []models.EventCategory{
		models.CategoryAdministrative,
		models.CategoryAdministrative,
		models.CategoryGovernance,
		models.CategoryRisk,
	}, []models.EventCategory{events[0].Category, events[1].Category, events[2].Category, events[3].Category})
	assert.Equal(t, "Registry update", events[0].Title)
	assert.Equal(t, "Registry registration", events[1].Title)
	assert.Equal(t, "Managed by a professional syndic", events[2].Description)

	natural := updated.UnixMilli()
	assert.Equal(t, natural+1, events[0].SortKey)
	assert.Equal(t, natural, events[2].SortKey)
	assert.Equal(t, natural-1, events[3].SortKey)
	for _, e := range events {
		assert.Equal(t, *updated, e.OccurredAt)
	}
}

func TestBuildTimeline_CooperativeGovernance(t *testing.T) {
	updated := datePtr(2025, time.September, 30)
	tests := []struct {
		name     string
		snapshot *models.EntitySnapshot
		expected string
	}{
		{"cooperative only", &models.EntitySnapshot{IsCooperative: models.True, LastUpdateDate: updated}, "Managed by a cooperative syndic"},
		{"cooperative over volunteer", &models.EntitySnapshot{SyndicType: models.SyndicVolunteer, IsCooperative: models.True, LastUpdateDate: updated}, "Managed by a cooperative syndic"},
		{"volunteer", &models.EntitySnapshot{SyndicType: models.SyndicVolunteer, IsCooperative: models.False, LastUpdateDate: updated}, "Managed by a volunteer syndic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := BuildTimelineAt(tt.snapshot, nil, nil, fixedNow)

			require.Len(t, events, 2)
			assert.Equal(t, models.CategoryGovernance, events[1].Category)
			assert.Equal(t, tt.expected, events[1].Description)
		})
	}
}

func TestBuildTimeline_RiskWithoutLastUpdateUsesNow(t *testing.T) {
	s := &models.EntitySnapshot{
		SyndicType:           models.SyndicVolunteer,
		InRiskPreventionPlan: models.True,
	}

	events := BuildTimelineAt(s, nil, nil, fixedNow)

	require.Len(t, events, 1, "governance needs a last-update date")
	assert.Equal(t, models.CategoryRisk, events[0].Category)
	assert.Equal(t, models.DateOf(fixedNow), events[0].OccurredAt)
	assert.Equal(t, models.DateOf(fixedNow).UnixMilli()-1, events[0].SortKey)
}

func TestBuildTimeline_RiskFlagMustBeTrue(t *testing.T) {
	for _, flag := range []models.TriState{models.Unknown, models.False} {
		events := BuildTimelineAt(&models.EntitySnapshot{InRiskPreventionPlan: flag}, nil, nil, fixedNow)
		assert.Empty(t, events)
	}
}

// ==========================
// Ordering properties
// ==========================

func TestBuildTimeline_SortedDescending(t *testing.T) {
	s := &models.EntitySnapshot{
		ConstructionPeriod:   models.Period1961To1974,
		SyndicType:           models.SyndicProfessional,
		InRiskPreventionPlan: models.True,
		BylawDate:            datePtr(1969, time.April, 3),
		RegistrationDate:     datePtr(2017, time.February, 1),
		LastUpdateDate:       datePtr(2024, time.December, 12),
	}

	events := BuildTimelineAt(s, sampleTransactions(), sampleDiagnostics(), fixedNow)

	require.Len(t, events, 10)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i-1].SortKey, events[i].SortKey, "position %d", i)
	}
	assert.Equal(t, "Registry update", events[0].Title)
	assert.Equal(t, "Construction", events[len(events)-1].Title)
	assert.Equal(t, "Co-ownership bylaws", events[len(events)-2].Title)
}

func TestBuildTimeline_Idempotent(t *testing.T) {
	s := &models.EntitySnapshot{
		ConstructionPeriod:   models.Period2001To2010,
		SyndicType:           models.SyndicVolunteer,
		InRiskPreventionPlan: models.True,
		LastUpdateDate:       datePtr(2025, time.January, 8),
	}
	txs := sampleTransactions()
	diags := sampleDiagnostics()

	first := BuildTimelineAt(s, txs, diags, fixedNow)
	second := BuildTimelineAt(s, txs, diags, fixedNow)

	assert.Equal(t, first, second)
	assert.Equal(t, sampleTransactions(), txs, "inputs must not be reordered")
}
