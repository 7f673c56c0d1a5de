// Package timeline merges the dated facts known about a condominium into a
// single list ordered from most recent to oldest.
package timeline

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"copro-workers/internal/models"
)

var syndicLabels = map[models.SyndicType]string{
	models.SyndicProfessional: "professional syndic",
	models.SyndicVolunteer:    "volunteer syndic",
}

// BuildTimeline builds the timeline using the current time for undated
// risk events.
func BuildTimeline(s *models.EntitySnapshot, transactions []models.TransactionRecord, diagnostics []models.DiagnosticRecord) []models.TimelineEvent {
	return BuildTimelineAt(s, transactions, diagnostics, time.Now())
}

// BuildTimelineAt is BuildTimeline with an explicit clock. Events are sorted
// by SortKey only, descending; transactions and diagnostics are expected to
// be limited by the caller. Undated records are skipped.
func BuildTimelineAt(s *models.EntitySnapshot, transactions []models.TransactionRecord, diagnostics []models.DiagnosticRecord, now time.Time) []models.TimelineEvent {
	events := make([]models.TimelineEvent, 0, 5+len(transactions)+len(diagnostics))

	if year := s.ConstructionPeriod.AnchorYear(); year > 0 {
		events = append(events, newEvent(models.NewDate(year, time.January, 1), 0, models.CategoryConstruction,
			"Construction",
			fmt.Sprintf("Built in the %s period (approximate date)", s.ConstructionPeriod)))
	}

	if s.BylawDate != nil {
		events = append(events, newEvent(*s.BylawDate, 0, models.CategoryAdministrative,
			"Co-ownership bylaws",
			"Adoption of the co-ownership bylaws"))
	}

	if s.RegistrationDate != nil {
		events = append(events, newEvent(*s.RegistrationDate, 0, models.CategoryAdministrative,
			"Registry registration",
			"Registration in the national condominium registry"))
	}

	for _, d := range diagnostics {
		if d.Date == nil {
			continue
		}
		events = append(events, diagnosticEvent(d))
	}

	for _, tx := range transactions {
		if tx.Date.IsZero() {
			continue
		}
		events = append(events, transactionEvent(tx))
	}

	if s.InRiskPreventionPlan.IsTrue() {
		at := models.DateOf(now)
		if s.LastUpdateDate != nil {
			at = *s.LastUpdateDate
		}
		// sorts just after same-day events
		events = append(events, newEvent(at, -1, models.CategoryRisk,
			"Risk prevention plan",
			"The building is covered by a public risk prevention plan"))
	}

	if s.LastUpdateDate != nil {
		if label, ok := syndicLabel(s); ok {
			events = append(events, newEvent(*s.LastUpdateDate, 0, models.CategoryGovernance,
				"Current management",
				"Managed by a "+label))
		}
		// sorts before same-day governance and risk events
		events = append(events, newEvent(*s.LastUpdateDate, 1, models.CategoryAdministrative,
			"Registry update",
			"Latest update of the registry record"))
	}

	slices.SortStableFunc(events, func(a, b models.TimelineEvent) int {
		return cmp.Compare(b.SortKey, a.SortKey)
	})
	return events
}

// syndicLabel checks the cooperative flag first, as governance scoring does.
func syndicLabel(s *models.EntitySnapshot) (string, bool) {
	if s.IsCooperative.IsTrue() {
		return "cooperative syndic", true
	}
	label, ok := syndicLabels[s.SyndicType]
	return label, ok
}

func newEvent(at models.Date, offset int64, category models.EventCategory, title, description string) models.TimelineEvent {
	return models.TimelineEvent{
		OccurredAt:  at,
		SortKey:     at.UnixMilli() + offset,
		Category:    category,
		Title:       title,
		Description: description,
	}
}

func diagnosticEvent(d models.DiagnosticRecord) models.TimelineEvent {
	class := "unknown class"
	if d.EnergyClass.Known() {
		class = "class " + string(d.EnergyClass)
	}
	description := "Energy performance diagnostic filed"
	if d.GHGClass.Known() {
		description = fmt.Sprintf("Energy performance diagnostic filed, greenhouse gas class %s", d.GHGClass)
	}
	return newEvent(*d.Date, 0, models.CategoryEnergy, "Energy diagnostic: "+class, description)
}

func transactionEvent(tx models.TransactionRecord) models.TimelineEvent {
	description := fmt.Sprintf("%s m² sold for %s €", tx.Area.String(), tx.Price.StringFixed(0))
	if perArea, ok := tx.PricePerArea(); ok {
		description += fmt.Sprintf(" (%s €/m²)", perArea.StringFixed(0))
	}
	title := "Nearby sale"
	if tx.PropertyType != "" {
		title = "Nearby sale: " + tx.PropertyType
	}
	return newEvent(tx.Date, 0, models.CategoryTransaction, title, description)
}
