package models

import "time"

// ScoreResult holds the five bounded sub-scores, the normalized global
// score and the data-completeness confidence index.
type ScoreResult struct {
	Global     int `json:"global"`
	Technical  int `json:"technical"`
	Risk       int `json:"risk"`
	Governance int `json:"governance"`
	Energy     int `json:"energy"`
	Market     int `json:"market"`
	Confidence int `json:"confidence"`
}

type Reliability string

const (
	ReliabilityHigh   Reliability = "high"
	ReliabilityMedium Reliability = "medium"
	ReliabilityLow    Reliability = "low"
)

// RenovationLineItem is one probable works item, in euros.
type RenovationLineItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MinCost     int64  `json:"minCost"`
	MaxCost     int64  `json:"maxCost"`
}

type RenovationEstimate struct {
	Items       []RenovationLineItem `json:"items"`
	TotalMin    int64                `json:"totalMin"`
	TotalMax    int64                `json:"totalMax"`
	Reliability Reliability          `json:"reliability"`
}

type EventCategory string

const (
	CategoryConstruction   EventCategory = "construction"
	CategoryAdministrative EventCategory = "administrative"
	CategoryEnergy         EventCategory = "energy"
	CategoryTransaction    EventCategory = "transaction"
	CategoryRisk           EventCategory = "risk"
	CategoryGovernance     EventCategory = "governance"
)

// TimelineEvent is a dated fact about the condominium. SortKey is the
// event date in Unix milliseconds, shifted by one unit for deliberate
// same-day tie-breaks.
type TimelineEvent struct {
	OccurredAt  Date          `json:"occurredAt"`
	SortKey     int64         `json:"sortKey"`
	Category    EventCategory `json:"category"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
}

// EnrichmentReport is the composed output persisted and indexed by the
// enrich-condo worker.
type EnrichmentReport struct {
	RunID       string             `json:"runId"`
	CondoID     string             `json:"condoId"`
	Slug        string             `json:"slug,omitempty"`
	Name        string             `json:"name,omitempty"`
	City        string             `json:"city,omitempty"`
	Location    *GeoPoint          `json:"location,omitempty"`
	EnergyClass EnergyClass        `json:"energyClass,omitempty"`
	ComputedAt  time.Time          `json:"computedAt"`
	Score       ScoreResult        `json:"score"`
	Renovation  RenovationEstimate `json:"renovation"`
	Timeline    []TimelineEvent    `json:"timeline"`
	RiskAlert   bool               `json:"riskAlert"`
}

// GeoPoint uses Elasticsearch's geo_point object form.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
