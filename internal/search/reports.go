// Package search keeps the condo_reports index in Elasticsearch: one flat
// document per condominium, replaced on every enrichment run.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"copro-workers/internal/models"
)

var ErrIndexMissing = errors.New("index not found")

// ReportMapping is the index definition EnsureIndex applies at startup.
const ReportMapping = `{
  "mappings": {
    "properties": {
      "condoId":            {"type": "keyword"},
      "runId":              {"type": "keyword"},
      "slug":               {"type": "keyword"},
      "name":               {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "city":               {"type": "keyword"},
      "location":           {"type": "geo_point"},
      "energyClass":        {"type": "keyword"},
      "globalScore":        {"type": "integer"},
      "technicalScore":     {"type": "integer"},
      "riskScore":          {"type": "integer"},
      "governanceScore":    {"type": "integer"},
      "energyScore":        {"type": "integer"},
      "marketScore":        {"type": "integer"},
      "confidence":         {"type": "integer"},
      "riskAlert":          {"type": "boolean"},
      "renovationTotalMin": {"type": "long"},
      "renovationTotalMax": {"type": "long"},
      "reliability":        {"type": "keyword"},
      "renovationItems":    {"type": "text"},
      "computedAt":         {"type": "date"}
    }
  }
}`

// ReportDocument is the searchable projection of an EnrichmentReport. The
// timeline stays in postgres.
type ReportDocument struct {
	CondoID            string             `json:"condoId"`
	RunID              string             `json:"runId"`
	Slug               string             `json:"slug,omitempty"`
	Name               string             `json:"name,omitempty"`
	City               string             `json:"city,omitempty"`
	Location           *models.GeoPoint   `json:"location,omitempty"`
	EnergyClass        models.EnergyClass `json:"energyClass,omitempty"`
	GlobalScore        int                `json:"globalScore"`
	TechnicalScore     int                `json:"technicalScore"`
	RiskScore          int                `json:"riskScore"`
	GovernanceScore    int                `json:"governanceScore"`
	EnergyScore        int                `json:"energyScore"`
	MarketScore        int                `json:"marketScore"`
	Confidence         int                `json:"confidence"`
	RiskAlert          bool               `json:"riskAlert"`
	RenovationTotalMin int64              `json:"renovationTotalMin"`
	RenovationTotalMax int64              `json:"renovationTotalMax"`
	Reliability        models.Reliability `json:"reliability"`
	RenovationItems    []string           `json:"renovationItems"`
	ComputedAt         time.Time          `json:"computedAt"`
}

func DocumentFromReport(r *models.EnrichmentReport) ReportDocument {
	items := make([]string, 0, len(r.Renovation.Items))
	for _, item := range r.Renovation.Items {
		items = append(items, item.Name)
	}
	return ReportDocument{
		CondoID:            r.CondoID,
		RunID:              r.RunID,
		Slug:               r.Slug,
		Name:               r.Name,
		City:               r.City,
		Location:           r.Location,
		EnergyClass:        r.EnergyClass,
		GlobalScore:        r.Score.Global,
		TechnicalScore:     r.Score.Technical,
		RiskScore:          r.Score.Risk,
		GovernanceScore:    r.Score.Governance,
		EnergyScore:        r.Score.Energy,
		MarketScore:        r.Score.Market,
		Confidence:         r.Score.Confidence,
		RiskAlert:          r.RiskAlert,
		RenovationTotalMin: r.Renovation.TotalMin,
		RenovationTotalMax: r.Renovation.TotalMax,
		Reliability:        r.Renovation.Reliability,
		RenovationItems:    items,
		ComputedAt:         r.ComputedAt,
	}
}

type ReportIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewReportIndex(client *elasticsearch.Client, index string) *ReportIndex {
	return &ReportIndex{client: client, index: index}
}

func (r *ReportIndex) Name() string { return r.index }

// IndexReport writes the report document under the condominium id, so a
// new run overwrites the previous one.
func (r *ReportIndex) IndexReport(ctx context.Context, report *models.EnrichmentReport) error {
	body, err := json.Marshal(DocumentFromReport(report))
	if err != nil {
		return fmt.Errorf("marshal report document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: report.CondoID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("index report %s: %w", report.CondoID, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return fmt.Errorf("%w: %s", ErrIndexMissing, r.index)
	}
	if res.IsError() {
		return fmt.Errorf("index report %s: %s", report.CondoID, res.Status())
	}
	return nil
}
