package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
	ErrMissingParam     = errors.New("missing required parameter")
)

const (
	QueryTypeCondoSearch  = "condo_search"
	QueryTypeCondosNearby = "condos_nearby"

	DefaultSize     = 20
	MaxSize         = 100
	DefaultRadiusKm = 1.0
)

// Filters narrow both query types. Nearby searches additionally need the
// center point.
type Filters struct {
	City           string   `json:"city,omitempty"`
	MinGlobalScore *int     `json:"minGlobalScore,omitempty"`
	MaxGlobalScore *int     `json:"maxGlobalScore,omitempty"`
	EnergyClasses  []string `json:"energyClasses,omitempty"`
	RiskAlertOnly  bool     `json:"riskAlertOnly,omitempty"`
	Keywords       string   `json:"keywords,omitempty"`
	SortBy         string   `json:"sortBy,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	RadiusKm  float64  `json:"radiusKm,omitempty"`
}

type SearchQuery struct {
	Index     string
	QueryType string
	Filters   Filters
	From      int
	Size      int
}

// Page clamps pagination: size to 1..MaxSize (DefaultSize when unset),
// from to >= 0.
func (q SearchQuery) Page() (from, size int) {
	from, size = q.From, q.Size
	if from < 0 {
		from = 0
	}
	switch {
	case size < 1:
		size = DefaultSize
	case size > MaxSize:
		size = MaxSize
	}
	return from, size
}

// BuildQuery turns a SearchQuery into a search request against the
// report index.
func BuildQuery(q SearchQuery) (*esapi.SearchRequest, error) {
	if q.Index == "" {
		return nil, ErrMissingIndex
	}

	var body map[string]interface{}
	switch q.QueryType {
	case QueryTypeCondoSearch:
		body = buildCondoSearchQuery(q.Filters)
	case QueryTypeCondosNearby:
		if q.Filters.Latitude == nil || q.Filters.Longitude == nil {
			return nil, fmt.Errorf("%w: latitude and longitude", ErrMissingParam)
		}
		body = buildNearbyQuery(q.Filters)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, q.QueryType)
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	from, size := q.Page()
	return &esapi.SearchRequest{
		Index:          []string{q.Index},
		Body:           bytes.NewReader(raw),
		From:           &from,
		Size:           &size,
		TrackTotalHits: true,
	}, nil
}

func filterClauses(f Filters) []interface{} {
	clauses := []interface{}{}

	if f.City != "" {
		clauses = append(clauses, map[string]interface{}{
			"term": map[string]interface{}{"city": f.City},
		})
	}

	if f.MinGlobalScore != nil || f.MaxGlobalScore != nil {
		bounds := map[string]interface{}{}
		if f.MinGlobalScore != nil {
			bounds["gte"] = *f.MinGlobalScore
		}
		if f.MaxGlobalScore != nil {
			bounds["lte"] = *f.MaxGlobalScore
		}
		clauses = append(clauses, map[string]interface{}{
			"range": map[string]interface{}{"globalScore": bounds},
		})
	}

	if len(f.EnergyClasses) > 0 {
		clauses = append(clauses, map[string]interface{}{
			"terms": map[string]interface{}{"energyClass": f.EnergyClasses},
		})
	}

	if f.RiskAlertOnly {
		clauses = append(clauses, map[string]interface{}{
			"term": map[string]interface{}{"riskAlert": true},
		})
	}
	return clauses
}

func mustClauses(f Filters) []interface{} {
	if f.Keywords == "" {
		return []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}
	return []interface{}{map[string]interface{}{
		"multi_match": map[string]interface{}{
			"query":  f.Keywords,
			"fields": []string{"name^3", "renovationItems", "city"},
			"type":   "best_fields",
		},
	}}
}

func buildCondoSearchQuery(f Filters) map[string]interface{} {
	boolQuery := map[string]interface{}{"must": mustClauses(f)}
	if filters := filterClauses(f); len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}

	switch f.SortBy {
	case "globalScore", "renovationTotalMax", "computedAt":
		query["sort"] = []map[string]interface{}{{f.SortBy: "desc"}}
	case "":
		// relevance first when searching text, best score otherwise
		if f.Keywords == "" {
			query["sort"] = []map[string]interface{}{{"globalScore": "desc"}}
		}
	}
	return query
}

func buildNearbyQuery(f Filters) map[string]interface{} {
	radius := f.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}
	center := map[string]interface{}{"lat": *f.Latitude, "lon": *f.Longitude}

	filters := append(filterClauses(f), map[string]interface{}{
		"geo_distance": map[string]interface{}{
			"distance": strconv.FormatFloat(radius, 'f', -1, 64) + "km",
			"location": center,
		},
	})

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   mustClauses(f),
				"filter": filters,
			},
		},
		"sort": []map[string]interface{}{{
			"_geo_distance": map[string]interface{}{
				"location": center,
				"order":    "asc",
				"unit":     "km",
			},
		}},
	}
}
