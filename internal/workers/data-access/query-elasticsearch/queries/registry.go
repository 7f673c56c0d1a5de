package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"copro-workers/internal/search"
)

var ErrIndexNotFound = errors.New("index not found")

// Hit is one report document. DistanceKm is only set by nearby searches.
type Hit struct {
	search.ReportDocument
	Score      float64  `json:"score,omitempty"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

type QueryResult struct {
	Data      []Hit
	TotalHits int64
	MaxScore  float64
	Took      int64
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			Score  *float64              `json:"_score"`
			Source search.ReportDocument `json:"_source"`
			Sort   []interface{}         `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

func Execute(ctx context.Context, es *elasticsearch.Client, q SearchQuery) (*QueryResult, error) {
	req, err := BuildQuery(q)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := req.Do(ctx, es)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, q.Index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	result := &QueryResult{
		Data:      make([]Hit, 0, len(r.Hits.Hits)),
		TotalHits: r.Hits.Total.Value,
		Took:      time.Since(start).Milliseconds(),
	}
	if r.Hits.MaxScore != nil {
		result.MaxScore = *r.Hits.MaxScore
	}
	for _, h := range r.Hits.Hits {
		hit := Hit{ReportDocument: h.Source}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		if q.QueryType == QueryTypeCondosNearby && len(h.Sort) > 0 {
			if d, ok := h.Sort[0].(float64); ok {
				hit.DistanceKm = &d
			}
		}
		result.Data = append(result.Data, hit)
	}
	return result, nil
}
