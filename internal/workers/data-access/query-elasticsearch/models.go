package queryelasticsearch

import "copro-workers/internal/workers/data-access/query-elasticsearch/queries"

type Input struct {
	IndexName  string          `json:"indexName,omitempty"`
	QueryType  string          `json:"queryType"`
	Filters    queries.Filters `json:"filters"`
	Pagination Pagination      `json:"pagination"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Data      []queries.Hit `json:"data"`
	TotalHits int64         `json:"totalHits"`
	MaxScore  float64       `json:"maxScore"`
	Took      int64         `json:"took"` // milliseconds
}
