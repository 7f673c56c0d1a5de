package models

type QueryType string

const (
	QueryTypeCondoSnapshot      QueryType = "condo_snapshot"
	QueryTypeCondoBySlug        QueryType = "condo_by_slug"
	QueryTypeDiagnosticHistory  QueryType = "diagnostic_history"
	QueryTypeNearbyTransactions QueryType = "nearby_transactions"
	QueryTypeCondoEnrichment    QueryType = "condo_enrichment"
)
