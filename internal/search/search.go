// Package search finds candidate supplier websites for a product request.
// The provider returns a ranked list of results; a failed query is distinct
// from a query with no results.
package search

import "context"

// Result is one ranked search hit.
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
}

// Provider defines the interface for web-search backends.
type Provider interface {
	// Search runs one query and returns its ranked results. An empty
	// slice with a nil error means the query genuinely had no hits.
	Search(ctx context.Context, query string) ([]Result, error)
}
