package search

import (
	"net/url"
	"strings"
)

// Filter drops candidates that cannot represent a single company's own
// site: marketplace/aggregator domains, PDF documents, and repeat domains.
// Applied before any fetching happens so excluded sites are never scraped.
type Filter struct {
	excluded   []string
	maxResults int
	seen       map[string]bool
}

// NewFilter creates a candidate filter. maxResults caps the accepted list;
// zero or negative means no cap.
func NewFilter(excludedDomains []string, maxResults int) *Filter {
	return &Filter{
		excluded:   excludedDomains,
		maxResults: maxResults,
		seen:       make(map[string]bool),
	}
}

// Accept reports whether a result passes the filter. Accepted domains are
// remembered, so a second result from the same domain is rejected.
func (f *Filter) Accept(r Result) bool {
	if f.maxResults > 0 && len(f.seen) >= f.maxResults {
		return false
	}

	parsed, err := url.Parse(r.URL)
	if err != nil || parsed.Host == "" {
		return false
	}
	domain := strings.ToLower(parsed.Host)

	if strings.HasSuffix(strings.ToLower(parsed.Path), ".pdf") {
		return false
	}
	for _, excl := range f.excluded {
		if strings.Contains(domain, excl) {
			return false
		}
	}
	if f.seen[domain] {
		return false
	}

	f.seen[domain] = true
	return true
}

// Apply filters a ranked result list, preserving order.
func (f *Filter) Apply(results []Result) []Result {
	accepted := make([]Result, 0, len(results))
	for _, r := range results {
		if f.Accept(r) {
			accepted = append(accepted, r)
		}
	}
	return accepted
}
