package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/chemvet/chemvet/internal/model"
)

const serpBaseURL = "https://serpapi.com/search"

// SerpAPIProvider implements Provider against the SerpAPI Google engine.
type SerpAPIProvider struct {
	apiKey     string
	engine     string
	numResults int
	baseURL    string
	httpClient *http.Client
}

// serpResponse maps the subset of the SerpAPI payload the pipeline consumes.
type serpResponse struct {
	OrganicResults []struct {
		Link    string `json:"link"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
	Error string `json:"error,omitempty"`
}

// NewSerpAPIProvider creates a SerpAPI-backed search provider.
func NewSerpAPIProvider(cfg model.SearchConfig) (*SerpAPIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("SerpAPI key is required")
	}

	engine := cfg.Engine
	if engine == "" {
		engine = "google"
	}

	num := cfg.ResultsPerQuery
	if num <= 0 {
		num = 10
	}

	return &SerpAPIProvider{
		apiKey:     cfg.APIKey,
		engine:     engine,
		numResults: num,
		baseURL:    serpBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Search runs one query against the configured search engine.
func (p *SerpAPIProvider) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", p.apiKey)
	params.Set("num", strconv.Itoa(p.numResults))
	params.Set("engine", p.engine)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search HTTP %d: %s", resp.StatusCode, string(body))
	}

	var payload serpResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("search API error: %s", payload.Error)
	}

	results := make([]Result, 0, len(payload.OrganicResults))
	for _, item := range payload.OrganicResults {
		if item.Link == "" {
			continue
		}
		results = append(results, Result{
			URL:     item.Link,
			Title:   item.Title,
			Snippet: item.Snippet,
		})
	}

	return results, nil
}
