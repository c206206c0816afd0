package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/chemvet/chemvet/internal/cache"
	"github.com/chemvet/chemvet/internal/classify"
	"github.com/chemvet/chemvet/internal/extract"
	"github.com/chemvet/chemvet/internal/llm"
	"github.com/chemvet/chemvet/internal/model"
	"github.com/chemvet/chemvet/internal/scrape"
	"github.com/chemvet/chemvet/internal/search"
)

// Verifier orchestrates a single verification run: search, filter, fetch,
// extract, classify. Candidates within a run are processed strictly
// sequentially; per-company failures are isolated and never abort the run.
type Verifier struct {
	config    *model.Config
	searcher  search.Provider
	fetcher   *scrape.Fetcher
	extractor *extract.SignalExtractor
	rules     *classify.RuleBased
	llm       *classify.LLM // nil when no provider is configured
}

// NewVerifier wires a verifier from configuration. The search provider is
// injected so batch runs can share one client.
func NewVerifier(cfg *model.Config, searcher search.Provider) (*Verifier, error) {
	extractor, err := extract.NewSignalExtractor(cfg.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}

	var pages cache.Cache
	if cfg.Cache.Enabled {
		pages = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	// An unusable provider configuration is fatal at startup; degrading
	// to rule-based is reserved for call-time failures.
	var llmClassifier *classify.LLM
	if cfg.LLM.Provider != "" {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return nil, fmt.Errorf("llm provider: %w", err)
		}
		if provider != nil {
			llmClassifier = classify.NewLLM(provider, cfg.LLM)
		}
	}

	return &Verifier{
		config:    cfg,
		searcher:  searcher,
		fetcher:   scrape.NewFetcher(cfg.HTTP, cfg.Scrape, pages),
		extractor: extractor,
		rules:     classify.NewRuleBased(cfg.Rules, cfg.Vocabulary),
		llm:       llmClassifier,
	}, nil
}

// Report is the complete outcome of one verification run.
type Report struct {
	Product     model.ProductRequest         `json:"product"`
	Candidates  int                          `json:"candidates"` // after filtering
	Verified    int                          `json:"verified"`
	Results     []model.ClassificationResult `json:"results"`
	GeneratedAt time.Time                    `json:"generated_at"`
}

// Run executes the full pipeline for one product request.
func (v *Verifier) Run(ctx context.Context, product model.ProductRequest) (*Report, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}

	// 1. Search
	candidates, err := v.collectCandidates(ctx, product)
	if err != nil {
		return nil, err
	}
	v.progress("Found %d candidate suppliers for %s", len(candidates), product.Name)
	totalCandidates := len(candidates)

	// 2. Verify the top candidates sequentially
	maxVerify := v.config.Concurrency.MaxVerify
	if len(candidates) > maxVerify {
		candidates = candidates[:maxVerify]
	}

	results := make([]model.ClassificationResult, 0, len(candidates))
	for i, c := range candidates {
		v.progress("[%d/%d] Verifying %s", i+1, len(candidates), c.URL)
		result, err := v.VerifySupplier(ctx, c.URL, c.Title, product)
		if err != nil {
			v.progress("[%d/%d] Skipped: %v", i+1, len(candidates), err)
			continue
		}
		results = append(results, *result)
	}

	// 3. Manufacturers first, then by confidence
	sortResults(results)

	return &Report{
		Product:     product,
		Candidates:  totalCandidates,
		Verified:    len(results),
		Results:     results,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// collectCandidates runs the query set through the search provider and
// filters out marketplaces, PDFs and duplicate domains.
func (v *Verifier) collectCandidates(ctx context.Context, product model.ProductRequest) ([]search.Result, error) {
	queries := search.BuildQueries(product.Name, product.CAS)
	if max := v.config.Search.MaxQueries; max > 0 && len(queries) > max {
		queries = queries[:max]
	}

	filter := search.NewFilter(v.config.Search.ExcludedDomains, v.config.Search.MaxResults)

	var candidates []search.Result
	var lastErr error
	for _, q := range queries {
		v.progress("Searching: %s", q)
		results, err := v.searcher.Search(ctx, q)
		if err != nil {
			lastErr = err
			v.progress("Search failed: %v", err)
			continue
		}
		candidates = append(candidates, filter.Apply(results)...)
	}

	if len(candidates) == 0 && lastErr != nil {
		return nil, fmt.Errorf("search: %w", lastErr)
	}
	return candidates, nil
}

// VerifySupplier classifies a single candidate company. A fetch failure or
// empty page content returns a nil result with a *scrape.FetchError; no
// result is fabricated for unreachable sites.
func (v *Verifier) VerifySupplier(ctx context.Context, rawURL, title string, product model.ProductRequest) (*model.ClassificationResult, error) {
	// 1. Fetch
	page, err := v.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	// 2. Extract signals
	evidence := v.extractor.Extract(page.Text)

	companyName := companyNameFor(title, page.FinalURL)

	// 3. Classify. Exactly one classifier contributes the outcome.
	outcome := v.classifyCompany(ctx, companyName, page, evidence, product)

	// 4. Assemble
	return &model.ClassificationResult{
		CompanyName:    companyName,
		Website:        page.FinalURL,
		Classification: outcome.Classification,
		Confidence:     outcome.Confidence,
		Reasoning:      outcome.Reasoning,
		Evidence:       evidence,
	}, nil
}

func (v *Verifier) classifyCompany(ctx context.Context, companyName string, page *scrape.Page, evidence model.Evidence, product model.ProductRequest) classify.Outcome {
	if v.llm != nil {
		outcome, err := v.llm.Classify(ctx, classify.Request{
			CompanyName:   companyName,
			Website:       page.FinalURL,
			Evidence:      evidence,
			Product:       product,
			ContentSample: page.Markdown,
		})
		if err == nil {
			return outcome
		}
		if errors.Is(err, classify.ErrClassificationUnavailable) {
			v.progress("LLM unavailable, using rule-based classification: %v", err)
		}
	}
	return v.rules.Classify(evidence)
}

func (v *Verifier) progress(format string, args ...any) {
	if v.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// sortResults orders manufacturers before traders and unclear, then by
// confidence descending within each class.
func sortResults(results []model.ClassificationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		im := results[i].Classification == model.ClassManufacturer
		jm := results[j].Classification == model.ClassManufacturer
		if im != jm {
			return im
		}
		return results[i].Confidence > results[j].Confidence
	})
}

// companyNameFor derives a display name from the search result title,
// falling back to the site's host.
func companyNameFor(title, rawURL string) string {
	title = strings.TrimSpace(title)
	if title != "" {
		return title
	}
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		return strings.TrimPrefix(u.Host, "www.")
	}
	return rawURL
}
