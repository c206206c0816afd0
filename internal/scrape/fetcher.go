// Package scrape fetches supplier websites and turns them into plain text
// for signal extraction. A failed or empty fetch is terminal for that
// company; the orchestrator skips it and continues the batch.
package scrape

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/chemvet/chemvet/internal/cache"
	"github.com/chemvet/chemvet/internal/model"
	"github.com/chemvet/chemvet/internal/util"
	"github.com/chemvet/chemvet/internal/worker"
)

// FetchError marks a fetch failure (network, timeout, blocked, non-HTML, or
// empty content). The orchestrator treats it as terminal for the company.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Page is the scraped content for one company site.
type Page struct {
	// Text is the combined visible text of the homepage and about page,
	// whitespace-collapsed and capped. Signal extraction runs on this.
	Text string `json:"text"`

	// Markdown is the homepage rendered as Markdown, used as the LLM
	// content sample.
	Markdown string `json:"markdown"`

	// FinalURL is the homepage URL after redirects.
	FinalURL string `json:"final_url"`
}

// Fetcher fetches and extracts supplier page content.
type Fetcher struct {
	httpClient *http.Client
	httpCfg    model.HTTPConfig
	cfg        model.ScrapeConfig
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	pages      cache.Cache // nil when caching is disabled
}

// NewFetcher creates a Fetcher. pages may be nil to disable caching.
func NewFetcher(httpCfg model.HTTPConfig, cfg model.ScrapeConfig, pages cache.Cache) *Fetcher {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
	}
	if httpCfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed supplier sites
	}

	timeout := cfg.PageTimeout
	if timeout == 0 {
		timeout = httpCfg.Timeout
	}

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		httpCfg: httpCfg,
		cfg:     cfg,
		pages:   pages,
	}

	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(util.NormalizeUserAgent(httpCfg.UserAgent), timeout)
	}
	if cfg.RatePerSecond > 0 {
		f.limiter = worker.NewLimiter(cfg.RatePerSecond, cfg.RateBurst)
	}

	return f
}

// Fetch retrieves the homepage and, when discoverable, one about/company
// page, and returns the combined content. All failures come back as
// *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if f.pages != nil {
		if data, found := f.pages.Get(cache.Key(rawURL)); found {
			var page Page
			if err := json.Unmarshal(data, &page); err == nil {
				return &page, nil
			}
		}
	}

	page, err := f.fetchFresh(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if f.pages != nil {
		if data, err := json.Marshal(page); err == nil {
			_ = f.pages.Set(cache.Key(rawURL), data, 0)
		}
	}

	return page, nil
}

func (f *Fetcher) fetchFresh(ctx context.Context, rawURL string) (*Page, error) {
	if err := f.clearance(ctx, rawURL); err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	body, finalURL, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("parse html: %w", err)}
	}

	homeText := truncate(visibleText(doc), f.cfg.HomepageChars)

	markdown, mdErr := htmltomarkdown.ConvertString(body)
	if mdErr != nil {
		// Markdown is only the LLM content sample; degrade to plain text.
		markdown = homeText
	}
	markdown = truncate(strings.TrimSpace(markdown), f.cfg.TotalChars)

	text := homeText
	if aboutText := f.fetchAbout(ctx, doc, finalURL); aboutText != "" {
		text = text + " " + aboutText
	}
	text = truncate(text, f.cfg.TotalChars)

	if strings.TrimSpace(text) == "" {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("empty content")}
	}

	return &Page{
		Text:     text,
		Markdown: markdown,
		FinalURL: finalURL,
	}, nil
}

// fetchAbout follows the first about/company link found on the homepage.
// About-page failures are not terminal; the homepage text stands alone.
func (f *Fetcher) fetchAbout(ctx context.Context, doc *html.Node, pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	aboutURL := findAboutURL(doc, base, f.cfg.AboutKeywords, f.cfg.MaxAboutLinks)
	if aboutURL == "" || aboutURL == pageURL {
		return ""
	}

	if err := f.clearance(ctx, aboutURL); err != nil {
		return ""
	}

	body, _, err := f.get(ctx, aboutURL)
	if err != nil {
		return ""
	}

	aboutDoc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}

	return truncate(visibleText(aboutDoc), f.cfg.AboutChars)
}

// clearance applies robots.txt and per-domain rate limiting before a request.
func (f *Fetcher) clearance(ctx context.Context, rawURL string) error {
	var crawlDelay time.Duration
	if f.robots != nil {
		allowed, delay, _ := f.robots.CanFetch(ctx, rawURL)
		if !allowed {
			return fmt.Errorf("disallowed by robots.txt")
		}
		crawlDelay = delay
	}
	if f.limiter != nil {
		return f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay)
	}
	return nil
}

// get performs one HTTP GET and returns the body and final URL.
func (f *Fetcher) get(ctx context.Context, rawURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.httpCfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if f.httpCfg.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", f.httpCfg.AcceptLanguage)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	limitedReader := io.LimitReader(resp.Body, f.httpCfg.MaxBodyBytes)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return "", "", fmt.Errorf("read body: %w", err)
	}

	return string(body), resp.Request.URL.String(), nil
}
