package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the complete runtime configuration. Every component receives the
// section it needs at construction time; there are no ambient globals.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Scrape      ScrapeConfig      `yaml:"scrape" mapstructure:"scrape"`
	Vocabulary  Vocabulary        `yaml:"vocabulary" mapstructure:"vocabulary"`
	Rules       RulesConfig       `yaml:"rules" mapstructure:"rules"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
}

// HTTPConfig controls outbound HTTP behavior shared by search and scrape.
type HTTPConfig struct {
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent      string        `yaml:"user_agent" mapstructure:"user_agent"`
	AcceptLanguage string        `yaml:"accept_language" mapstructure:"accept_language"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS    bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy      string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy     string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy        string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// SearchConfig controls the search provider and candidate filtering.
type SearchConfig struct {
	APIKey          string   `yaml:"api_key" mapstructure:"api_key"`
	Engine          string   `yaml:"engine" mapstructure:"engine"`
	MaxQueries      int      `yaml:"max_queries" mapstructure:"max_queries"`   // queries submitted per run
	MaxResults      int      `yaml:"max_results" mapstructure:"max_results"`   // candidate cap after filtering
	ResultsPerQuery int      `yaml:"results_per_query" mapstructure:"results_per_query"`
	ExcludedDomains []string `yaml:"excluded_domains" mapstructure:"excluded_domains"`
}

// ScrapeConfig controls page fetching and text extraction.
type ScrapeConfig struct {
	HomepageChars int           `yaml:"homepage_chars" mapstructure:"homepage_chars"`
	AboutChars    int           `yaml:"about_chars" mapstructure:"about_chars"`
	TotalChars    int           `yaml:"total_chars" mapstructure:"total_chars"`
	MaxAboutLinks int           `yaml:"max_about_links" mapstructure:"max_about_links"` // anchors inspected for an about page
	AboutKeywords []string      `yaml:"about_keywords" mapstructure:"about_keywords"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	RatePerSecond float64       `yaml:"rate_per_second" mapstructure:"rate_per_second"` // per-domain
	RateBurst     int           `yaml:"rate_burst" mapstructure:"rate_burst"`
	PageTimeout   time.Duration `yaml:"page_timeout" mapstructure:"page_timeout"`
}

// Vocabulary holds the fixed bilingual keyword sets used by the signal
// extractor and, for address partitioning, the rule-based classifier.
// Manufacturer and trader terms must be disjoint.
type Vocabulary struct {
	ManufacturerKeywords []string `yaml:"manufacturer_keywords" mapstructure:"manufacturer_keywords"`
	TraderKeywords       []string `yaml:"trader_keywords" mapstructure:"trader_keywords"`
	Certificates         []string `yaml:"certificates" mapstructure:"certificates"`
	IndustrialAddresses  []string `yaml:"industrial_addresses" mapstructure:"industrial_addresses"`
	OfficeAddresses      []string `yaml:"office_addresses" mapstructure:"office_addresses"`
}

// RulesConfig holds the weights and thresholds of the rule-based classifier.
// Tuning these never requires touching classification logic.
type RulesConfig struct {
	KeywordWeight     int `yaml:"keyword_weight" mapstructure:"keyword_weight"`         // per manufacturer/trader keyword
	CapacityWeight    int `yaml:"capacity_weight" mapstructure:"capacity_weight"`       // production capacity present
	CertificateWeight int `yaml:"certificate_weight" mapstructure:"certificate_weight"` // per certificate
	AddressWeight     int `yaml:"address_weight" mapstructure:"address_weight"`         // per address indicator
	StrongThreshold   int `yaml:"strong_threshold" mapstructure:"strong_threshold"`     // minimum winning score
	TieMargin         int `yaml:"tie_margin" mapstructure:"tie_margin"`                 // margins <= this are unclear
	ConfidenceBase    int `yaml:"confidence_base" mapstructure:"confidence_base"`
	ConfidenceSlope   int `yaml:"confidence_slope" mapstructure:"confidence_slope"` // per point of margin
	ConfidenceCap     int `yaml:"confidence_cap" mapstructure:"confidence_cap"`
	UnclearConfidence int `yaml:"unclear_confidence" mapstructure:"unclear_confidence"`
}

// LLMConfig holds LLM provider configuration. An empty Provider disables the
// LLM classifier and the pipeline runs rule-based only.
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, ""
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"-" mapstructure:"api_key"` // never rendered to config files
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	SampleChars int     `yaml:"sample_chars" mapstructure:"sample_chars"` // content sample sent in the prompt
}

// CacheConfig controls the layered page cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	JSONPath string `yaml:"json_path" mapstructure:"json_path"`
	Verbose  bool   `yaml:"verbose" mapstructure:"verbose"`
}

// ConcurrencyConfig controls batch-mode parallelism. Companies within a
// single verification run are always processed sequentially.
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers"`
	MaxVerify    int `yaml:"max_verify" mapstructure:"max_verify"` // candidates verified per run
}

// DefaultConfig returns the built-in configuration. The vocabularies and
// scrape limits mirror the behavior the pipeline was tuned against.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:        10 * time.Second,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			AcceptLanguage: "en-US,en;q=0.9,zh-CN;q=0.8,zh;q=0.7",
			MaxBodyBytes:   2_000_000,
		},
		Search: SearchConfig{
			Engine:          "google",
			MaxQueries:      3,
			MaxResults:      10,
			ResultsPerQuery: 10,
			ExcludedDomains: []string{
				"alibaba.com", "made-in-china.com", "indiamart.com",
				"globalsources.com", "wikipedia.org", "linkedin.com",
			},
		},
		Scrape: ScrapeConfig{
			HomepageChars: 5000,
			AboutChars:    3000,
			TotalChars:    8000,
			MaxAboutLinks: 50,
			AboutKeywords: []string{"about", "company", "关于", "profile"},
			RespectRobots: true,
			RatePerSecond: 1,
			RateBurst:     3,
			PageTimeout:   10 * time.Second,
		},
		Vocabulary: Vocabulary{
			ManufacturerKeywords: []string{
				"manufacturer", "factory", "plant", "production line",
				"workshop", "manufacturing facility", "own factory",
				"制造商", "工厂", "生产线", "车间", "生产厂家",
			},
			TraderKeywords: []string{
				"trading company", "import export", "sourcing",
				"agent", "distributor", "贸易公司", "进出口",
			},
			Certificates: []string{
				"ISO 9001", "ISO 14001", "SGS", "CIQ",
				"GMP", "REACH", "production license",
			},
			IndustrialAddresses: []string{
				"industrial park", "industrial zone", "development zone",
				"economic zone", "chemical industry park",
				"工业园区", "开发区", "经济区", "化工园区",
			},
			OfficeAddresses: []string{
				"office building", "trade center", "business center",
				"commercial building", "写字楼", "商务中心", "贸易中心",
			},
		},
		Rules: RulesConfig{
			KeywordWeight:     2,
			CapacityWeight:    3,
			CertificateWeight: 2,
			AddressWeight:     1,
			StrongThreshold:   5,
			TieMargin:         1,
			ConfidenceBase:    60,
			ConfidenceSlope:   4,
			ConfidenceCap:     95,
			UnclearConfidence: 50,
		},
		LLM: LLMConfig{
			Provider:    "", // disabled by default
			Timeout:     30,
			MaxTokens:   300,
			Temperature: 0.3,
			SampleChars: 500,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Output: OutputConfig{
			JSONPath: "supplier_results.json",
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
			MaxVerify:    5,
		},
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chemvet-cache"
	}
	return filepath.Join(home, ".chemvet", "cache")
}

// Validate checks configuration invariants. A term appearing in both the
// manufacturer and trader vocabularies is a configuration error, not a
// runtime ambiguity.
func (c *Config) Validate() error {
	if err := c.Vocabulary.Validate(); err != nil {
		return err
	}
	if c.Rules.StrongThreshold <= 0 {
		return fmt.Errorf("rules: strong_threshold must be positive")
	}
	if c.Rules.TieMargin < 0 {
		return fmt.Errorf("rules: tie_margin must not be negative")
	}
	if c.Rules.UnclearConfidence < 0 || c.Rules.UnclearConfidence > 100 {
		return fmt.Errorf("rules: unclear_confidence must be within [0, 100]")
	}
	if c.Rules.ConfidenceCap > 100 {
		return fmt.Errorf("rules: confidence_cap must not exceed 100")
	}
	if c.Concurrency.MaxVerify <= 0 {
		return fmt.Errorf("concurrency: max_verify must be positive")
	}
	return nil
}

// Validate checks that the manufacturer and trader vocabularies are disjoint.
func (v Vocabulary) Validate() error {
	seen := make(map[string]bool, len(v.ManufacturerKeywords))
	for _, kw := range v.ManufacturerKeywords {
		seen[kw] = true
	}
	for _, kw := range v.TraderKeywords {
		if seen[kw] {
			return fmt.Errorf("vocabulary: %q appears in both manufacturer and trader keyword sets", kw)
		}
	}
	return nil
}
