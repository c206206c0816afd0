package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chemvet/chemvet/internal/model"
	"github.com/chemvet/chemvet/internal/pipeline"
	"github.com/chemvet/chemvet/internal/search"
)

var (
	cas         string
	purity      string
	volume      string
	packaging   string
	incoterm    string
	outJSON     string
	timeout     time.Duration
	userAgent   string
	noCache     bool
	insecureTLS bool
	maxVerify   int
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <product>",
	Short: "Find and classify suppliers for a chemical product",
	Long: `Verify searches for Chinese suppliers of a chemical product and
classifies each candidate as manufacturer, trader, or unclear:
- Build product/CAS search queries and collect candidate sites
- Drop marketplaces, PDFs, and duplicate domains
- Scrape homepage and about page for each candidate
- Extract bilingual manufacturing and trading signals
- Classify via LLM with a deterministic rule-based fallback

Example:
  chemvet verify "sodium lauryl sulfate"
  chemvet verify "titanium dioxide" --cas 13463-67-7 --json results.json
  chemvet verify "citric acid" --llm --llm-provider openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	// Product flags
	verifyCmd.Flags().StringVar(&cas, "cas", "", "CAS registry number")
	verifyCmd.Flags().StringVar(&purity, "purity", "", "required purity (e.g. 99%)")
	verifyCmd.Flags().StringVar(&volume, "volume", "", "required volume (e.g. 10 MT/month)")
	verifyCmd.Flags().StringVar(&packaging, "packaging", "", "packaging requirement")
	verifyCmd.Flags().StringVar(&incoterm, "incoterm", "", "incoterm (e.g. FOB Shanghai)")

	// Output flags
	verifyCmd.Flags().StringVar(&outJSON, "json", "supplier_results.json", "output JSON path")

	// HTTP flags
	verifyCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall run timeout")
	verifyCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent override")
	verifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable page cache (force fresh fetch)")
	verifyCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	verifyCmd.Flags().IntVar(&maxVerify, "max-verify", 0, "candidates to verify (default from config)")

	// LLM flags
	verifyCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM classification")
	verifyCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	verifyCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runVerify(cmd *cobra.Command, args []string) error {
	product := model.ProductRequest{
		Name:      args[0],
		CAS:       cas,
		Purity:    purity,
		Volume:    volume,
		Packaging: packaging,
		Incoterm:  incoterm,
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Product: %s\n", product.Name)
		if product.CAS != "" {
			fmt.Fprintf(os.Stderr, "CAS: %s\n", product.CAS)
		}
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	searcher, err := search.NewSerpAPIProvider(cfg.Search)
	if err != nil {
		return fmt.Errorf("search provider: %w", err)
	}

	verifier, err := pipeline.NewVerifier(cfg, searcher)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	report, err := verifier.Run(ctx, product)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	renderer := pipeline.NewRenderer()
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", outJSON)
		}
	}
	renderer.RenderSummary(report)

	return nil
}

// buildConfig assembles the runtime configuration: defaults, then the config
// file, then flags and environment keys.
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if viper.ConfigFileUsed() != "" {
		if err := viper.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	cfg.HTTP.InsecureTLS = insecureTLS
	if noCache {
		cfg.Cache.Enabled = false
	}
	if maxVerify > 0 {
		cfg.Concurrency.MaxVerify = maxVerify
	}
	cfg.Output.Verbose = verbose

	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = os.Getenv("SERPAPI_API_KEY")
	}
	if cfg.Search.APIKey == "" {
		return nil, fmt.Errorf("SERPAPI_API_KEY environment variable not set")
	}

	// --llm toggles LLM classification; absent the flag, a provider from
	// the config file stays in effect.
	if cmd.Flags().Changed("llm") {
		if llmEnabled {
			cfg.LLM.Provider = llmProvider
			cfg.LLM.Model = llmModel
		} else {
			cfg.LLM.Provider = ""
		}
	}

	if cfg.LLM.Provider != "" {
		if err := resolveLLMCredentials(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveLLMCredentials fills provider credentials from the environment.
func resolveLLMCredentials(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}
