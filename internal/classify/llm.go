package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/chemvet/chemvet/internal/llm"
	"github.com/chemvet/chemvet/internal/model"
)

const systemInstruction = "You are an expert in the Chinese chemical industry. Return only valid JSON."

// LLM classifies a company through an external model provider. Any provider
// failure or unusable response degrades to ErrClassificationUnavailable so
// callers can fall back to the rule-based classifier; this classifier never
// guesses.
type LLM struct {
	provider llm.Provider
	config   model.LLMConfig
}

// NewLLM creates an LLM classifier backed by the given provider.
func NewLLM(provider llm.Provider, config model.LLMConfig) *LLM {
	return &LLM{provider: provider, config: config}
}

// Request carries the company context formatted into the prompt.
type Request struct {
	CompanyName   string
	Website       string
	Evidence      model.Evidence
	Product       model.ProductRequest
	ContentSample string
}

// verdict is the structured response the model is instructed to return.
type verdict struct {
	Classification string  `json:"classification"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
}

// Classify makes one call to the provider and parses its response. No
// retries happen at this layer.
func (c *LLM) Classify(ctx context.Context, req Request) (Outcome, error) {
	if c.provider == nil {
		return Outcome{}, fmt.Errorf("%w: no provider configured", ErrClassificationUnavailable)
	}

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		System: systemInstruction,
		Prompt: BuildPrompt(req, c.config.SampleChars),
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrClassificationUnavailable, err)
	}

	outcome, err := parseVerdict(resp.Text)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrClassificationUnavailable, err)
	}
	return outcome, nil
}

// BuildPrompt formats the evidence and product context into the
// classification prompt. Keyword lists are truncated to the five most
// significant matches to keep the prompt compact.
func BuildPrompt(req Request, sampleChars int) string {
	sample := req.ContentSample
	if sampleChars > 0 && len(sample) > sampleChars {
		sample = sample[:sampleChars]
	}

	product := req.Product.Name
	if req.Product.CAS != "" {
		product += " (CAS " + req.Product.CAS + ")"
	}

	return fmt.Sprintf(`Analyze this Chinese chemical company and classify it.

Company: %s
Website: %s
Product of interest: %s

Extracted Signals:
- Manufacturer keywords found: %s
- Trading keywords found: %s
- Certificates: %s
- Production capacity: %s
- Address indicators: %s

Content sample:
%s

Task: Classify this company as:
- "manufacturer" if they own production facilities/factory
- "trader" if they are a trading/sourcing company without own production
- "unclear" if insufficient information

Return ONLY valid JSON with this structure:
{
  "classification": "manufacturer" | "trader" | "unclear",
  "confidence": <0-100>,
  "reasoning": "<1-2 sentences explaining the decision>"
}`,
		req.CompanyName,
		req.Website,
		product,
		joinOrNone(head(req.Evidence.ManufacturerKeywords, 5)),
		joinOrNone(head(req.Evidence.TraderKeywords, 5)),
		joinOrNone(req.Evidence.Certificates),
		orDefault(req.Evidence.ProductionCapacity, "Not mentioned"),
		joinOrNone(req.Evidence.AddressIndicators),
		sample,
	)
}

// parseVerdict validates the model response into an Outcome. Decoding is
// strict: a jsonrepair pass is attempted on malformed JSON, but a response
// that still does not parse, or carries a classification outside the closed
// enum, is rejected rather than partially populated.
func parseVerdict(text string) (Outcome, error) {
	content := stripResponseMarkers(text)

	var v verdict
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(content)
		if repairErr != nil {
			return Outcome{}, fmt.Errorf("parse response: %v (repair: %v)", err, repairErr)
		}
		if err := json.Unmarshal([]byte(repaired), &v); err != nil {
			return Outcome{}, fmt.Errorf("parse repaired response: %v", err)
		}
	}

	classification := model.Classification(strings.ToLower(strings.TrimSpace(v.Classification)))
	if !classification.Valid() {
		return Outcome{}, fmt.Errorf("invalid classification value %q", v.Classification)
	}

	return Outcome{
		Classification: classification,
		Confidence:     clampConfidence(int(v.Confidence)),
		Reasoning:      strings.TrimSpace(v.Reasoning),
	}, nil
}

// stripResponseMarkers removes markdown code fences some providers wrap
// around JSON output.
func stripResponseMarkers(text string) string {
	content := strings.TrimSpace(text)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
