package classify

import (
	"fmt"
	"strings"

	"github.com/chemvet/chemvet/internal/model"
)

// RuleBased is the deterministic classifier used as fallback and baseline.
// It is a pure function of Evidence: identical input always yields an
// identical outcome, and it never fails — unclear is the safe default.
type RuleBased struct {
	rules      model.RulesConfig
	industrial map[string]bool
	office     map[string]bool
}

// NewRuleBased creates a rule-based classifier with explicit weights and the
// address vocabulary used to partition indicators into industrial vs office.
func NewRuleBased(rules model.RulesConfig, vocab model.Vocabulary) *RuleBased {
	c := &RuleBased{
		rules:      rules,
		industrial: make(map[string]bool, len(vocab.IndustrialAddresses)),
		office:     make(map[string]bool, len(vocab.OfficeAddresses)),
	}
	for _, a := range vocab.IndustrialAddresses {
		c.industrial[a] = true
	}
	for _, a := range vocab.OfficeAddresses {
		c.office[a] = true
	}
	return c
}

// Classify scores the evidence and returns a verdict.
//
// manufacturer score: KeywordWeight per manufacturer keyword,
// CapacityWeight when production capacity is present, CertificateWeight per
// certificate, AddressWeight per industrial-zone indicator.
// trader score: KeywordWeight per trader keyword, AddressWeight per
// office-type indicator.
//
// The winner must strictly exceed the loser, clear StrongThreshold, and win
// by more than TieMargin; anything else is unclear at the fixed confidence.
func (c *RuleBased) Classify(ev model.Evidence) Outcome {
	industrialHits, officeHits := c.partitionAddresses(ev.AddressIndicators)

	mfrScore := c.rules.KeywordWeight * len(ev.ManufacturerKeywords)
	if ev.ProductionCapacity != "" {
		mfrScore += c.rules.CapacityWeight
	}
	mfrScore += c.rules.CertificateWeight * len(ev.Certificates)
	mfrScore += c.rules.AddressWeight * len(industrialHits)

	traderScore := c.rules.KeywordWeight*len(ev.TraderKeywords) +
		c.rules.AddressWeight*len(officeHits)

	switch {
	case mfrScore > traderScore && mfrScore >= c.rules.StrongThreshold && mfrScore-traderScore > c.rules.TieMargin:
		return Outcome{
			Classification: model.ClassManufacturer,
			Confidence:     c.confidence(mfrScore - traderScore),
			Reasoning:      c.manufacturerReasoning(ev, industrialHits, mfrScore, traderScore),
		}
	case traderScore > mfrScore && traderScore >= c.rules.StrongThreshold && traderScore-mfrScore > c.rules.TieMargin:
		return Outcome{
			Classification: model.ClassTrader,
			Confidence:     c.confidence(traderScore - mfrScore),
			Reasoning:      c.traderReasoning(ev, officeHits, traderScore, mfrScore),
		}
	default:
		return Outcome{
			Classification: model.ClassUnclear,
			Confidence:     clampConfidence(c.rules.UnclearConfidence),
			Reasoning: fmt.Sprintf(
				"Signals do not clearly favor manufacturing or trading (manufacturer score %d, trader score %d).",
				mfrScore, traderScore),
		}
	}
}

// confidence scales monotonically with the score margin and is capped.
func (c *RuleBased) confidence(margin int) int {
	conf := c.rules.ConfidenceBase + c.rules.ConfidenceSlope*margin
	if conf > c.rules.ConfidenceCap {
		conf = c.rules.ConfidenceCap
	}
	return clampConfidence(conf)
}

func (c *RuleBased) partitionAddresses(indicators []string) (industrial, office []string) {
	for _, a := range indicators {
		switch {
		case c.industrial[a]:
			industrial = append(industrial, a)
		case c.office[a]:
			office = append(office, a)
		}
	}
	return industrial, office
}

// manufacturerReasoning lists contributing signals in descending weight
// order: capacity, keywords, certificates, then address indicators.
func (c *RuleBased) manufacturerReasoning(ev model.Evidence, industrial []string, score, other int) string {
	var parts []string
	if ev.ProductionCapacity != "" {
		parts = append(parts, "stated production capacity "+ev.ProductionCapacity)
	}
	if len(ev.ManufacturerKeywords) > 0 {
		parts = append(parts, "manufacturing terms ("+strings.Join(ev.ManufacturerKeywords, ", ")+")")
	}
	if len(ev.Certificates) > 0 {
		parts = append(parts, "certifications ("+strings.Join(ev.Certificates, ", ")+")")
	}
	if len(industrial) > 0 {
		parts = append(parts, "industrial-zone address ("+strings.Join(industrial, ", ")+")")
	}
	return fmt.Sprintf("Rule-based score %d vs %d: %s.", score, other, strings.Join(parts, "; "))
}

func (c *RuleBased) traderReasoning(ev model.Evidence, office []string, score, other int) string {
	var parts []string
	if len(ev.TraderKeywords) > 0 {
		parts = append(parts, "trading terms ("+strings.Join(ev.TraderKeywords, ", ")+")")
	}
	if len(office) > 0 {
		parts = append(parts, "office-type address ("+strings.Join(office, ", ")+")")
	}
	return fmt.Sprintf("Rule-based score %d vs %d: %s.", score, other, strings.Join(parts, "; "))
}
