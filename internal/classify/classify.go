// Package classify turns an Evidence record into a classification verdict.
// Two classifiers exist: an LLM-backed one and a deterministic rule-based
// fallback. Exactly one of them ever contributes a verdict — never a blend.
package classify

import (
	"errors"

	"github.com/chemvet/chemvet/internal/model"
)

// ErrClassificationUnavailable signals that the LLM classifier could not
// produce a usable verdict (provider failure, malformed response, or an
// out-of-enum classification value). Callers degrade to the rule-based
// classifier; the condition is never propagated further.
var ErrClassificationUnavailable = errors.New("classification unavailable")

// Outcome is the (classification, confidence, reasoning) triple produced by
// either classifier.
type Outcome struct {
	Classification model.Classification
	Confidence     int // always within [0, 100]
	Reasoning      string
}

// clampConfidence forces a confidence value into [0, 100].
func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
