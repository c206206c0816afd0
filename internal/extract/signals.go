// Package extract scans normalized company page text for bilingual keyword
// signals and emits a structured Evidence record.
package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/chemvet/chemvet/internal/model"
)

// termKind identifies which Evidence set a vocabulary term feeds.
type termKind int

const (
	kindManufacturer termKind = iota
	kindTrader
	kindAddress
)

var (
	// Number with optional thousands separators, a mass unit, and a
	// time-period qualifier, e.g. "500,000 MT/year" or "30,000吨/年".
	capacityPattern = regexp.MustCompile(`(?i)(\d+[,\d]*)\s*(MT|吨|tons?|tonnes?)\s*(?:per|/|)\s*(year|annually|年)`)

	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// Permissive: a country code followed by an unseparated national
	// number, or grouped digits with separators. Bare digit runs without
	// either shape are not treated as phone numbers.
	phonePattern = regexp.MustCompile(`\+\d{1,3}[\s\-]?\d{7,12}|(?:\+\d{1,3}[\s\-]?)?\(?\d{2,4}\)?[\s\-]\d{3,4}[\s\-]?\d{4}`)
)

// SignalExtractor matches a fixed bilingual vocabulary against company text.
// All terms share one Aho-Corasick automaton so a page is scanned in a
// single pass regardless of vocabulary size.
type SignalExtractor struct {
	matcher *ahocorasick.Matcher
	terms   []string   // automaton order, lowercased
	display []string   // original vocabulary spelling per term
	kinds   []termKind // evidence set per term

	certNames    []string
	certPatterns []*regexp.Regexp
}

// NewSignalExtractor builds the matcher from the given vocabulary. A term
// present in both the manufacturer and trader sets is a configuration error.
func NewSignalExtractor(vocab model.Vocabulary) (*SignalExtractor, error) {
	if err := vocab.Validate(); err != nil {
		return nil, err
	}

	e := &SignalExtractor{}
	add := func(words []string, kind termKind) {
		for _, w := range words {
			if w == "" {
				continue
			}
			e.terms = append(e.terms, strings.ToLower(w))
			e.display = append(e.display, w)
			e.kinds = append(e.kinds, kind)
		}
	}
	add(vocab.ManufacturerKeywords, kindManufacturer)
	add(vocab.TraderKeywords, kindTrader)
	add(vocab.IndustrialAddresses, kindAddress)
	add(vocab.OfficeAddresses, kindAddress)

	if len(e.terms) > 0 {
		e.matcher = ahocorasick.NewStringMatcher(e.terms)
	}

	for _, name := range vocab.Certificates {
		re, err := compileCertPattern(name)
		if err != nil {
			return nil, fmt.Errorf("certificate pattern %q: %w", name, err)
		}
		e.certNames = append(e.certNames, name)
		e.certPatterns = append(e.certPatterns, re)
	}

	return e, nil
}

// compileCertPattern turns a certificate name into a case-insensitive
// substring pattern tolerating absent or repeated internal whitespace, so
// "ISO 9001" also matches "ISO9001" and "ISO  9001".
func compileCertPattern(name string) (*regexp.Regexp, error) {
	parts := strings.Fields(name)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.Compile(`(?i)` + strings.Join(parts, `\s*`))
}

// Extract scans text and returns the Evidence record. It is a pure function
// of its input: blank input yields empty sets and absent optionals, and no
// input ever causes a failure.
func (e *SignalExtractor) Extract(text string) model.Evidence {
	ev := model.EmptyEvidence()
	if strings.TrimSpace(text) == "" {
		return ev
	}

	lower := strings.ToLower(text)

	if e.matcher != nil {
		// One extractor is shared across batch workers; Match mutates
		// matcher state and is not safe for concurrent use.
		hits := e.matcher.MatchThreadSafe([]byte(lower))
		sort.Ints(hits) // vocabulary order, deterministic output
		seen := make(map[int]bool, len(hits))
		for _, idx := range hits {
			if idx < 0 || idx >= len(e.terms) || seen[idx] {
				continue
			}
			seen[idx] = true
			term := e.display[idx]
			switch e.kinds[idx] {
			case kindManufacturer:
				ev.ManufacturerKeywords = append(ev.ManufacturerKeywords, term)
			case kindTrader:
				ev.TraderKeywords = append(ev.TraderKeywords, term)
			case kindAddress:
				ev.AddressIndicators = append(ev.AddressIndicators, term)
			}
		}
	}

	for i, re := range e.certPatterns {
		if re.MatchString(text) {
			ev.Certificates = append(ev.Certificates, e.certNames[i])
		}
	}

	// First occurrence in document order wins; later, possibly more
	// specific capacity mentions are ignored.
	ev.ProductionCapacity = capacityPattern.FindString(text)

	ev.ContactInfo = model.ContactInfo{
		Email: emailPattern.FindString(text),
		Phone: strings.TrimSpace(phonePattern.FindString(text)),
	}

	return ev
}
