package model

// Evidence holds the structured signals extracted from one company's web
// presence. The keyword and indicator sets are deduplicated; absence of a
// signal is an empty set, never nil. ProductionCapacity and the ContactInfo
// fields are optional scalars where the first match in document order wins.
type Evidence struct {
	ManufacturerKeywords []string    `json:"manufacturer_keywords"` // terms indicating own production
	TraderKeywords       []string    `json:"trader_keywords"`       // terms indicating trading/sourcing
	Certificates         []string    `json:"certificates"`          // recognized certification names
	ProductionCapacity   string      `json:"production_capacity,omitempty"` // e.g. "500,000 MT/year"
	AddressIndicators    []string    `json:"address_indicators"`    // industrial-zone and office phrases
	ContactInfo          ContactInfo `json:"contact_info"`
}

// ContactInfo holds contact details found via pattern matching.
type ContactInfo struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// EmptyEvidence returns an Evidence with all sets allocated and empty.
// This is the result of extraction over blank input.
func EmptyEvidence() Evidence {
	return Evidence{
		ManufacturerKeywords: []string{},
		TraderKeywords:       []string{},
		Certificates:         []string{},
		AddressIndicators:    []string{},
	}
}
