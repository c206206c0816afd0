package model

import "fmt"

// ProductRequest describes the target chemical for a verification run.
// It is created once per run and read-only thereafter.
type ProductRequest struct {
	Name        string `json:"name" yaml:"name"`
	CAS         string `json:"cas,omitempty" yaml:"cas"`                  // CAS registry number, e.g. "7664-93-9"
	Purity      string `json:"purity,omitempty" yaml:"purity"`            // e.g. "98%"
	Volume      string `json:"volume,omitempty" yaml:"volume"`            // e.g. "20,000 MT per month"
	Packaging   string `json:"packaging,omitempty" yaml:"packaging"`      // e.g. "Bulk / ISO tank"
	Incoterm    string `json:"incoterm,omitempty" yaml:"incoterm"`        // delivery term, e.g. "CIF Durban"
	HSCode      string `json:"hs_code,omitempty" yaml:"hs_code"`          // customs tariff code
	HazardClass string `json:"hazard_class,omitempty" yaml:"hazard_class"` // e.g. "ADR Class 8 (Acids)"
}

// Validate checks the required fields. A missing product name is a
// configuration error and fatal at startup.
func (p ProductRequest) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("product request: name is required")
	}
	return nil
}
