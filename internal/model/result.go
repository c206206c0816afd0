package model

// Classification is the closed verdict enum. No other values are permitted
// anywhere in the pipeline.
type Classification string

const (
	ClassManufacturer Classification = "manufacturer" // operates its own production facility
	ClassTrader       Classification = "trader"       // sources/resells without own production
	ClassUnclear      Classification = "unclear"      // insufficient or conflicting signals
)

// Valid reports whether c is one of the three allowed enum members.
func (c Classification) Valid() bool {
	switch c {
	case ClassManufacturer, ClassTrader, ClassUnclear:
		return true
	}
	return false
}

// ClassificationResult is the terminal artifact of the pipeline for one
// company. It is derived once from Evidence and never mutated afterward.
type ClassificationResult struct {
	CompanyName    string         `json:"company_name"`
	Website        string         `json:"website"`
	Classification Classification `json:"classification"`
	Confidence     int            `json:"confidence"` // 0-100, not a calibrated probability
	Reasoning      string         `json:"reasoning"`
	Evidence       Evidence       `json:"evidence"`
}
