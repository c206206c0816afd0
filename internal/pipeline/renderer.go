package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/chemvet/chemvet/internal/model"
)

// Renderer writes the verification report to disk and the terminal.
type Renderer struct{}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON writes the full report as indented JSON.
func (r *Renderer) RenderJSON(report *Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderSummary prints a human-readable summary to stdout.
func (r *Renderer) RenderSummary(report *Report) {
	line := strings.Repeat("=", 64)

	fmt.Println(line)
	fmt.Printf("Supplier verification: %s", report.Product.Name)
	if report.Product.CAS != "" {
		fmt.Printf(" (CAS %s)", report.Product.CAS)
	}
	fmt.Println()
	fmt.Println(line)

	if len(report.Results) == 0 {
		fmt.Println("No suppliers could be verified.")
		return
	}

	for i, res := range report.Results {
		fmt.Printf("%d. %s\n", i+1, res.CompanyName)
		fmt.Printf("   %s\n", res.Website)
		fmt.Printf("   %s (%d%% confidence)\n", strings.ToUpper(string(res.Classification)), res.Confidence)
		if res.Reasoning != "" {
			fmt.Printf("   %s\n", res.Reasoning)
		}
		if res.Evidence.ProductionCapacity != "" {
			fmt.Printf("   Capacity: %s\n", res.Evidence.ProductionCapacity)
		}
		if len(res.Evidence.Certificates) > 0 {
			fmt.Printf("   Certificates: %s\n", strings.Join(res.Evidence.Certificates, ", "))
		}
		fmt.Println()
	}

	manufacturers := 0
	for _, res := range report.Results {
		if res.Classification == model.ClassManufacturer {
			manufacturers++
		}
	}
	fmt.Printf("%d verified, %d classified as manufacturer\n", report.Verified, manufacturers)
}
