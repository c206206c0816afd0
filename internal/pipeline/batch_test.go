package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/chemvet/chemvet/internal/model"
)

// fakeRunner implements Runner
type fakeRunner struct {
	shouldError bool
}

func (m *fakeRunner) Run(ctx context.Context, product model.ProductRequest) (*Report, error) {
	time.Sleep(10 * time.Millisecond) // Simulate work
	if m.shouldError {
		return nil, errors.New("run error")
	}
	return &Report{
		Product:  product,
		Verified: 1,
		Results: []model.ClassificationResult{
			{CompanyName: "Test Chem Co", Classification: model.ClassManufacturer, Confidence: 80},
		},
	}, nil
}

func writeTempFile(t *testing.T, pattern, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", pattern)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })
	if _, err := tmpfile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpfile.Name()
}

func TestBatchProcessor_ProcessProducts(t *testing.T) {
	processor := NewBatchProcessor(&fakeRunner{}, 2)

	products := []model.ProductRequest{
		{Name: "sodium lauryl sulfate"},
		{Name: "citric acid"},
		{Name: "titanium dioxide", CAS: "13463-67-7"},
	}

	results := processor.ProcessProducts(context.Background(), products)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Product.Name, res.Error)
			continue
		}
		if res.Report == nil {
			t.Errorf("expected report for %s", res.Product.Name)
		}
	}
}

func TestBatchProcessor_ProcessProducts_Error(t *testing.T) {
	processor := NewBatchProcessor(&fakeRunner{shouldError: true}, 2)

	results := processor.ProcessProducts(context.Background(), []model.ProductRequest{{Name: "citric acid"}})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Report != nil {
		t.Error("expected nil report on error")
	}
}

func TestBatchProcessor_ProcessProducts_Empty(t *testing.T) {
	processor := NewBatchProcessor(&fakeRunner{}, 2)

	results := processor.ProcessProducts(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadProductsFromFile(t *testing.T) {
	path := writeTempFile(t, "products", `sodium lauryl sulfate
# comment
titanium dioxide, 13463-67-7

citric acid   `)

	products, err := ReadProductsFromFile(path)
	if err != nil {
		t.Fatalf("ReadProductsFromFile failed: %v", err)
	}

	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}

	if products[0].Name != "sodium lauryl sulfate" || products[0].CAS != "" {
		t.Errorf("unexpected first product: %+v", products[0])
	}
	if products[1].Name != "titanium dioxide" || products[1].CAS != "13463-67-7" {
		t.Errorf("expected name and CAS split on comma, got %+v", products[1])
	}
	if products[2].Name != "citric acid" {
		t.Errorf("expected trimmed name, got %q", products[2].Name)
	}
}

func TestReadProductsFromFile_Deduplication(t *testing.T) {
	path := writeTempFile(t, "products_dedup", "citric acid\ncitric acid\n")

	products, err := ReadProductsFromFile(path)
	if err != nil {
		t.Fatalf("ReadProductsFromFile failed: %v", err)
	}
	if len(products) != 1 {
		t.Errorf("expected 1 product after deduplication, got %d", len(products))
	}
}

func TestReadProductsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadProductsFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestReadProductsFromFile_InvalidLine(t *testing.T) {
	path := writeTempFile(t, "products_bad", ", 7647-14-5\n")

	if _, err := ReadProductsFromFile(path); err == nil {
		t.Error("expected error for product without a name, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeTempFile(t, "batch_products", "citric acid\n# comment\n\nsodium chloride, 7647-14-5\n")

	processor := NewBatchProcessor(&fakeRunner{}, 2)

	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&fakeRunner{}, 2)

	if _, err := processor.ProcessFile(context.Background(), "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestVerifyResult_GetError(t *testing.T) {
	r1 := &VerifyResult{Product: model.ProductRequest{Name: "citric acid"}}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("verification failed")
	r2 := &VerifyResult{Product: model.ProductRequest{Name: "citric acid"}, Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}
