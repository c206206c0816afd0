package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/chemvet/chemvet/internal/model"
	"github.com/chemvet/chemvet/internal/worker"
)

// Runner executes one verification run for a product request.
type Runner interface {
	Run(ctx context.Context, product model.ProductRequest) (*Report, error)
}

// VerifyJob verifies suppliers for one product request
type VerifyJob struct {
	Product model.ProductRequest
	Runner  Runner
}

// Execute runs the verification
func (j *VerifyJob) Execute(ctx context.Context) worker.Result {
	report, err := j.Runner.Run(ctx, j.Product)
	return &VerifyResult{
		Product: j.Product,
		Report:  report,
		Error:   err,
	}
}

// VerifyResult is the outcome of a verification job
type VerifyResult struct {
	Product model.ProductRequest
	Report  *Report
	Error   error
}

// GetError returns the error from the verification
func (r *VerifyResult) GetError() error {
	return r.Error
}

// BatchProcessor verifies multiple product requests concurrently. Each run
// remains internally sequential; only runs are parallelized.
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessProducts verifies multiple products on the worker pool
func (b *BatchProcessor) ProcessProducts(ctx context.Context, products []model.ProductRequest) []*VerifyResult {
	if len(products) == 0 {
		return []*VerifyResult{}
	}

	pool := worker.NewPoolContext(ctx, b.concurrency)
	pool.Start()

	for _, product := range products {
		pool.Submit(&VerifyJob{
			Product: product,
			Runner:  b.runner,
		})
	}

	results := pool.Wait()

	verifyResults := make([]*VerifyResult, len(results))
	for i, result := range results {
		verifyResults[i] = result.(*VerifyResult)
	}

	return verifyResults
}

// ProcessFile reads product requests from a file and verifies them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*VerifyResult, error) {
	products, err := ReadProductsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}

	return b.ProcessProducts(ctx, products), nil
}

// ReadProductsFromFile reads product requests from a file, one per line as
// "name" or "name,CAS". Empty lines and # comments are skipped; duplicate
// lines are dropped.
func ReadProductsFromFile(filePath string) ([]model.ProductRequest, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var products []model.ProductRequest
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if seen[line] {
			continue
		}
		seen[line] = true

		product := model.ProductRequest{Name: line}
		if name, cas, found := strings.Cut(line, ","); found {
			product.Name = strings.TrimSpace(name)
			product.CAS = strings.TrimSpace(cas)
		}
		if err := product.Validate(); err != nil {
			return nil, fmt.Errorf("line %q: %w", line, err)
		}
		products = append(products, product)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return products, nil
}
