package search

import "fmt"

// BuildQueries assembles the supplier-discovery query set for a product.
// CAS-qualified queries lead when a CAS number is known since they produce
// the most specific hits.
func BuildQueries(product, cas string) []string {
	queries := []string{
		fmt.Sprintf("%s manufacturer China", product),
		fmt.Sprintf("%s factory China supplier", product),
	}

	if cas != "" {
		queries = append([]string{
			fmt.Sprintf("%s CAS %s manufacturer China", product, cas),
		}, queries...)
		queries = append(queries, fmt.Sprintf("CAS %s producer China", cas))
	}

	return queries
}
