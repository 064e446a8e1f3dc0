package engine

import (
	"fmt"
	"sort"

	"dirigent/internal/catalog"
)

// expand closes the candidate set under depends_on edges. The catalog
// is validated cycle-free at load, so the closure terminates within
// |catalog| passes; the bound is still checked defensively and treated
// as an internal invariant violation if exceeded.
//
// enhances edges are advisory only and never expanded.
func expand(cat *catalog.Catalog, candidates []string) ([]string, error) {
	included := make(map[string]bool, len(candidates))
	frontier := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if !included[id] {
			included[id] = true
			frontier = append(frontier, id)
		}
	}

	maxPasses := cat.Len()
	for pass := 0; len(frontier) > 0; pass++ {
		if pass > maxPasses {
			return nil, fmt.Errorf("%w: dependency expansion exceeded %d passes",
				ErrInternalInvariant, maxPasses)
		}

		var next []string
		for _, id := range frontier {
			unit, ok := cat.Get(id)
			if !ok {
				// Unreachable after load-time reference validation.
				return nil, fmt.Errorf("%w: expansion reached unknown unit %q",
					ErrInternalInvariant, id)
			}
			for _, dep := range unit.DependsOn {
				if !included[dep] {
					included[dep] = true
					next = append(next, dep)
				}
			}
		}
		frontier = next
	}

	result := make([]string, 0, len(included))
	for id := range included {
		result = append(result, id)
	}
	sort.Strings(result)
	return result, nil
}
