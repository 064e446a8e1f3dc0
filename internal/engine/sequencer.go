package engine

import (
	"fmt"
	"sort"

	"dirigent/internal/catalog"
)

// sequence orders the resolved members: tier ascending first, and no
// unit before any of its dependencies; ties break by ID. Kahn's
// algorithm over the depends_on subgraph, picking the ready unit with
// the smallest (tier, ID) at each step, yields a deterministic
// topological order consistent with tier ordering.
//
// Membership is already dependency-closed and the catalog cycle-free,
// so every unit is emitted; a shortfall is an internal invariant
// violation.
func sequence(cat *catalog.Catalog, ids []string) ([]ResolvedUnit, error) {
	inSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		inSet[id] = true
	}

	inDegree := make(map[string]int, len(ids))
	dependents := make(map[string][]string, len(ids))
	for _, id := range ids {
		unit, ok := cat.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: sequencer reached unknown unit %q",
				ErrInternalInvariant, id)
		}
		if _, seen := inDegree[id]; !seen {
			inDegree[id] = 0
		}
		for _, dep := range unit.DependsOn {
			// A dependency on a deprecated unit was satisfied by its
			// replacement during resolution; the ordering edge points
			// at the replacement too.
			target, err := cat.ResolveReplacement(dep)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInternalInvariant, err)
			}
			if inSet[target] && target != id {
				inDegree[id]++
				dependents[target] = append(dependents[target], id)
			}
		}
	}

	var ready []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	less := func(a, b string) bool {
		ua, _ := cat.Get(a)
		ub, _ := cat.Get(b)
		if ua.Tier != ub.Tier {
			return ua.Tier < ub.Tier
		}
		return a < b
	}
	sort.Slice(ready, func(i, j int) bool { return less(ready[i], ready[j]) })

	ordered := make([]ResolvedUnit, 0, len(ids))
	for len(ready) > 0 {
		current := ready[0]
		ready = ready[1:]

		unit, _ := cat.Get(current)
		ordered = append(ordered, ResolvedUnit{
			ID:   unit.ID,
			Kind: unit.Kind,
			Tier: unit.Tier,
		})

		for _, dep := range dependents[current] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
		sort.Slice(ready, func(i, j int) bool { return less(ready[i], ready[j]) })
	}

	if len(ordered) != len(ids) {
		return nil, fmt.Errorf("%w: sequenced %d of %d units (dependency cycle?)",
			ErrInternalInvariant, len(ordered), len(ids))
	}

	return ordered, nil
}
