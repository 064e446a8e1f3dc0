package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationErrors aggregates every problem found in a catalog so an
// operator can fix the whole catalog in one pass. It is returned as a
// single error; callers needing individual entries type-assert.
type ValidationErrors struct {
	Errors []error
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "catalog validation failed"
	}
	msgs := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("catalog validation failed (%d errors):\n  - %s",
		len(v.Errors), strings.Join(msgs, "\n  - "))
}

// Validate runs every cross-unit check over a set of parsed units and
// returns all errors found. An empty result means the set is sound.
//
// Checks:
//  1. per-unit consistency (delegated to Unit.Validate)
//  2. ID uniqueness
//  3. depends_on / replaced_by / enhances references resolve
//  4. no cycles in depends_on
//  5. every deprecated unit's replaced_by chain terminates at an
//     active unit (with cycle detection on the chain itself)
func Validate(units []*Unit) []error {
	var errs []error

	byID := make(map[string]*Unit, len(units))
	for _, u := range units {
		if err := u.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, ok := byID[u.ID]; ok {
			errs = append(errs, fmt.Errorf(
				"duplicate unit ID %q (declared in %s and %s)",
				u.ID, prev.Source, u.Source))
			continue
		}
		byID[u.ID] = u
	}

	// Sorted iteration keeps the error list deterministic.
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		u := byID[id]
		for _, dep := range u.DependsOn {
			if _, ok := byID[dep]; !ok {
				errs = append(errs, fmt.Errorf(
					"unit %q depends on unknown unit %q", u.ID, dep))
			}
		}
		for _, enh := range u.Enhances {
			if _, ok := byID[enh]; !ok {
				errs = append(errs, fmt.Errorf(
					"unit %q enhances unknown unit %q", u.ID, enh))
			}
		}
		if u.ReplacedBy != "" {
			if _, ok := byID[u.ReplacedBy]; !ok {
				errs = append(errs, fmt.Errorf(
					"unit %q is replaced by unknown unit %q", u.ID, u.ReplacedBy))
			}
		}
	}

	if cycle := detectDependencyCycle(ids, byID); cycle != nil {
		errs = append(errs, fmt.Errorf(
			"dependency cycle: %s", strings.Join(cycle, " -> ")))
	}

	errs = append(errs, validateReplacementChains(ids, byID)...)

	return errs
}

// detectDependencyCycle finds a depends_on cycle via DFS with color
// marking. Returns the cycle path if found, or nil.
func detectDependencyCycle(ids []string, byID map[string]*Unit) []string {
	const (
		white = 0 // unvisited
		gray  = 1 // in progress
		black = 2 // done
	)

	color := make(map[string]int, len(ids))
	parent := make(map[string]string, len(ids))

	var cyclePath []string

	var dfs func(node string) bool
	dfs = func(node string) bool {
		color[node] = gray

		for _, dep := range byID[node].DependsOn {
			if _, ok := byID[dep]; !ok {
				continue // broken reference, reported separately
			}

			if color[dep] == gray {
				cyclePath = []string{dep}
				for cur := node; cur != dep; cur = parent[cur] {
					cyclePath = append([]string{cur}, cyclePath...)
				}
				cyclePath = append([]string{dep}, cyclePath...)
				return true
			}

			if color[dep] == white {
				parent[dep] = node
				if dfs(dep) {
					return true
				}
			}
		}

		color[node] = black
		return false
	}

	for _, id := range ids {
		if color[id] == white {
			if dfs(id) {
				return cyclePath
			}
		}
	}

	return nil
}

// validateReplacementChains checks that every deprecated unit redirects,
// transitively, to an active unit. A chain that revisits a unit is a
// cycle; a chain leaving the catalog is reported as a broken reference
// elsewhere and skipped here.
func validateReplacementChains(ids []string, byID map[string]*Unit) []error {
	var errs []error

	for _, id := range ids {
		u := byID[id]
		if !u.Deprecated() {
			continue
		}

		seen := map[string]bool{u.ID: true}
		cur := u
		for cur.Deprecated() {
			next, ok := byID[cur.ReplacedBy]
			if !ok {
				break // broken reference, reported separately
			}
			if seen[next.ID] {
				errs = append(errs, fmt.Errorf(
					"replacement chain for unit %q cycles at %q", u.ID, next.ID))
				break
			}
			seen[next.ID] = true
			cur = next
		}
	}

	return errs
}

// ResolveReplacement follows a unit's replaced_by chain to its final
// active target. The catalog is validated at load, so the chain is
// guaranteed to terminate; maxSteps bounds it defensively.
func (c *Catalog) ResolveReplacement(id string) (string, error) {
	maxSteps := c.Len()
	cur, ok := c.units[id]
	if !ok {
		return "", fmt.Errorf("unknown unit %q", id)
	}

	for steps := 0; cur.Deprecated(); steps++ {
		if steps >= maxSteps {
			return "", fmt.Errorf("replacement chain for %q exceeded %d steps", id, maxSteps)
		}
		next, ok := c.units[cur.ReplacedBy]
		if !ok {
			return "", fmt.Errorf("unit %q replaced by unknown unit %q", cur.ID, cur.ReplacedBy)
		}
		cur = next
	}

	return cur.ID, nil
}
