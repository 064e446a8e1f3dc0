package engine

import (
	"errors"
	"fmt"
	"sort"

	"dirigent/internal/catalog"
)

// ErrInternalInvariant marks failures that load-time validation should
// make impossible (non-terminating redirection chains, runaway
// expansion). They abort the single resolution call and must never be
// confused with a normal "no match" outcome.
var ErrInternalInvariant = errors.New("internal invariant violation")

// resolution is the conflict resolver's output: final membership plus
// override flags and the dropped record. Ordering is the sequencer's
// job.
type resolution struct {
	ids          []string          // sorted members
	overriddenBy map[string]string // unit ID -> ruling authoritative unit ID
	dropped      []DroppedUnit
}

// resolve applies deprecation redirection and authoritative override to
// the expanded set. Redirection happens in two places: members that are
// themselves deprecated are replaced by their final active target, and
// depends_on edges pointing at deprecated units are treated as edges to
// the replacement — an active unit may legitimately depend on a unit
// that was deprecated after the dependency was declared, and the
// replacement satisfies it. The result is an all-active set closed
// under redirected dependency edges.
func resolve(cat *catalog.Catalog, expanded []string) (*resolution, error) {
	droppedReasons := make(map[string]string)

	members, err := redirectDeprecated(cat, expanded, droppedReasons)
	if err != nil {
		return nil, err
	}

	members, err = expandRedirected(cat, members, droppedReasons)
	if err != nil {
		return nil, err
	}

	dropped := make([]DroppedUnit, 0, len(droppedReasons))
	for id, reason := range droppedReasons {
		dropped = append(dropped, DroppedUnit{ID: id, Reason: reason})
	}
	sort.Slice(dropped, func(i, j int) bool { return dropped[i].ID < dropped[j].ID })

	return &resolution{
		ids:          members,
		overriddenBy: applyAuthoritativeOverride(cat, members),
		dropped:      dropped,
	}, nil
}

// redirectDeprecated replaces every deprecated member with the final
// active target of its replacement chain, recording the drop reason.
func redirectDeprecated(cat *catalog.Catalog, members []string, droppedReasons map[string]string) ([]string, error) {
	out := make(map[string]bool, len(members))

	for _, id := range members {
		target, err := redirectID(cat, id, droppedReasons)
		if err != nil {
			return nil, err
		}
		out[target] = true
	}

	result := make([]string, 0, len(out))
	for id := range out {
		result = append(result, id)
	}
	sort.Strings(result)
	return result, nil
}

// redirectID maps one unit ID to its final active target, recording the
// drop reason when the unit is deprecated. Active units map to
// themselves.
func redirectID(cat *catalog.Catalog, id string, droppedReasons map[string]string) (string, error) {
	unit, ok := cat.Get(id)
	if !ok {
		return "", fmt.Errorf("%w: resolver reached unknown unit %q",
			ErrInternalInvariant, id)
	}
	if !unit.Deprecated() {
		return id, nil
	}

	target, err := cat.ResolveReplacement(id)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInternalInvariant, err)
	}
	if _, seen := droppedReasons[id]; !seen {
		droppedReasons[id] = "superseded-by:" + target
	}
	return target, nil
}

// expandRedirected closes an all-active set under depends_on edges,
// mapping every edge target through its replacement chain first. The
// closure only ever adds active units, so it reaches a fixed point in
// at most |catalog| passes; the bound is checked defensively.
func expandRedirected(cat *catalog.Catalog, ids []string, droppedReasons map[string]string) ([]string, error) {
	included := make(map[string]bool, len(ids))
	frontier := make([]string, 0, len(ids))
	for _, id := range ids {
		if !included[id] {
			included[id] = true
			frontier = append(frontier, id)
		}
	}

	maxPasses := cat.Len()
	for pass := 0; len(frontier) > 0; pass++ {
		if pass > maxPasses {
			return nil, fmt.Errorf("%w: redirected expansion exceeded %d passes",
				ErrInternalInvariant, maxPasses)
		}

		var next []string
		for _, id := range frontier {
			unit, ok := cat.Get(id)
			if !ok {
				return nil, fmt.Errorf("%w: expansion reached unknown unit %q",
					ErrInternalInvariant, id)
			}
			for _, dep := range unit.DependsOn {
				target, err := redirectID(cat, dep, droppedReasons)
				if err != nil {
					return nil, err
				}
				if !included[target] {
					included[target] = true
					next = append(next, target)
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

// applyAuthoritativeOverride flags units whose concern is ruled by an
// authoritative unit also present in the set. Overridden units stay in
// the bundle as informational entries rather than being dropped, so the
// tension is surfaced to the consumer instead of hidden. When several
// authoritative units claim the same concern, the lexicographically
// smallest ID rules, for determinism.
func applyAuthoritativeOverride(cat *catalog.Catalog, members []string) map[string]string {
	rulers := make(map[string]string) // concern -> ruling unit ID
	for _, id := range members {
		unit, _ := cat.Get(id)
		if unit == nil || !unit.Authoritative || unit.Concern == "" {
			continue
		}
		if cur, ok := rulers[unit.Concern]; !ok || id < cur {
			rulers[unit.Concern] = id
		}
	}

	if len(rulers) == 0 {
		return nil
	}

	overridden := make(map[string]string)
	for _, id := range members {
		unit, _ := cat.Get(id)
		if unit == nil || unit.Concern == "" {
			continue
		}
		ruler, ok := rulers[unit.Concern]
		if ok && ruler != id {
			overridden[id] = ruler
		}
	}
	return overridden
}
