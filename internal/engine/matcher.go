package engine

import (
	"sort"

	"dirigent/internal/catalog"
	"dirigent/internal/signal"
)

// match evaluates every unit's triggers against the signals and returns
// the candidate IDs, sorted. A unit is a candidate if ANY of its
// triggers fires. Always-on units are included regardless of signal
// content. Pure function of its inputs.
func match(cat *catalog.Catalog, sig *signal.Signals) []string {
	var candidates []string

	for _, id := range cat.IDs() {
		unit, _ := cat.Get(id)
		if unitMatches(unit, sig) {
			candidates = append(candidates, id)
		}
	}

	sort.Strings(candidates)
	return candidates
}

func unitMatches(unit *catalog.Unit, sig *signal.Signals) bool {
	for _, t := range unit.Triggers {
		if triggerFires(t, sig) {
			return true
		}
	}
	return false
}

func triggerFires(t catalog.Trigger, sig *signal.Signals) bool {
	switch {
	case t.AlwaysOn:
		return true
	case t.Marker != "":
		return sig.HasMarker(t.Marker)
	case t.Keyword != "":
		return sig.HasKeyword(t.Keyword)
	case t.Mode != "":
		return sig.Mode == t.Mode
	}
	return false
}
