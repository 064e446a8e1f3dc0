// Package engine implements the resolution pipeline: match catalog
// units against project signals, close the set under dependencies,
// resolve deprecations and overrides, and order the result into a
// bundle for the downstream consumer.
package engine

import (
	"encoding/json"

	"dirigent/internal/catalog"
)

// ResolvedUnit is one entry of the ordered output.
type ResolvedUnit struct {
	// ID of the directive unit.
	ID string `json:"id"`

	// Kind and Tier are copied from the unit so consumers can render
	// the bundle without a catalog in hand.
	Kind catalog.Kind `json:"kind"`
	Tier catalog.Tier `json:"tier"`

	// OverriddenBy names the authoritative unit ruling this unit's
	// concern, when one is present in the bundle. Overridden units stay
	// in the bundle as informational entries.
	OverriddenBy string `json:"overridden_by,omitempty"`
}

// DroppedUnit records a unit that was requested but removed, with the
// reason, for observability and testing.
type DroppedUnit struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Bundle is the final output of one resolution call: deduplicated,
// redirected, dependency-closed, and ordered.
type Bundle struct {
	// RunID correlates the bundle with logs and audit rows. It is
	// freshly generated per call and is the only field that varies
	// between identical runs; everything else, including the serialized
	// form, is a pure function of catalog and signals. Timing lives in
	// logs and the audit trail, not here.
	RunID string `json:"run_id"`

	// Units in final order: tier ascending, dependencies before
	// dependents, ties broken by ID.
	Units []ResolvedUnit `json:"units"`

	// Dropped lists redirected-away units with reasons.
	Dropped []DroppedUnit `json:"dropped"`
}

// UnitIDs returns the ordered unit IDs.
func (b *Bundle) UnitIDs() []string {
	ids := make([]string, len(b.Units))
	for i, u := range b.Units {
		ids[i] = u.ID
	}
	return ids
}

// MarshalIndent renders the bundle as indented JSON.
func (b *Bundle) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}
