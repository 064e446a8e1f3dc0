package catalog

import (
	"sort"
	"time"
)

// Catalog is the validated, immutable inventory of directive units.
// A Catalog is safe for concurrent readers; it is never mutated after
// construction. Reloading produces a new Catalog instance.
type Catalog struct {
	units map[string]*Unit
	ids   []string // sorted, for deterministic iteration
	built time.Time
}

// New builds a Catalog from a slice of units. It does not validate;
// callers go through Load, which validates before constructing.
func New(units []*Unit) *Catalog {
	built := time.Now()
	c := &Catalog{
		units: make(map[string]*Unit, len(units)),
		ids:   make([]string, 0, len(units)),
		built: built,
	}
	for _, u := range units {
		cu := u.Clone()
		cu.LoadedAt = built
		c.units[cu.ID] = cu
		c.ids = append(c.ids, cu.ID)
	}
	sort.Strings(c.ids)
	return c
}

// Get retrieves a unit by ID.
func (c *Catalog) Get(id string) (*Unit, bool) {
	u, ok := c.units[id]
	return u, ok
}

// IDs returns all unit IDs in sorted order. Callers must not modify
// the returned slice.
func (c *Catalog) IDs() []string {
	return c.ids
}

// Len returns the number of units in the catalog.
func (c *Catalog) Len() int {
	return len(c.units)
}

// BuiltAt reports when this catalog instance was constructed.
func (c *Catalog) BuiltAt() time.Time {
	return c.built
}

// Units returns all units in sorted ID order.
func (c *Catalog) Units() []*Unit {
	result := make([]*Unit, 0, len(c.ids))
	for _, id := range c.ids {
		result = append(result, c.units[id])
	}
	return result
}
