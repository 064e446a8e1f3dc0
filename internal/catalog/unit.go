// Package catalog defines the directive unit inventory for dirigent.
// A catalog is the full, validated set of directive units (agent personas,
// skills, rules, workflow steps) available to the resolution engine. It is
// loaded once from a directory of YAML definitions, validated as a whole,
// and treated as immutable for the remainder of the process.
package catalog

import (
	"fmt"
	"time"
)

// Kind classifies what a directive unit configures.
type Kind string

const (
	// KindAgent is a persona definition for the assistant.
	KindAgent Kind = "agent"

	// KindSkill is a reusable capability description.
	KindSkill Kind = "skill"

	// KindRule is a behavioral constraint.
	KindRule Kind = "rule"

	// KindWorkflowStep is one step of a prescribed workflow.
	KindWorkflowStep Kind = "workflow-step"
)

// AllKinds returns every defined unit kind.
func AllKinds() []Kind {
	return []Kind{KindAgent, KindSkill, KindRule, KindWorkflowStep}
}

// Tier is the priority tier of a unit. Lower tiers sequence earlier.
type Tier int

const (
	// TierMandatory units form the non-negotiable baseline.
	TierMandatory Tier = 0

	// TierTask units are activated by the task request itself.
	TierTask Tier = 1

	// TierTech units are activated by the project's tech stack.
	TierTech Tier = 2

	// TierAdvisory units are soft guidance.
	TierAdvisory Tier = 3
)

// Status tracks the lifecycle of a unit.
type Status string

const (
	// StatusActive units may appear in resolved bundles.
	StatusActive Status = "active"

	// StatusDeprecated units are redirected to their replacement at
	// resolution time and never appear in output.
	StatusDeprecated Status = "deprecated"
)

// Trigger is a single activation predicate over collected project signals.
// Exactly one field should be set; a unit activates if ANY of its triggers
// fires (triggers form a disjunction).
type Trigger struct {
	// Marker names a boolean project fact, e.g. "has-go-mod".
	Marker string `json:"marker,omitempty" yaml:"marker,omitempty"`

	// Keyword matches a normalized token from the task request.
	Keyword string `json:"keyword,omitempty" yaml:"keyword,omitempty"`

	// Mode matches the caller-supplied explicit mode.
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`

	// AlwaysOn includes the unit unconditionally.
	AlwaysOn bool `json:"always_on,omitempty" yaml:"always_on,omitempty"`
}

// Validate checks that the trigger has exactly one predicate set.
func (t Trigger) Validate() error {
	set := 0
	if t.Marker != "" {
		set++
	}
	if t.Keyword != "" {
		set++
	}
	if t.Mode != "" {
		set++
	}
	if t.AlwaysOn {
		set++
	}
	if set == 0 {
		return fmt.Errorf("trigger has no predicate")
	}
	if set > 1 {
		return fmt.Errorf("trigger has %d predicates, want exactly 1", set)
	}
	return nil
}

// Unit is a single directive unit. Units are the atomic selectable items
// the engine assembles into a resolved bundle.
type Unit struct {
	// ID is the unique, version-stable key for this unit.
	ID string `json:"id" yaml:"id"`

	// Kind classifies the unit (agent, skill, rule, workflow-step).
	Kind Kind `json:"kind" yaml:"kind"`

	// Description is a short human-readable summary, used in rendered
	// output and audit rows.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Triggers activate this unit. A unit with no triggers is inert:
	// it can only enter a bundle through another unit's depends_on.
	Triggers []Trigger `json:"triggers,omitempty" yaml:"triggers,omitempty"`

	// Tier orders the unit in the final bundle (mandatory first).
	Tier Tier `json:"tier" yaml:"tier"`

	// DependsOn lists unit IDs that must be included whenever this unit
	// is included. The loader rejects cycles.
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`

	// Enhances lists unit IDs this unit complements. Informational only;
	// never expanded.
	Enhances []string `json:"enhances,omitempty" yaml:"enhances,omitempty"`

	// Status is active or deprecated.
	Status Status `json:"status" yaml:"status"`

	// ReplacedBy names the successor unit. Required when deprecated.
	ReplacedBy string `json:"replaced_by,omitempty" yaml:"replaced_by,omitempty"`

	// Concern names the topic this unit speaks to (e.g. "error-handling").
	// Units sharing a concern participate in authoritative override.
	Concern string `json:"concern,omitempty" yaml:"concern,omitempty"`

	// Authoritative marks this unit as the ruling voice on its Concern.
	// Advisory units on the same concern are flagged as overridden, not
	// dropped, so the tension stays visible to the consumer.
	Authoritative bool `json:"authoritative,omitempty" yaml:"authoritative,omitempty"`

	// Source records the file this unit was loaded from.
	Source string `json:"source,omitempty" yaml:"-"`

	// LoadedAt records when the containing catalog was built.
	LoadedAt time.Time `json:"-" yaml:"-"`
}

// AlwaysOn reports whether any trigger is the always-on flag.
func (u *Unit) AlwaysOn() bool {
	for _, t := range u.Triggers {
		if t.AlwaysOn {
			return true
		}
	}
	return false
}

// Deprecated reports whether the unit has been superseded.
func (u *Unit) Deprecated() bool {
	return u.Status == StatusDeprecated
}

// Validate checks the unit for internal consistency. Cross-unit checks
// (references, cycles) are the catalog validator's job.
func (u *Unit) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("unit ID is required")
	}

	validKind := false
	for _, k := range AllKinds() {
		if k == u.Kind {
			validKind = true
			break
		}
	}
	if !validKind {
		return fmt.Errorf("unknown kind %q for unit %q", u.Kind, u.ID)
	}

	if u.Tier < TierMandatory || u.Tier > TierAdvisory {
		return fmt.Errorf("tier %d out of range for unit %q", u.Tier, u.ID)
	}

	switch u.Status {
	case StatusActive, StatusDeprecated:
	case "":
		return fmt.Errorf("status is required for unit %q", u.ID)
	default:
		return fmt.Errorf("unknown status %q for unit %q", u.Status, u.ID)
	}

	if u.Status == StatusDeprecated && u.ReplacedBy == "" {
		return fmt.Errorf("deprecated unit %q has no replaced_by", u.ID)
	}
	if u.ReplacedBy == u.ID {
		return fmt.Errorf("unit %q cannot replace itself", u.ID)
	}

	for i, t := range u.Triggers {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("unit %q trigger %d: %w", u.ID, i, err)
		}
	}

	for _, dep := range u.DependsOn {
		if dep == u.ID {
			return fmt.Errorf("unit %q cannot depend on itself", u.ID)
		}
	}

	if u.Authoritative && u.Concern == "" {
		return fmt.Errorf("authoritative unit %q has no concern", u.ID)
	}

	return nil
}

// Clone creates a deep copy of the unit.
func (u *Unit) Clone() *Unit {
	clone := *u
	clone.Triggers = append([]Trigger(nil), u.Triggers...)
	clone.DependsOn = copyStringSlice(u.DependsOn)
	clone.Enhances = copyStringSlice(u.Enhances)
	return &clone
}

func copyStringSlice(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}
