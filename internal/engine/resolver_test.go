package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirigent/internal/catalog"
	"dirigent/internal/signal"
)

func TestMatch_Disjunction(t *testing.T) {
	unit := &catalog.Unit{
		ID: "multi", Kind: catalog.KindSkill, Tier: catalog.TierTask,
		Status: catalog.StatusActive,
		Triggers: []catalog.Trigger{
			{Marker: "has-docker"},
			{Keyword: "deploy"},
		},
	}
	cat := catalog.New([]*catalog.Unit{unit})

	tests := []struct {
		name string
		sig  *signal.Signals
		want []string
	}{
		{"marker fires", signalsWith([]string{"has-docker"}, nil, ""), []string{"multi"}},
		{"keyword fires", signalsWith(nil, []string{"deploy"}, ""), []string{"multi"}},
		{"both fire, included once", signalsWith([]string{"has-docker"}, []string{"deploy"}, ""), []string{"multi"}},
		{"neither fires", emptySignals(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, match(cat, tt.sig))
		})
	}
}

func TestMatch_NoTriggersIsInert(t *testing.T) {
	cat := catalog.New([]*catalog.Unit{
		{ID: "inert", Kind: catalog.KindSkill, Tier: catalog.TierTask, Status: catalog.StatusActive},
	})
	assert.Empty(t, match(cat, signalsWith([]string{"has-go-mod"}, []string{"inert"}, "any")))
}

func TestExpand_Closure(t *testing.T) {
	cat := catalog.New([]*catalog.Unit{
		{ID: "a", Kind: catalog.KindSkill, Status: catalog.StatusActive, DependsOn: []string{"b", "c"}},
		{ID: "b", Kind: catalog.KindSkill, Status: catalog.StatusActive, DependsOn: []string{"d"}},
		{ID: "c", Kind: catalog.KindSkill, Status: catalog.StatusActive},
		{ID: "d", Kind: catalog.KindSkill, Status: catalog.StatusActive},
		{ID: "unrelated", Kind: catalog.KindSkill, Status: catalog.StatusActive},
	})

	got, err := expand(cat, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestExpand_EmptyInput(t *testing.T) {
	cat := catalog.New(nil)
	got, err := expand(cat, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpand_UnknownUnitIsInvariantViolation(t *testing.T) {
	cat := catalog.New([]*catalog.Unit{
		{ID: "a", Kind: catalog.KindSkill, Status: catalog.StatusActive},
	})
	_, err := expand(cat, []string{"ghost"})
	assert.ErrorIs(t, err, ErrInternalInvariant)
}

func TestResolveMembership_OverrideMapOnly(t *testing.T) {
	cat := catalog.New([]*catalog.Unit{
		{ID: "auth", Kind: catalog.KindRule, Status: catalog.StatusActive,
			Concern: "style", Authoritative: true},
		{ID: "hint", Kind: catalog.KindRule, Status: catalog.StatusActive,
			Concern: "style"},
	})

	res, err := resolve(cat, []string{"auth", "hint"})
	require.NoError(t, err)

	assert.Equal(t, []string{"auth", "hint"}, res.ids, "override never removes units")
	assert.Equal(t, map[string]string{"hint": "auth"}, res.overriddenBy)
	assert.Empty(t, res.dropped)
}

func TestResolveMembership_DependencyEdgeRedirected(t *testing.T) {
	// "app" stays active while its dependency was deprecated; the edge
	// is satisfied by the replacement and resolution terminates cleanly.
	cat := catalog.New([]*catalog.Unit{
		{ID: "app", Kind: catalog.KindSkill, Status: catalog.StatusActive,
			DependsOn: []string{"old"}},
		{ID: "old", Kind: catalog.KindSkill, Status: catalog.StatusDeprecated,
			ReplacedBy: "new"},
		{ID: "new", Kind: catalog.KindSkill, Status: catalog.StatusActive},
	})

	res, err := resolve(cat, []string{"app", "old"})
	require.NoError(t, err)

	assert.Equal(t, []string{"app", "new"}, res.ids)
	assert.Equal(t, []DroppedUnit{{ID: "old", Reason: "superseded-by:new"}}, res.dropped)
}

func TestSequence_DependencyOnReplacedUnitOrders(t *testing.T) {
	// The ordering edge for a depends_on that points at a deprecated
	// unit lands on the replacement present in the set.
	cat := catalog.New([]*catalog.Unit{
		{ID: "app", Kind: catalog.KindSkill, Tier: catalog.TierTask, Status: catalog.StatusActive,
			DependsOn: []string{"old"}},
		{ID: "old", Kind: catalog.KindSkill, Tier: catalog.TierTask, Status: catalog.StatusDeprecated,
			ReplacedBy: "zulu"},
		{ID: "zulu", Kind: catalog.KindSkill, Tier: catalog.TierTask, Status: catalog.StatusActive},
	})

	ordered, err := sequence(cat, []string{"app", "zulu"})
	require.NoError(t, err)

	// Plain (tier, ID) order would put app first; the redirected edge
	// forces zulu ahead of its dependent.
	assert.Equal(t, "zulu", ordered[0].ID)
	assert.Equal(t, "app", ordered[1].ID)
}

func TestSequence_UnknownUnitIsInvariantViolation(t *testing.T) {
	cat := catalog.New(nil)
	_, err := sequence(cat, []string{"ghost"})
	assert.ErrorIs(t, err, ErrInternalInvariant)
}

func TestSequence_StableUnderInputOrder(t *testing.T) {
	cat := catalog.New([]*catalog.Unit{
		{ID: "b", Kind: catalog.KindRule, Tier: catalog.TierTask, Status: catalog.StatusActive},
		{ID: "a", Kind: catalog.KindRule, Tier: catalog.TierTask, Status: catalog.StatusActive},
		{ID: "c", Kind: catalog.KindRule, Tier: catalog.TierMandatory, Status: catalog.StatusActive},
	})

	first, err := sequence(cat, []string{"a", "b", "c"})
	require.NoError(t, err)
	second, err := sequence(cat, []string{"c", "b", "a"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "c", first[0].ID, "mandatory tier first")
}
