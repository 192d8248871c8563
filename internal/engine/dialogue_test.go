package engine_test

import (
	"testing"

	"github.com/myrjola/coldcase/internal/engine"
	"github.com/stretchr/testify/require"
)

func TestAskableTrees(t *testing.T) {
	tests := []struct {
		name     string
		analyzed []string
		asked    map[string][]string
		want     []string
	}{
		{
			name: "no requirements met",
			want: []string{"tree1"},
		},
		{
			name:     "required evidence analyzed",
			analyzed: []string{"security-footage"},
			want:     []string{"tree1", "tree2"},
		},
		{
			name:  "cross-person requirement asked",
			asked: map[string][]string{"marcus": {"alibi"}},
			want:  []string{"tree1", "tree3"},
		},
		{
			name:     "asked trees drop out and order is kept",
			analyzed: []string{"security-footage"},
			asked:    map[string][]string{"marcus": {"alibi"}, "elena": {"tree1"}},
			want:     []string{"tree2", "tree3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newFixture()
			for _, id := range tt.analyzed {
				c.FindEvidence(id).Analyzed = true
			}
			for personID, trees := range tt.asked {
				for _, treeID := range trees {
					require.True(t, engine.AskQuestion(c.FindPerson(personID), treeID))
				}
			}
			require.Equal(t, tt.want, treeIDs(engine.AskableTrees(c.FindPerson("elena"), c)))
		})
	}
}

func TestAskableTrees_EvidenceUnlocksWithoutOtherAction(t *testing.T) {
	c := newFixture()
	elena := c.FindPerson("elena")
	require.NotContains(t, treeIDs(engine.AskableTrees(elena, c)), "tree2")

	c.FindEvidence("security-footage").Analyzed = true
	require.Contains(t, treeIDs(engine.AskableTrees(elena, c)), "tree2")
}

func TestAskableTrees_DanglingCrossReference(t *testing.T) {
	c := newFixture()
	elena := c.FindPerson("elena")
	elena.DialogueTrees[2].RequiresPerson = "ghost"
	require.False(t, engine.IsAskable(elena, c, "tree3"))

	elena.DialogueTrees[2].RequiresPerson = "marcus"
	elena.DialogueTrees[2].RequiresResponse = "alibi-r9"
	require.True(t, engine.AskQuestion(c.FindPerson("marcus"), "alibi"))
	require.False(t, engine.IsAskable(elena, c, "tree3"), "response id must exist on the referenced tree")
}

func TestAskableTrees_Monotonic(t *testing.T) {
	c := newFixture()
	elena := c.FindPerson("elena")
	askable := treeIDs(engine.AskableTrees(elena, c))

	// Analyzing more evidence and asking other people's questions never revokes availability.
	for _, id := range []string{"wine-glass", "security-footage", "locked-drawer"} {
		c.FindEvidence(id).Analyzed = true
		require.Subset(t, treeIDs(engine.AskableTrees(elena, c)), askable)
		askable = treeIDs(engine.AskableTrees(elena, c))
	}
	require.True(t, engine.AskQuestion(c.FindPerson("marcus"), "alibi"))
	require.Subset(t, treeIDs(engine.AskableTrees(elena, c)), askable)
}

func TestAskQuestion(t *testing.T) {
	c := newFixture()
	elena := c.FindPerson("elena")
	require.False(t, elena.Interviewed)

	require.False(t, engine.AskQuestion(elena, "tree9"), "unknown tree is a no-op")
	require.False(t, elena.Interviewed)

	require.True(t, engine.AskQuestion(elena, "tree1"))
	require.True(t, elena.FindTree("tree1").Asked)
	require.True(t, elena.Interviewed)
	require.Equal(t, []string{"tree1"}, treeIDs(engine.AskedTrees(elena)))

	require.False(t, engine.AskQuestion(elena, "tree1"), "asking twice is a no-op")
	require.True(t, engine.HasAskedResponse(elena, "tree1-r1"))
	require.False(t, engine.HasAskedResponse(elena, "tree2-r1"))
}
