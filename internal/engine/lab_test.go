package engine_test

import (
	"testing"

	"github.com/myrjola/coldcase/internal/engine"
	"github.com/myrjola/coldcase/internal/models"
	"github.com/stretchr/testify/require"
)

func tickN(lab *engine.Lab, c *models.Case, n int) []string {
	var finished []string
	for range n {
		if id, ok := lab.Tick(c); ok {
			finished = append(finished, id)
		}
	}
	return finished
}

func TestLab_TwoJobs(t *testing.T) {
	c := newFixture()
	collectAll(c)
	lab := engine.NewLab(models.LabState{})

	require.True(t, lab.Enqueue(c, "wine-glass"))
	require.True(t, lab.Enqueue(c, "security-footage"))
	require.Equal(t, 15, lab.TotalTimeLeft())

	require.Empty(t, tickN(lab, c, 9))
	require.False(t, c.IsAnalyzed("wine-glass"))

	require.Equal(t, []string{"wine-glass"}, tickN(lab, c, 1))
	require.True(t, c.IsAnalyzed("wine-glass"))
	current, ok := lab.Current()
	require.True(t, ok)
	require.Equal(t, "security-footage", current)
	remaining, ok := lab.RemainingTime("security-footage")
	require.True(t, ok)
	require.Equal(t, 5, remaining)

	require.Equal(t, []string{"security-footage"}, tickN(lab, c, 5))
	require.True(t, c.IsAnalyzed("security-footage"))
	require.False(t, lab.Running())
	require.Equal(t, 0, lab.TotalTimeLeft())
}

func TestLab_FIFOAndTotalTimeInvariant(t *testing.T) {
	c := newFixture()
	collectAll(c)
	c.FindEvidence("hidden-will").Hidden = false
	lab := engine.NewLab(models.LabState{})

	order := []string{"locked-drawer", "wine-glass", "hidden-will", "security-footage"}
	var finished []string
	for i, id := range order {
		require.True(t, lab.Enqueue(c, id))
		// Interleave ticks with enqueues.
		finished = append(finished, tickN(lab, c, i)...)
	}
	for lab.Running() {
		state := lab.State()
		sum := state.Remaining
		for _, job := range state.Queue {
			sum += job.TimeToProcess
		}
		require.Equal(t, sum, lab.TotalTimeLeft())
		if id, ok := lab.Tick(c); ok {
			finished = append(finished, id)
		}
	}
	require.Equal(t, order, finished)
}

func TestLab_EnqueueNoOps(t *testing.T) {
	tests := []struct {
		name       string
		prepare    func(c *models.Case, lab *engine.Lab)
		evidenceID string
	}{
		{
			name:       "unknown evidence",
			prepare:    func(_ *models.Case, _ *engine.Lab) {},
			evidenceID: "no-such-evidence",
		},
		{
			name:       "not collected",
			prepare:    func(c *models.Case, _ *engine.Lab) { c.FindEvidence("wine-glass").Collected = false },
			evidenceID: "wine-glass",
		},
		{
			name:       "already analyzed",
			prepare:    func(c *models.Case, _ *engine.Lab) { c.FindEvidence("wine-glass").Analyzed = true },
			evidenceID: "wine-glass",
		},
		{
			name:       "already current",
			prepare:    func(c *models.Case, lab *engine.Lab) { lab.Enqueue(c, "wine-glass") },
			evidenceID: "wine-glass",
		},
		{
			name: "already queued",
			prepare: func(c *models.Case, lab *engine.Lab) {
				lab.Enqueue(c, "wine-glass")
				lab.Enqueue(c, "security-footage")
			},
			evidenceID: "security-footage",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newFixture()
			collectAll(c)
			lab := engine.NewLab(models.LabState{})
			tt.prepare(c, lab)
			before := lab.State()
			require.False(t, lab.Enqueue(c, tt.evidenceID))
			require.Equal(t, before, lab.State())
		})
	}
}

func TestLab_StatusAndRemainingTime(t *testing.T) {
	c := newFixture()
	collectAll(c)
	lab := engine.NewLab(models.LabState{})
	require.True(t, lab.Enqueue(c, "wine-glass"))       // 10
	require.True(t, lab.Enqueue(c, "security-footage")) // 5
	require.True(t, lab.Enqueue(c, "locked-drawer"))    // 3
	tickN(lab, c, 4)

	tests := []struct {
		evidenceID    string
		wantStatus    engine.EvidenceStatus
		wantRemaining int
		wantOK        bool
	}{
		{evidenceID: "wine-glass", wantStatus: engine.StatusPending, wantRemaining: 6, wantOK: true},
		{evidenceID: "security-footage", wantStatus: engine.StatusPending, wantRemaining: 11, wantOK: true},
		{evidenceID: "locked-drawer", wantStatus: engine.StatusPending, wantRemaining: 14, wantOK: true},
		{evidenceID: "hidden-will", wantStatus: engine.StatusAvailable, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.evidenceID, func(t *testing.T) {
			require.Equal(t, tt.wantStatus, lab.Status(c, tt.evidenceID))
			remaining, ok := lab.RemainingTime(tt.evidenceID)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantRemaining, remaining)
		})
	}
	require.Equal(t, 14, lab.TotalTimeLeft())
	require.Equal(t, 3, lab.QueueLength())
	require.Equal(t, []string{"security-footage", "locked-drawer"}, lab.Queued())

	tickN(lab, c, 6)
	require.Equal(t, engine.StatusAnalyzed, lab.Status(c, "wine-glass"))
	_, ok := lab.RemainingTime("wine-glass")
	require.False(t, ok)
}

func TestLab_ResumeFromPersistedState(t *testing.T) {
	c := newFixture()
	collectAll(c)
	lab := engine.NewLab(models.LabState{})
	require.True(t, lab.Enqueue(c, "wine-glass"))
	require.True(t, lab.Enqueue(c, "security-footage"))
	tickN(lab, c, 7)

	// Simulate a reload: only the persisted state survives.
	resumed := engine.NewLab(lab.State())
	remaining, ok := resumed.RemainingTime("wine-glass")
	require.True(t, ok)
	require.Equal(t, 3, remaining, "countdown resumes instead of restarting")
	require.Equal(t, []string{"wine-glass"}, tickN(resumed, c, 3))
	require.Equal(t, []string{"security-footage"}, tickN(resumed, c, 5))
}

func TestLab_StateIsCopied(t *testing.T) {
	c := newFixture()
	collectAll(c)
	state := models.LabState{}
	lab := engine.NewLab(state)
	require.True(t, lab.Enqueue(c, "wine-glass"))
	require.Nil(t, state.Current)

	snapshot := lab.State()
	tickN(lab, c, 1)
	require.Equal(t, 10, snapshot.Remaining)
}

func TestLab_ZeroProcessingTime(t *testing.T) {
	c := newFixture()
	collectAll(c)
	c.FindEvidence("wine-glass").TimeToProcess = 0
	lab := engine.NewLab(models.LabState{})
	require.True(t, lab.Enqueue(c, "wine-glass"))
	require.Equal(t, []string{"wine-glass"}, tickN(lab, c, 1))
	require.False(t, lab.Running())
}

func TestLab_TickIdle(t *testing.T) {
	c := newFixture()
	lab := engine.NewLab(models.LabState{})
	_, ok := lab.Tick(c)
	require.False(t, ok)
}

func TestLab_AnalyzedImpliesCollected(t *testing.T) {
	c := newFixture()
	c.FindEvidence("wine-glass").Collected = true
	lab := engine.NewLab(models.LabState{})
	for _, e := range c.Evidence {
		lab.Enqueue(c, e.ID)
	}
	tickN(lab, c, 100)
	for _, e := range c.Evidence {
		if e.Analyzed {
			require.True(t, e.Collected, e.ID)
		}
	}
	require.True(t, c.IsAnalyzed("wine-glass"))
}
