package engine

import (
	"slices"

	"github.com/myrjola/coldcase/internal/models"
)

// EvidenceStatus is where an evidence item stands in the lab pipeline.
type EvidenceStatus string

const (
	// StatusAvailable means the evidence has not been sent to the lab.
	StatusAvailable EvidenceStatus = "available"
	// StatusPending means the evidence is queued or being analyzed.
	StatusPending EvidenceStatus = "pending"
	// StatusAnalyzed means the lab has reported its result.
	StatusAnalyzed EvidenceStatus = "analyzed"
)

// Lab is the single-slot evidence lab. Jobs are analyzed one at a time in the order they were sent.
//
// A Lab wraps a [models.LabState] so that the state can be persisted between ticks and resumed.
type Lab struct {
	state models.LabState
}

// NewLab resumes a lab from persisted state. The state is copied.
func NewLab(state models.LabState) *Lab {
	return &Lab{state: copyLabState(state)}
}

func copyLabState(state models.LabState) models.LabState {
	if state.Current != nil {
		current := *state.Current
		state.Current = &current
	}
	state.Queue = slices.Clone(state.Queue)
	return state
}

// State returns a copy of the lab state for persisting.
func (l *Lab) State() models.LabState {
	return copyLabState(l.state)
}

// Running reports whether a job is being analyzed.
func (l *Lab) Running() bool {
	return l.state.Current != nil
}

// QueueLength counts the current job and every waiting job.
func (l *Lab) QueueLength() int {
	if l.state.Current == nil {
		return 0
	}
	return 1 + len(l.state.Queue)
}

func (l *Lab) inPipeline(evidenceID string) bool {
	if l.state.Current != nil && l.state.Current.EvidenceID == evidenceID {
		return true
	}
	return slices.ContainsFunc(l.state.Queue, func(job models.LabJob) bool {
		return job.EvidenceID == evidenceID
	})
}

// Enqueue sends collected evidence to the lab. It is a no-op when the evidence is unknown, not collected, already
// analyzed or already in the pipeline. The job starts immediately when the lab is idle.
func (l *Lab) Enqueue(c *models.Case, evidenceID string) bool {
	e := c.FindEvidence(evidenceID)
	if e == nil || !e.Collected || e.Analyzed || l.inPipeline(evidenceID) {
		return false
	}
	if l.state.CaseID == "" {
		l.state.CaseID = c.ID
	}
	l.state.Queue = append(l.state.Queue, models.LabJob{EvidenceID: e.ID, TimeToProcess: max(e.TimeToProcess, 0)})
	if l.state.Current == nil {
		l.promote()
	}
	return true
}

func (l *Lab) promote() {
	if len(l.state.Queue) == 0 {
		l.state.Current = nil
		l.state.Remaining = 0
		return
	}
	next := l.state.Queue[0]
	l.state.Queue = slices.Delete(l.state.Queue, 0, 1)
	if len(l.state.Queue) == 0 {
		l.state.Queue = nil
	}
	l.state.Current = &next
	l.state.Remaining = next.TimeToProcess
}

// Tick advances the current job by one second. When the job finishes, its evidence is marked analyzed in c and the
// next job starts with its full processing time. It returns the id of the evidence that finished, if any.
func (l *Lab) Tick(c *models.Case) (string, bool) {
	if l.state.Current == nil {
		return "", false
	}
	if l.state.Remaining > 0 {
		l.state.Remaining--
	}
	if l.state.Remaining > 0 {
		return "", false
	}
	finished := l.state.Current.EvidenceID
	if e := c.FindEvidence(finished); e != nil {
		e.Analyzed = true
	}
	l.promote()
	return finished, true
}

// TotalTimeLeft is the remaining time of the current job plus the processing time of every queued job.
func (l *Lab) TotalTimeLeft() int {
	if l.state.Current == nil {
		return 0
	}
	total := l.state.Remaining
	for _, job := range l.state.Queue {
		total += job.TimeToProcess
	}
	return total
}

// Status reports where evidenceID stands in the lab.
func (l *Lab) Status(c *models.Case, evidenceID string) EvidenceStatus {
	if c.IsAnalyzed(evidenceID) {
		return StatusAnalyzed
	}
	if l.inPipeline(evidenceID) {
		return StatusPending
	}
	return StatusAvailable
}

// RemainingTime returns the seconds until evidenceID is analyzed. Evidence outside the pipeline has no remaining
// time.
func (l *Lab) RemainingTime(evidenceID string) (int, bool) {
	if l.state.Current == nil {
		return 0, false
	}
	remaining := l.state.Remaining
	if l.state.Current.EvidenceID == evidenceID {
		return remaining, true
	}
	for _, job := range l.state.Queue {
		remaining += job.TimeToProcess
		if job.EvidenceID == evidenceID {
			return remaining, true
		}
	}
	return 0, false
}

// Current returns the evidence id being analyzed.
func (l *Lab) Current() (string, bool) {
	if l.state.Current == nil {
		return "", false
	}
	return l.state.Current.EvidenceID, true
}

// Queued returns the waiting evidence ids in order.
func (l *Lab) Queued() []string {
	ids := make([]string, 0, len(l.state.Queue))
	for _, job := range l.state.Queue {
		ids = append(ids, job.EvidenceID)
	}
	return ids
}
