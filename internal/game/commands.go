package game

import (
	"context"
	"log/slog"

	"github.com/myrjola/coldcase/internal/casefile"
	"github.com/myrjola/coldcase/internal/engine"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/models"
)

// CaseSummary is a roster entry.
type CaseSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Victim    string `json:"victim"`
	TimeLimit *int   `json:"timeLimit,omitempty"`
	Solved    bool   `json:"solved"`
	Active    bool   `json:"active"`
}

func summarize(c *models.Case, active bool) CaseSummary {
	return CaseSummary{
		ID:        c.ID,
		Title:     c.Title,
		Type:      c.Type,
		Victim:    c.Victim,
		TimeLimit: c.TimeLimit,
		Solved:    c.Solved,
		Active:    active,
	}
}

// Cases lists the roster in import order.
func (g *Game) Cases(ctx context.Context) ([]CaseSummary, error) {
	cases, err := g.cases.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list cases")
	}
	g.mu.Lock()
	activeID := ""
	if g.active != nil {
		activeID = g.active.ID
	}
	g.mu.Unlock()
	summaries := make([]CaseSummary, 0, len(cases))
	for i := range cases {
		summaries = append(summaries, summarize(&cases[i], cases[i].ID == activeID))
	}
	return summaries, nil
}

// ImportCase validates a case document and appends it to the roster under a fresh id. Rejected documents match
// [casefile.ErrInvalidCase] and leave the roster unchanged.
func (g *Game) ImportCase(ctx context.Context, data []byte, format casefile.Format) (CaseSummary, error) {
	c, err := casefile.Import(data, format)
	if err != nil {
		casesImported.WithLabelValues(resultRejected).Inc()
		return CaseSummary{}, err
	}
	if err = g.cases.Append(ctx, c); err != nil {
		return CaseSummary{}, errors.Wrap(err, "append case", slog.String("case_id", c.ID))
	}
	casesImported.WithLabelValues(resultAccepted).Inc()
	g.logger.LogAttrs(ctx, slog.LevelInfo, "imported case",
		slog.String("case_id", c.ID), slog.String("title", c.Title))
	return summarize(c, false), nil
}

// SelectCase makes the case the active one. The case continues where it was left: its lab pipeline and timer were
// frozen while another case was active and pick up again from the next tick. Selecting the active case is a no-op.
func (g *Game) SelectCase(ctx context.Context, caseID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active != nil && g.active.ID == caseID {
		return nil
	}
	c, err := g.cases.Get(ctx, caseID)
	if err != nil {
		return errors.Wrap(err, "get case", slog.String("case_id", caseID))
	}
	lab, timer, err := g.progress.LoadCaseState(ctx, caseID)
	if err != nil {
		return errors.Wrap(err, "load case state", slog.String("case_id", caseID))
	}
	s := &state{
		c:          c,
		lab:        engine.NewLab(lab),
		timer:      engine.NewTimer(timer),
		newsUnread: g.newsUnread,
	}
	if revealed := s.settle(); len(revealed) > 0 {
		newsRevealed.Add(float64(len(revealed)))
	}
	if err = g.commit(ctx, s); err != nil {
		return err
	}
	g.logger.LogAttrs(ctx, slog.LevelInfo, "selected case",
		slog.String("case_id", c.ID),
		slog.Int("lab_queue", s.lab.QueueLength()),
		slog.Bool("timer_running", s.timer.Running()))
	return nil
}

// ExitCase clears the active case. The roster keeps the case with its progress, lab pipeline and timer, which stay
// frozen until the case is selected again.
func (g *Game) ExitCase(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil {
		return ErrNoActiveCase
	}
	exited := g.active.ID
	s := &state{
		lab:        engine.NewLab(models.LabState{}),
		timer:      engine.NewTimer(models.TimerState{}),
		newsUnread: g.newsUnread,
	}
	if err := g.commit(ctx, s); err != nil {
		return err
	}
	g.logger.LogAttrs(ctx, slog.LevelInfo, "exited case", slog.String("case_id", exited))
	return nil
}

// ExamineLocation marks a scene location as examined.
func (g *Game) ExamineLocation(ctx context.Context, locationID string) (bool, error) {
	return g.mutate(ctx, func(s *state) bool {
		return engine.ExamineLocation(s.c, locationID)
	})
}

// CollectEvidence picks up evidence that is available and found at an examined location.
func (g *Game) CollectEvidence(ctx context.Context, evidenceID string) (bool, error) {
	return g.mutate(ctx, func(s *state) bool {
		return engine.CollectEvidence(s.c, evidenceID)
	})
}

// SendEvidenceToLab queues collected evidence for analysis.
func (g *Game) SendEvidenceToLab(ctx context.Context, evidenceID string) (bool, error) {
	return g.mutate(ctx, func(s *state) bool {
		return s.lab.Enqueue(s.c, evidenceID)
	})
}

// AskQuestion asks an available person one of their askable questions.
func (g *Game) AskQuestion(ctx context.Context, personID, treeID string) (bool, error) {
	return g.mutate(ctx, func(s *state) bool {
		p := s.c.FindPerson(personID)
		if p == nil || !engine.IsPersonAvailable(s.c, personID) || !engine.IsAskable(p, s.c, treeID) {
			return false
		}
		return engine.AskQuestion(p, treeID)
	})
}

// SelectableResponse reports whether the response ref of an available person may be selected as a contradiction
// candidate. Only responses of asked questions qualify.
func (g *Game) SelectableResponse(personID, ref string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil {
		return false, ErrNoActiveCase
	}
	p := g.active.FindPerson(personID)
	if p == nil || !engine.IsPersonAvailable(g.active, personID) {
		return false, nil
	}
	return engine.HasAskedResponse(p, ref), nil
}

// CheckContradiction checks whether the two selected responses of a person contradict each other. A match is
// latched caught.
func (g *Game) CheckContradiction(
	ctx context.Context,
	personID string,
	selection engine.Selection,
) (*models.Contradiction, error) {
	var (
		found     models.Contradiction
		matched   bool
		firstTime bool
	)
	if _, err := g.mutate(ctx, func(s *state) bool {
		p := s.c.FindPerson(personID)
		if p == nil {
			return false
		}
		wasCaught := caughtContradictions(p)
		found, matched = engine.CheckContradiction(p, selection)
		firstTime = matched && !wasCaught[found.ID]
		return firstTime
	}); err != nil {
		return nil, err
	}
	if !matched {
		return nil, nil //nolint:nilnil // no contradiction is a valid outcome.
	}
	if firstTime {
		contradictionsCaught.Inc()
		g.logger.LogAttrs(ctx, slog.LevelInfo, "contradiction caught",
			slog.String("person_id", personID), slog.String("contradiction_id", found.ID))
	}
	return &found, nil
}

func caughtContradictions(p *models.Person) map[string]bool {
	caught := make(map[string]bool, len(p.Contradictions))
	for _, c := range p.Contradictions {
		caught[c.ID] = c.Caught
	}
	return caught
}

// AccusationResult is the outcome of accusing a suspect.
type AccusationResult struct {
	// Applied is false when the accused is not a suspect of the case.
	Applied bool `json:"applied"`
	Correct bool `json:"correct"`
	// Solution is revealed once the culprit has been accused.
	Solution *models.Solution `json:"solution,omitempty"`
}

// SubmitAccusation accuses a suspect. A correct accusation solves the case and stops the timer. A wrong one can be
// retried.
func (g *Game) SubmitAccusation(ctx context.Context, personID string) (AccusationResult, error) {
	var result AccusationResult
	if _, err := g.mutate(ctx, func(s *state) bool {
		p := s.c.FindPerson(personID)
		if p == nil || p.Type != models.PersonTypeSuspect {
			return false
		}
		result.Applied = true
		if personID != s.c.Solution.Culprit {
			return false
		}
		result.Correct = true
		solution := s.c.Solution
		result.Solution = &solution
		if s.c.Solved {
			return false
		}
		s.c.Solved = true
		s.timer.Stop()
		return true
	}); err != nil {
		return AccusationResult{}, err
	}
	if result.Applied {
		outcome := outcomeIncorrect
		if result.Correct {
			outcome = outcomeCorrect
		}
		accusations.WithLabelValues(outcome).Inc()
		g.logger.LogAttrs(ctx, slog.LevelInfo, "accusation submitted",
			slog.String("person_id", personID), slog.String("outcome", outcome))
	}
	return result, nil
}

// StartTimer starts the countdown from the case's time limit.
func (g *Game) StartTimer(ctx context.Context) (bool, error) {
	return g.mutate(ctx, func(s *state) bool {
		return s.timer.Start(s.c.TimeLimit)
	})
}

// ResumeTimer continues a paused countdown.
func (g *Game) ResumeTimer(ctx context.Context) (bool, error) {
	return g.mutate(ctx, func(s *state) bool {
		return s.timer.Resume()
	})
}

// PauseTimer halts the countdown and keeps the remaining time.
func (g *Game) PauseTimer(ctx context.Context) (bool, error) {
	return g.mutate(ctx, func(s *state) bool {
		return s.timer.Pause()
	})
}

// StopTimer halts the countdown and forgets the remaining time.
func (g *Game) StopTimer(ctx context.Context) (bool, error) {
	return g.mutate(ctx, func(s *state) bool {
		return s.timer.Stop()
	})
}

// MarkNewsRead clears the unread news flag.
func (g *Game) MarkNewsRead(ctx context.Context) (bool, error) {
	return g.mutate(ctx, func(s *state) bool {
		if !s.newsUnread {
			return false
		}
		s.newsUnread = false
		return true
	})
}
