// Package game owns the application state: the active case, the evidence lab and the case timer. Every player
// command and every clock tick goes through a Game, which re-applies the unlock and news latches and persists the
// result before the new state becomes visible.
package game

import (
	"context"
	"log/slog"
	"sync"

	"github.com/myrjola/coldcase/internal/broker"
	"github.com/myrjola/coldcase/internal/engine"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/models"
	"github.com/myrjola/coldcase/internal/repositories"
)

var ErrNoActiveCase = errors.NewSentinel("no active case")

// CaseStore is the case roster.
type CaseStore interface {
	List(ctx context.Context) ([]models.Case, error)
	Get(ctx context.Context, id string) (*models.Case, error)
	Append(ctx context.Context, c *models.Case) error
}

// ProgressStore persists the state of the active case and keeps the lab and timer of every case.
type ProgressStore interface {
	Load(ctx context.Context) (models.Progress, error)
	LoadCaseState(ctx context.Context, caseID string) (models.LabState, models.TimerState, error)
	Commit(ctx context.Context, snapshot repositories.Snapshot) error
}

type Game struct {
	mu       sync.Mutex
	cases    CaseStore
	progress ProgressStore
	logger   *slog.Logger
	events   *broker.Broker[TickReport]

	// active is nil when no case is selected. It is never mutated in place, commands work on a clone.
	active     *models.Case
	lab        *engine.Lab
	timer      *engine.Timer
	newsUnread bool
}

// New resumes the game from the persisted progress.
func New(ctx context.Context, logger *slog.Logger, cases CaseStore, progress ProgressStore) (*Game, error) {
	g := &Game{
		cases:    cases,
		progress: progress,
		logger:   logger.With("source", "Game"),
		events:   broker.New[TickReport](eventBuffer),
		lab:      engine.NewLab(models.LabState{}),
		timer:    engine.NewTimer(models.TimerState{}),
	}

	p, err := progress.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load progress")
	}
	if p.ActiveCaseID == "" {
		return g, nil
	}

	active, err := cases.Get(ctx, p.ActiveCaseID)
	if errors.Is(err, repositories.ErrCaseNotFound) {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "active case no longer in roster",
			slog.String("case_id", p.ActiveCaseID))
		return g, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load active case", slog.String("case_id", p.ActiveCaseID))
	}
	g.active = active
	g.lab = engine.NewLab(p.Lab)
	g.timer = engine.NewTimer(p.Timer)
	g.newsUnread = p.NewsUnread
	labQueueLength.Set(float64(g.lab.QueueLength()))
	g.logger.LogAttrs(ctx, slog.LevelInfo, "resumed case",
		slog.String("case_id", active.ID),
		slog.Int("lab_queue", g.lab.QueueLength()),
		slog.Bool("timer_running", g.timer.Running()))
	return g, nil
}

// state is a working copy of the application state that a command mutates before it is committed.
type state struct {
	c          *models.Case
	lab        *engine.Lab
	timer      *engine.Timer
	newsUnread bool
}

func (g *Game) working() *state {
	s := &state{
		lab:        engine.NewLab(g.lab.State()),
		timer:      engine.NewTimer(g.timer.State()),
		newsUnread: g.newsUnread,
	}
	if g.active != nil {
		s.c = g.active.Clone()
	}
	return s
}

// settle re-applies the latching transitions until nothing changes and returns the news revealed on the way.
func (s *state) settle() []string {
	var revealed []string
	for {
		unlocks := engine.ApplyUnlocks(s.c)
		news := engine.RevealNews(s.c)
		revealed = append(revealed, news...)
		if unlocks.Empty() && len(news) == 0 {
			break
		}
	}
	if len(revealed) > 0 {
		s.newsUnread = true
	}
	return revealed
}

// commit persists s and makes it the current state. g.mu must be held.
func (g *Game) commit(ctx context.Context, s *state) error {
	snapshot := repositories.Snapshot{
		Case: s.c,
		Progress: models.Progress{
			NewsUnread: s.newsUnread,
			Lab:        s.lab.State(),
			Timer:      s.timer.State(),
		},
	}
	if s.c != nil {
		snapshot.Progress.ActiveCaseID = s.c.ID
	}
	if err := g.progress.Commit(ctx, snapshot); err != nil {
		return errors.Wrap(err, "commit progress")
	}
	g.active = s.c
	g.lab = s.lab
	g.timer = s.timer
	g.newsUnread = s.newsUnread
	labQueueLength.Set(float64(s.lab.QueueLength()))
	return nil
}

// mutate runs fn on a working copy of the active case and commits it when fn reports a change.
func (g *Game) mutate(ctx context.Context, fn func(s *state) bool) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil {
		return false, ErrNoActiveCase
	}
	s := g.working()
	if !fn(s) {
		return false, nil
	}
	if revealed := s.settle(); len(revealed) > 0 {
		newsRevealed.Add(float64(len(revealed)))
		g.logger.LogAttrs(ctx, slog.LevelInfo, "breaking news revealed", slog.Any("news_ids", revealed))
	}
	if err := g.commit(ctx, s); err != nil {
		return false, err
	}
	return true, nil
}
