package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/coldcase/internal/errors"
)

const eventBuffer = 16

// TickReport lists what happened during one tick.
type TickReport struct {
	Analyzed     []string `json:"analyzed,omitempty"`
	RevealedNews []string `json:"revealedNews,omitempty"`
	TimeUp       bool     `json:"timeUp"`
}

// Empty reports whether nothing observable happened.
func (r TickReport) Empty() bool {
	return len(r.Analyzed) == 0 && len(r.RevealedNews) == 0 && !r.TimeUp
}

// Subscribe returns a channel of the non-empty tick reports produced by Run, and a function to cancel the
// subscription. Reports are dropped for subscribers that do not keep up. The channel is closed when Run returns.
//
// Subscribe blocks until Run has started.
func (g *Game) Subscribe() (<-chan TickReport, func()) {
	c := g.events.Subscribe()
	return c, func() {
		g.events.Unsubscribe(c)
	}
}

// Tick advances the evidence lab and the case timer by one second. Nothing is persisted when neither is running.
func (g *Game) Tick(ctx context.Context) (TickReport, error) {
	start := time.Now()
	defer func() {
		tickDuration.Observe(time.Since(start).Seconds())
	}()

	g.mu.Lock()
	defer g.mu.Unlock()
	var report TickReport
	if g.active == nil || (!g.lab.Running() && !g.timer.Running()) {
		return report, nil
	}

	s := g.working()
	if finished, ok := s.lab.Tick(s.c); ok {
		report.Analyzed = append(report.Analyzed, finished)
	}
	report.TimeUp = s.timer.Tick()
	report.RevealedNews = s.settle()

	if err := g.commit(ctx, s); err != nil {
		return TickReport{}, err
	}

	caseAttr := slog.String("case_id", s.c.ID)
	for _, id := range report.Analyzed {
		evidenceAnalyzed.Inc()
		g.logger.LogAttrs(ctx, slog.LevelInfo, "evidence analyzed", caseAttr, slog.String("evidence_id", id))
	}
	if len(report.RevealedNews) > 0 {
		newsRevealed.Add(float64(len(report.RevealedNews)))
		g.logger.LogAttrs(ctx, slog.LevelInfo, "breaking news revealed", caseAttr,
			slog.Any("news_ids", report.RevealedNews))
	}
	if report.TimeUp {
		timersExpired.Inc()
		g.logger.LogAttrs(ctx, slog.LevelInfo, "time is up", caseAttr)
	}
	return report, nil
}

// Run is the single clock driver. It ticks the game every interval until ctx is done and publishes what happened to
// the subscribers. A failing tick is logged and the next tick retries from the last committed state.
func (g *Game) Run(ctx context.Context, interval time.Duration) error {
	go g.events.Start()
	defer g.events.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	g.logger.LogAttrs(ctx, slog.LevelInfo, "starting clock", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			g.logger.LogAttrs(context.WithoutCancel(ctx), slog.LevelInfo, "stopping clock")
			return nil
		case <-ticker.C:
			report, err := g.Tick(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				g.logger.LogAttrs(ctx, slog.LevelError, "tick failed", errors.SlogError(err))
				continue
			}
			if !report.Empty() {
				g.events.Publish(report)
			}
		}
	}
}
