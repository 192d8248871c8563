package engine

import (
	"strconv"
	"strings"

	"github.com/myrjola/coldcase/internal/models"
)

// TriggerKind is the progress counter a breaking news trigger watches.
type TriggerKind int

const (
	// TriggerEvidenceAnalyzed fires once enough evidence has been analyzed.
	TriggerEvidenceAnalyzed TriggerKind = iota + 1
	// TriggerPersonInterviewed fires once enough people have been interviewed.
	TriggerPersonInterviewed
)

const (
	evidenceAnalyzedPrefix  = "evidence-analyzed-"
	personInterviewedPrefix = "person-interviewed-"
)

// Trigger is a parsed breaking news trigger condition.
type Trigger struct {
	Kind      TriggerKind
	Threshold int
}

// ParseTrigger parses evidence-analyzed-<N> and person-interviewed-<N>. Anything else is not a trigger.
func ParseTrigger(condition string) (Trigger, bool) {
	var (
		kind TriggerKind
		rest string
	)
	if n, ok := strings.CutPrefix(condition, evidenceAnalyzedPrefix); ok {
		kind, rest = TriggerEvidenceAnalyzed, n
	} else if n, ok = strings.CutPrefix(condition, personInterviewedPrefix); ok {
		kind, rest = TriggerPersonInterviewed, n
	} else {
		return Trigger{}, false
	}
	threshold, err := strconv.Atoi(rest)
	if err != nil || threshold < 0 || strings.HasPrefix(rest, "+") {
		return Trigger{}, false
	}
	return Trigger{Kind: kind, Threshold: threshold}, true
}

// Counts are the progress counters the news triggers compare against.
type Counts struct {
	Analyzed    int
	Interviewed int
}

// CountProgress counts analyzed evidence and interviewed people.
func CountProgress(c *models.Case) Counts {
	var counts Counts
	for _, e := range c.Evidence {
		if e.Analyzed {
			counts.Analyzed++
		}
	}
	for _, p := range c.People {
		if p.Interviewed {
			counts.Interviewed++
		}
	}
	return counts
}

func (t Trigger) satisfied(counts Counts) bool {
	switch t.Kind {
	case TriggerEvidenceAnalyzed:
		return counts.Analyzed >= t.Threshold
	case TriggerPersonInterviewed:
		return counts.Interviewed >= t.Threshold
	}
	return false
}

// RevealNews latches every unrevealed news item whose trigger is satisfied and returns their ids in news order.
func RevealNews(c *models.Case) []string {
	counts := CountProgress(c)
	var revealed []string
	for i := range c.BreakingNews {
		news := &c.BreakingNews[i]
		if news.Revealed {
			continue
		}
		trigger, ok := ParseTrigger(news.TriggerCondition)
		if !ok || !trigger.satisfied(counts) {
			continue
		}
		news.Revealed = true
		revealed = append(revealed, news.ID)
	}
	return revealed
}

// RevealedNews returns the news items the player has seen, in news order.
func RevealedNews(c *models.Case) []models.BreakingNews {
	var news []models.BreakingNews
	for _, n := range c.BreakingNews {
		if n.Revealed {
			news = append(news, n)
		}
	}
	return news
}
