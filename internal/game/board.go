package game

import "github.com/myrjola/coldcase/internal/engine"

// Tally is a "done out of possible" counter on the case board.
type Tally struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Finding is the lab result of an analyzed evidence item.
type Finding struct {
	EvidenceID     string `json:"evidenceId"`
	Name           string `json:"name"`
	AnalysisResult string `json:"analysisResult"`
}

// CaughtContradiction is a contradiction the player has caught, with the person who made it.
type CaughtContradiction struct {
	PersonID        string `json:"personId"`
	PersonName      string `json:"personName"`
	ContradictionID string `json:"contradictionId"`
	Description     string `json:"description"`
}

// Board summarises the investigation of the active case.
type Board struct {
	// Collected counts collected evidence out of all evidence in the case.
	Collected Tally `json:"collected"`
	// Analyzed counts analyzed evidence out of the collected evidence.
	Analyzed Tally `json:"analyzed"`
	// Interviewed counts interviewed people out of the available people.
	Interviewed    Tally                 `json:"interviewed"`
	KeyFindings    []Finding             `json:"keyFindings"`
	Contradictions []CaughtContradiction `json:"contradictions"`
}

// Board returns the case board of the active case.
func (g *Game) Board() (Board, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil {
		return Board{}, ErrNoActiveCase
	}
	c := g.active
	counts := engine.CountProgress(c)

	b := Board{
		Collected:      Tally{Total: len(c.Evidence)},
		Analyzed:       Tally{Done: counts.Analyzed},
		Interviewed:    Tally{Done: counts.Interviewed, Total: len(engine.AvailablePeople(c))},
		KeyFindings:    []Finding{},
		Contradictions: []CaughtContradiction{},
	}
	for _, e := range c.Evidence {
		if e.Collected {
			b.Collected.Done++
		}
		if e.Analyzed {
			b.KeyFindings = append(b.KeyFindings, Finding{
				EvidenceID:     e.ID,
				Name:           e.Name,
				AnalysisResult: e.AnalysisResult,
			})
		}
	}
	b.Analyzed.Total = b.Collected.Done
	for _, p := range c.People {
		for _, contradiction := range p.Contradictions {
			if !contradiction.Caught {
				continue
			}
			b.Contradictions = append(b.Contradictions, CaughtContradiction{
				PersonID:        p.ID,
				PersonName:      p.Name,
				ContradictionID: contradiction.ID,
				Description:     contradiction.Description,
			})
		}
	}
	return b, nil
}
