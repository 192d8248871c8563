package game

import (
	"github.com/myrjola/coldcase/internal/engine"
	"github.com/myrjola/coldcase/internal/models"
)

// EvidenceView is an evidence item as the player sees it.
type EvidenceView struct {
	models.Evidence
	LabStatus engine.EvidenceStatus `json:"labStatus"`
	// Remaining is the number of seconds until the lab finishes this item.
	Remaining *int `json:"remaining,omitempty"`
}

type LabView struct {
	Current       string   `json:"current,omitempty"`
	Remaining     int      `json:"remaining"`
	Queue         []string `json:"queue"`
	TotalTimeLeft int      `json:"totalTimeLeft"`
}

type TimerView struct {
	Remaining *int `json:"remaining,omitempty"`
	Active    bool `json:"active"`
	Expired   bool `json:"expired"`
}

// PersonSummary is a person listed in the case view.
type PersonSummary struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Age          int               `json:"age"`
	Occupation   string            `json:"occupation"`
	Relationship string            `json:"relationship"`
	Type         models.PersonType `json:"type"`
	Interviewed  bool              `json:"interviewed"`
}

// View is the read model of the active case.
type View struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Type      string            `json:"type"`
	Victim    string            `json:"victim"`
	Briefing  string            `json:"briefing"`
	TimeLimit *int              `json:"timeLimit,omitempty"`
	Scene     []models.Location `json:"scene"`
	// Evidence lists the evidence that is not hidden.
	Evidence []EvidenceView `json:"evidence"`
	// People lists the people who are available.
	People       []PersonSummary       `json:"people"`
	PhoneRecords *models.PhoneRecords  `json:"phoneRecords,omitempty"`
	News         []models.BreakingNews `json:"news"`
	NewsUnread   bool                  `json:"newsUnread"`
	Lab          LabView               `json:"lab"`
	Timer        TimerView             `json:"timer"`
	Solved       bool                  `json:"solved"`
	// Solution is revealed once the case is solved.
	Solution *models.Solution `json:"solution,omitempty"`
}

// View returns the read model of the active case.
func (g *Game) View() (View, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil {
		return View{}, ErrNoActiveCase
	}
	c := g.active

	v := View{
		ID:         c.ID,
		Title:      c.Title,
		Type:       c.Type,
		Victim:     c.Victim,
		Briefing:   c.Briefing,
		TimeLimit:  c.TimeLimit,
		Scene:      c.Clone().Scene,
		Evidence:   []EvidenceView{},
		People:     []PersonSummary{},
		News:       engine.RevealedNews(c),
		NewsUnread: g.newsUnread,
		Solved:     c.Solved,
	}
	for _, e := range engine.AvailableEvidence(c) {
		if !e.Analyzed {
			// The lab has not reported yet.
			e.AnalysisResult = ""
		}
		ev := EvidenceView{Evidence: e, LabStatus: g.lab.Status(c, e.ID)}
		if remaining, ok := g.lab.RemainingTime(e.ID); ok {
			ev.Remaining = &remaining
		}
		v.Evidence = append(v.Evidence, ev)
	}
	for _, p := range engine.AvailablePeople(c) {
		v.People = append(v.People, PersonSummary{
			ID:           p.ID,
			Name:         p.Name,
			Age:          p.Age,
			Occupation:   p.Occupation,
			Relationship: p.Relationship,
			Type:         p.Type,
			Interviewed:  p.Interviewed,
		})
	}
	if engine.PhoneRecordsUnlocked(c) {
		v.PhoneRecords = c.Clone().PhoneRecords
	}
	if v.News == nil {
		v.News = []models.BreakingNews{}
	}

	v.Lab = LabView{
		Queue:         g.lab.Queued(),
		TotalTimeLeft: g.lab.TotalTimeLeft(),
	}
	if current, ok := g.lab.Current(); ok {
		v.Lab.Current = current
		v.Lab.Remaining = g.lab.State().Remaining
	}

	timer := g.timer.State()
	v.Timer = TimerView{Remaining: timer.Remaining, Active: timer.Active, Expired: timer.Expired}

	if c.Solved {
		solution := c.Solution
		v.Solution = &solution
	}
	return v, nil
}

// PersonView is the interview read model of one available person.
type PersonView struct {
	PersonSummary
	InitialStatement string                 `json:"initialStatement"`
	Askable          []models.DialogueTree  `json:"askable"`
	Asked            []models.DialogueTree  `json:"asked"`
	Caught           []models.Contradiction `json:"caught"`
}

// PersonView returns the interview read model of a person. It reports false when the person is unknown or not
// available yet.
func (g *Game) PersonView(personID string) (PersonView, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil {
		return PersonView{}, false, ErrNoActiveCase
	}
	c := g.active.Clone()
	p := c.FindPerson(personID)
	if p == nil || !engine.IsPersonAvailable(c, personID) {
		return PersonView{}, false, nil
	}
	v := PersonView{
		PersonSummary: PersonSummary{
			ID:           p.ID,
			Name:         p.Name,
			Age:          p.Age,
			Occupation:   p.Occupation,
			Relationship: p.Relationship,
			Type:         p.Type,
			Interviewed:  p.Interviewed,
		},
		InitialStatement: p.InitialStatement,
		Askable:          engine.AskableTrees(p, c),
		Asked:            engine.AskedTrees(p),
		Caught:           []models.Contradiction{},
	}
	for _, contradiction := range p.Contradictions {
		if contradiction.Caught {
			v.Caught = append(v.Caught, contradiction)
		}
	}
	// Answers are heard by asking.
	for i := range v.Askable {
		v.Askable[i].Responses = []models.DialogueResponse{}
	}
	if v.Askable == nil {
		v.Askable = []models.DialogueTree{}
	}
	if v.Asked == nil {
		v.Asked = []models.DialogueTree{}
	}
	return v, true, nil
}
