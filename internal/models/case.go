package models

import "slices"

// PersonType separates accusable suspects from witnesses.
type PersonType string

const (
	PersonTypeSuspect PersonType = "suspect"
	PersonTypeWitness PersonType = "witness"
)

// Case is one self-contained mystery. It is the root aggregate that the engine mutates as the player acts.
//
// A Case is treated as an immutable snapshot once it is handed out: mutations happen on a [Case.Clone].
type Case struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"                  validate:"required"`
	Type         string         `json:"type"                   validate:"required"`
	Victim       string         `json:"victim"                 validate:"required"`
	TimeLimit    *int           `json:"timeLimit,omitempty"    validate:"omitempty,gt=0"`
	Briefing     string         `json:"briefing"               validate:"required"`
	Scene        []Location     `json:"scene"                  validate:"required,dive"`
	Evidence     []Evidence     `json:"evidence"               validate:"required,dive"`
	People       []Person       `json:"people"                 validate:"required,dive"`
	PhoneRecords *PhoneRecords  `json:"phoneRecords,omitempty" validate:"omitempty"`
	BreakingNews []BreakingNews `json:"breakingNews,omitempty" validate:"omitempty,dive"`
	Solution     Solution       `json:"solution"               validate:"required"`
	// Solved is set once the culprit has been correctly accused.
	Solved bool `json:"solved,omitempty"`
}

// Location is a place in the crime scene that can be examined for evidence.
type Location struct {
	ID          string   `json:"id"          validate:"required"`
	Name        string   `json:"name"        validate:"required"`
	Description string   `json:"description"`
	EvidenceIDs []string `json:"evidenceIds" validate:"required"`
	Examined    bool     `json:"examined"`
}

type Evidence struct {
	ID             string `json:"id"                       validate:"required"`
	Name           string `json:"name"                     validate:"required"`
	Description    string `json:"description"`
	Location       string `json:"location"`
	Collected      bool   `json:"collected"`
	Analyzed       bool   `json:"analyzed"`
	AnalysisResult string `json:"analysisResult,omitempty"`
	Hidden         bool   `json:"hidden,omitempty"`
	UnlockedBy     string `json:"unlockedBy,omitempty"`
	// TimeToProcess is the number of seconds the lab needs to analyze the evidence.
	TimeToProcess int `json:"timeToProcess" validate:"gte=0"`
}

type Person struct {
	ID           string     `json:"id"                     validate:"required"`
	Name         string     `json:"name"                   validate:"required"`
	Age          int        `json:"age"                    validate:"gte=0"`
	Occupation   string     `json:"occupation"`
	Relationship string     `json:"relationship"`
	Type         PersonType `json:"type"                   validate:"oneof=suspect witness"`
	Available    bool       `json:"available"`
	// Availability names the evidence whose analysis makes the person available.
	Availability     string          `json:"availability,omitempty"`
	InitialStatement string          `json:"initialStatement"`
	DialogueTrees    []DialogueTree  `json:"dialogueTrees"  validate:"required,dive"`
	Contradictions   []Contradiction `json:"contradictions" validate:"required,dive"`
	Interviewed      bool            `json:"interviewed"`
}

// DialogueTree is a single askable question node.
type DialogueTree struct {
	ID               string             `json:"id"                         validate:"required"`
	Question         string             `json:"question"                   validate:"required"`
	RequiresEvidence string             `json:"requiresEvidence,omitempty"`
	RequiresPerson   string             `json:"requiresPerson,omitempty"`
	RequiresResponse string             `json:"requiresResponse,omitempty" validate:"omitempty,response_ref"`
	Responses        []DialogueResponse `json:"responses"                  validate:"required,dive"`
	Asked            bool               `json:"asked"`
}

type DialogueResponse struct {
	ID   string `json:"id"   validate:"required"`
	Text string `json:"text" validate:"required"`
	// FollowUps is narrative metadata. No unlock rule consults it.
	FollowUps            []string `json:"followUps,omitempty"`
	RevealsDetail        string   `json:"revealsDetail,omitempty"`
	RevealsContradiction string   `json:"revealsContradiction,omitempty"`
}

// Contradiction is a pair of mutually inconsistent responses of one person.
type Contradiction struct {
	ID          string `json:"id"          validate:"required"`
	Response1   string `json:"response1"   validate:"required,response_ref"`
	Response2   string `json:"response2"   validate:"required,response_ref"`
	Description string `json:"description" validate:"required"`
	Caught      bool   `json:"caught"`
}

type PhoneCall struct {
	Time     string `json:"time"`
	From     string `json:"from"`
	To       string `json:"to"`
	Duration string `json:"duration"`
}

type TextMessage struct {
	Time    string `json:"time"`
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
	Read    bool   `json:"read"`
}

type PhoneRecords struct {
	Calls      []PhoneCall   `json:"calls"`
	Texts      []TextMessage `json:"texts"`
	UnlockedBy string        `json:"unlockedBy,omitempty"`
}

type BreakingNews struct {
	ID string `json:"id" validate:"required"`
	// TriggerCondition is either evidence-analyzed-<N> or person-interviewed-<N>.
	TriggerCondition string `json:"triggerCondition" validate:"required"`
	Headline         string `json:"headline"         validate:"required"`
	Content          string `json:"content"`
	Revealed         bool   `json:"revealed"`
}

type Solution struct {
	Culprit string `json:"culprit" validate:"required"`
	Motive  string `json:"motive"  validate:"required"`
	Method  string `json:"method"  validate:"required"`
}

// ResponseRef formats the identifier used by contradictions and cross-person requirements.
func ResponseRef(treeID, responseID string) string {
	return treeID + "-" + responseID
}

// FindEvidence returns a pointer into c, or nil when id is unknown.
func (c *Case) FindEvidence(id string) *Evidence {
	for i := range c.Evidence {
		if c.Evidence[i].ID == id {
			return &c.Evidence[i]
		}
	}
	return nil
}

// FindPerson returns a pointer into c, or nil when id is unknown.
func (c *Case) FindPerson(id string) *Person {
	for i := range c.People {
		if c.People[i].ID == id {
			return &c.People[i]
		}
	}
	return nil
}

// FindLocation returns a pointer into c, or nil when id is unknown.
func (c *Case) FindLocation(id string) *Location {
	for i := range c.Scene {
		if c.Scene[i].ID == id {
			return &c.Scene[i]
		}
	}
	return nil
}

// IsAnalyzed reports whether evidence id exists and has been analyzed. Dangling ids are never analyzed.
func (c *Case) IsAnalyzed(id string) bool {
	e := c.FindEvidence(id)
	return e != nil && e.Analyzed
}

func (p *Person) FindTree(id string) *DialogueTree {
	for i := range p.DialogueTrees {
		if p.DialogueTrees[i].ID == id {
			return &p.DialogueTrees[i]
		}
	}
	return nil
}

// FindTreeByResponseRef returns the tree containing the response addressed by ref.
func (p *Person) FindTreeByResponseRef(ref string) *DialogueTree {
	for i := range p.DialogueTrees {
		tree := &p.DialogueTrees[i]
		for _, r := range tree.Responses {
			if ResponseRef(tree.ID, r.ID) == ref {
				return tree
			}
		}
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Case) Clone() *Case {
	if c == nil {
		return nil
	}
	clone := *c
	if c.TimeLimit != nil {
		limit := *c.TimeLimit
		clone.TimeLimit = &limit
	}
	clone.Scene = slices.Clone(c.Scene)
	for i, l := range clone.Scene {
		clone.Scene[i].EvidenceIDs = slices.Clone(l.EvidenceIDs)
	}
	clone.Evidence = slices.Clone(c.Evidence)
	clone.People = slices.Clone(c.People)
	for i, p := range clone.People {
		clone.People[i] = p.clone()
	}
	if c.PhoneRecords != nil {
		records := *c.PhoneRecords
		records.Calls = slices.Clone(records.Calls)
		records.Texts = slices.Clone(records.Texts)
		clone.PhoneRecords = &records
	}
	clone.BreakingNews = slices.Clone(c.BreakingNews)
	return &clone
}

func (p Person) clone() Person {
	p.DialogueTrees = slices.Clone(p.DialogueTrees)
	for i, tree := range p.DialogueTrees {
		tree.Responses = slices.Clone(tree.Responses)
		for j, r := range tree.Responses {
			r.FollowUps = slices.Clone(r.FollowUps)
			tree.Responses[j] = r
		}
		p.DialogueTrees[i] = tree
	}
	p.Contradictions = slices.Clone(p.Contradictions)
	return p
}
