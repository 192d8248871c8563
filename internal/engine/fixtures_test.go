package engine_test

import "github.com/myrjola/coldcase/internal/models"

// newFixture builds a small hand-made case exercising every unlock path.
func newFixture() *models.Case {
	limit := 60
	return &models.Case{
		ID:        "case-fixture",
		Title:     "The Midnight Composer",
		Type:      "murder",
		Victim:    "Viktor",
		TimeLimit: &limit,
		Scene: []models.Location{
			{ID: "studio", Name: "Studio", EvidenceIDs: []string{"wine-glass", "security-footage"}},
			{ID: "bedroom", Name: "Bedroom", EvidenceIDs: []string{"locked-drawer", "hidden-will"}},
		},
		Evidence: []models.Evidence{
			{ID: "wine-glass", Name: "Wine glass", Location: "studio", TimeToProcess: 10},
			{ID: "security-footage", Name: "Security footage", Location: "studio", TimeToProcess: 5},
			{ID: "locked-drawer", Name: "Locked drawer", Location: "bedroom", TimeToProcess: 3},
			{
				ID: "hidden-will", Name: "Hidden will", Location: "bedroom", TimeToProcess: 4,
				Hidden: true, UnlockedBy: "locked-drawer",
			},
			{ID: "ghost", Name: "Ghost", Hidden: true},
		},
		People: []models.Person{
			{
				ID: "elena", Name: "Elena", Type: models.PersonTypeSuspect, Available: true,
				DialogueTrees: []models.DialogueTree{
					{ID: "tree1", Question: "Where were you?", Responses: []models.DialogueResponse{{ID: "r1"}}},
					{
						ID: "tree2", Question: "Explain the footage.", RequiresEvidence: "security-footage",
						Responses: []models.DialogueResponse{{ID: "r1"}, {ID: "r2"}},
					},
					{
						ID: "tree3", Question: "Marcus says otherwise.",
						RequiresPerson: "marcus", RequiresResponse: "alibi-r1",
						Responses: []models.DialogueResponse{{ID: "r1"}},
					},
					{ID: "tree4", Question: "Who?", RequiresEvidence: "no-such-evidence"},
				},
				Contradictions: []models.Contradiction{
					{ID: "c1", Response1: "tree1-r1", Response2: "tree2-r1", Description: "She was in two places."},
				},
			},
			{
				ID: "marcus", Name: "Marcus", Type: models.PersonTypeWitness, Availability: "wine-glass",
				DialogueTrees: []models.DialogueTree{
					{ID: "alibi", Question: "Where was Elena?", Responses: []models.DialogueResponse{{ID: "r1"}}},
				},
			},
			{ID: "nobody", Name: "Nobody", Type: models.PersonTypeWitness, Availability: "missing"},
		},
		PhoneRecords: &models.PhoneRecords{UnlockedBy: "wine-glass"},
		BreakingNews: []models.BreakingNews{
			{ID: "n1", TriggerCondition: "evidence-analyzed-3", Headline: "Lab confirms poison"},
			{ID: "n2", TriggerCondition: "person-interviewed-1", Headline: "Composer's muse questioned"},
			{ID: "n3", TriggerCondition: "moon-is-full", Headline: "Never"},
		},
		Solution: models.Solution{Culprit: "elena", Motive: "Inheritance", Method: "Poison"},
	}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func personIDs(people []models.Person) []string {
	return ids(people, func(p models.Person) string { return p.ID })
}

func evidenceIDs(evidence []models.Evidence) []string {
	return ids(evidence, func(e models.Evidence) string { return e.ID })
}

func treeIDs(trees []models.DialogueTree) []string {
	return ids(trees, func(t models.DialogueTree) string { return t.ID })
}

// collectAll marks every evidence item as collected so lab tests can focus on scheduling.
func collectAll(c *models.Case) {
	for i := range c.Evidence {
		c.Evidence[i].Collected = true
	}
}
