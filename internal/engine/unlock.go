// Package engine holds the case progression rules.
//
// Reads such as [AvailablePeople] never mutate the case. One-way transitions are explicit functions that take a
// *models.Case the caller owns, which in practice is a fresh [models.Case.Clone].
package engine

import "github.com/myrjola/coldcase/internal/models"

// AvailablePeople returns the people the player can see, in case order.
func AvailablePeople(c *models.Case) []models.Person {
	var people []models.Person
	for _, p := range c.People {
		if personAvailable(c, &p) {
			people = append(people, p)
		}
	}
	return people
}

func personAvailable(c *models.Case, p *models.Person) bool {
	return p.Available || (p.Availability != "" && c.IsAnalyzed(p.Availability))
}

// AvailableEvidence returns the evidence that is not hidden, in case order.
func AvailableEvidence(c *models.Case) []models.Evidence {
	var evidence []models.Evidence
	for _, e := range c.Evidence {
		if evidenceAvailable(c, &e) {
			evidence = append(evidence, e)
		}
	}
	return evidence
}

func evidenceAvailable(c *models.Case, e *models.Evidence) bool {
	return !e.Hidden || (e.UnlockedBy != "" && c.IsAnalyzed(e.UnlockedBy))
}

// IsEvidenceAvailable reports whether evidence id exists and is not hidden.
func IsEvidenceAvailable(c *models.Case, id string) bool {
	e := c.FindEvidence(id)
	return e != nil && evidenceAvailable(c, e)
}

// IsPersonAvailable reports whether person id exists and can be questioned.
func IsPersonAvailable(c *models.Case, id string) bool {
	p := c.FindPerson(id)
	return p != nil && personAvailable(c, p)
}

// Unlocks lists the ids latched by [ApplyUnlocks].
type Unlocks struct {
	People   []string
	Evidence []string
}

// Empty reports whether nothing was latched.
func (u Unlocks) Empty() bool {
	return len(u.People) == 0 && len(u.Evidence) == 0
}

// ApplyUnlocks latches people and evidence whose gating evidence has been analyzed so that they stay visible.
func ApplyUnlocks(c *models.Case) Unlocks {
	var u Unlocks
	for i := range c.People {
		p := &c.People[i]
		if !p.Available && personAvailable(c, p) {
			p.Available = true
			u.People = append(u.People, p.ID)
		}
	}
	for i := range c.Evidence {
		e := &c.Evidence[i]
		if e.Hidden && evidenceAvailable(c, e) {
			e.Hidden = false
			u.Evidence = append(u.Evidence, e.ID)
		}
	}
	return u
}

// PhoneRecordsUnlocked reports whether the phone records can be browsed.
func PhoneRecordsUnlocked(c *models.Case) bool {
	if c.PhoneRecords == nil {
		return false
	}
	return c.PhoneRecords.UnlockedBy == "" || c.IsAnalyzed(c.PhoneRecords.UnlockedBy)
}

// ExamineLocation marks a scene location as examined. It reports false when the location is unknown or was already
// examined.
func ExamineLocation(c *models.Case, locationID string) bool {
	l := c.FindLocation(locationID)
	if l == nil || l.Examined {
		return false
	}
	l.Examined = true
	return true
}

// CollectEvidence picks up available evidence found at an examined location.
func CollectEvidence(c *models.Case, evidenceID string) bool {
	e := c.FindEvidence(evidenceID)
	if e == nil || e.Collected || !evidenceAvailable(c, e) || !foundAtExaminedLocation(c, e) {
		return false
	}
	e.Collected = true
	return true
}

func foundAtExaminedLocation(c *models.Case, e *models.Evidence) bool {
	for _, l := range c.Scene {
		if !l.Examined {
			continue
		}
		if l.ID == e.Location {
			return true
		}
		for _, id := range l.EvidenceIDs {
			if id == e.ID {
				return true
			}
		}
	}
	return false
}
