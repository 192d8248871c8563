package engine

import (
	"slices"

	"github.com/myrjola/coldcase/internal/models"
)

const selectionCapacity = 2

// Selection is the set of response references the player has marked as contradicting each other.
type Selection []string

// Toggle returns a new selection with ref added or removed. Adding a third reference is ignored.
func (s Selection) Toggle(ref string) Selection {
	if i := slices.Index(s, ref); i >= 0 {
		return slices.Delete(slices.Clone(s), i, i+1)
	}
	if len(s) >= selectionCapacity {
		return slices.Clone(s)
	}
	return append(slices.Clone(s), ref)
}

// Complete reports whether two responses have been selected.
func (s Selection) Complete() bool {
	return len(s) == selectionCapacity
}

// CheckContradiction looks for a contradiction of p matching the selection in any order and latches it caught.
func CheckContradiction(p *models.Person, selected Selection) (models.Contradiction, bool) {
	if !selected.Complete() || selected[0] == selected[1] {
		return models.Contradiction{}, false
	}
	a, b := selected[0], selected[1]
	for i := range p.Contradictions {
		contradiction := &p.Contradictions[i]
		if (contradiction.Response1 == a && contradiction.Response2 == b) ||
			(contradiction.Response1 == b && contradiction.Response2 == a) {
			contradiction.Caught = true
			return *contradiction, true
		}
	}
	return models.Contradiction{}, false
}
