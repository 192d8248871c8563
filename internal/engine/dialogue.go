package engine

import "github.com/myrjola/coldcase/internal/models"

// AskableTrees returns the dialogue trees of p that the player may ask now, preserving the person's tree order.
func AskableTrees(p *models.Person, c *models.Case) []models.DialogueTree {
	var trees []models.DialogueTree
	for _, tree := range p.DialogueTrees {
		if treeAskable(&tree, c) {
			trees = append(trees, tree)
		}
	}
	return trees
}

// AskedTrees returns the trees that have already been asked, preserving the person's tree order.
func AskedTrees(p *models.Person) []models.DialogueTree {
	var trees []models.DialogueTree
	for _, tree := range p.DialogueTrees {
		if tree.Asked {
			trees = append(trees, tree)
		}
	}
	return trees
}

// IsAskable reports whether tree treeID of p can be asked now.
func IsAskable(p *models.Person, c *models.Case, treeID string) bool {
	tree := p.FindTree(treeID)
	return tree != nil && treeAskable(tree, c)
}

func treeAskable(tree *models.DialogueTree, c *models.Case) bool {
	if tree.Asked {
		return false
	}
	if tree.RequiresEvidence != "" && !c.IsAnalyzed(tree.RequiresEvidence) {
		return false
	}
	if tree.RequiresPerson != "" && tree.RequiresResponse != "" {
		other := c.FindPerson(tree.RequiresPerson)
		if other == nil {
			return false
		}
		required := other.FindTreeByResponseRef(tree.RequiresResponse)
		if required == nil || !required.Asked {
			return false
		}
	}
	return true
}

// AskQuestion marks the tree as asked and the person as interviewed. Unknown or already asked trees are a no-op.
func AskQuestion(p *models.Person, treeID string) bool {
	tree := p.FindTree(treeID)
	if tree == nil || tree.Asked {
		return false
	}
	tree.Asked = true
	p.Interviewed = true
	return true
}

// HasAskedResponse reports whether ref addresses a response of a tree p has already been asked.
func HasAskedResponse(p *models.Person, ref string) bool {
	tree := p.FindTreeByResponseRef(ref)
	return tree != nil && tree.Asked
}
