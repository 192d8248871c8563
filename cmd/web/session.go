package main

import (
	"context"
	"encoding/gob"

	"github.com/myrjola/coldcase/internal/engine"
)

type sessionKey string

const selectionSessionKey = sessionKey("contradictionSelection")

// contradictionSelection is the player's pick of contradicting responses. It belongs to one person at a time.
type contradictionSelection struct {
	PersonID string
	Refs     []string
}

func init() {
	gob.Register(contradictionSelection{})
}

// selection returns the responses of personID the player has selected.
func (app *application) selection(ctx context.Context, personID string) engine.Selection {
	stored, ok := app.sessionManager.Get(ctx, string(selectionSessionKey)).(contradictionSelection)
	if !ok || stored.PersonID != personID || stored.Refs == nil {
		return engine.Selection{}
	}
	return engine.Selection(stored.Refs)
}

func (app *application) putSelection(ctx context.Context, personID string, selection engine.Selection) {
	app.sessionManager.Put(ctx, string(selectionSessionKey), contradictionSelection{
		PersonID: personID,
		Refs:     []string(selection),
	})
}

func (app *application) clearSelection(ctx context.Context) {
	app.sessionManager.Remove(ctx, string(selectionSessionKey))
}
