package main

import (
	"encoding/json"
	"net/http"

	"github.com/myrjola/coldcase/internal/engine"
	"github.com/myrjola/coldcase/internal/game"
	"github.com/myrjola/coldcase/internal/models"
)

func (app *application) viewCase(w http.ResponseWriter, r *http.Request) {
	view, err := app.game.View()
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, view)
}

func (app *application) viewBoard(w http.ResponseWriter, r *http.Request) {
	board, err := app.game.Board()
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, board)
}

func (app *application) examineLocation(w http.ResponseWriter, r *http.Request) {
	applied, err := app.game.ExamineLocation(r.Context(), r.PathValue("locationID"))
	app.applied(w, r, applied, err)
}

func (app *application) collectEvidence(w http.ResponseWriter, r *http.Request) {
	applied, err := app.game.CollectEvidence(r.Context(), r.PathValue("evidenceID"))
	app.applied(w, r, applied, err)
}

func (app *application) analyzeEvidence(w http.ResponseWriter, r *http.Request) {
	applied, err := app.game.SendEvidenceToLab(r.Context(), r.PathValue("evidenceID"))
	app.applied(w, r, applied, err)
}

type personResponse struct {
	Person    game.PersonView `json:"person"`
	Selection []string        `json:"selection"`
}

func (app *application) viewPerson(w http.ResponseWriter, r *http.Request) {
	personID := r.PathValue("personID")
	view, ok, err := app.game.PersonView(personID)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	if !ok {
		app.notFound(w, r)
		return
	}
	app.writeJSON(w, r, http.StatusOK, personResponse{
		Person:    view,
		Selection: app.selection(r.Context(), personID),
	})
}

func (app *application) askQuestion(w http.ResponseWriter, r *http.Request) {
	applied, err := app.game.AskQuestion(r.Context(), r.PathValue("personID"), r.PathValue("treeID"))
	app.applied(w, r, applied, err)
}

type selectionResponse struct {
	Applied   bool     `json:"applied"`
	Selection []string `json:"selection"`
}

// selectResponse toggles a response in the contradiction selection of the session.
func (app *application) selectResponse(w http.ResponseWriter, r *http.Request) {
	var (
		ctx      = r.Context()
		personID = r.PathValue("personID")
		ref      = r.PathValue("responseRef")
	)
	selectable, err := app.game.SelectableResponse(personID, ref)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	selection := app.selection(ctx, personID)
	if !selectable {
		app.writeJSON(w, r, http.StatusOK, selectionResponse{Selection: selection})
		return
	}
	toggled := selection.Toggle(ref)
	app.putSelection(ctx, personID, toggled)
	app.writeJSON(w, r, http.StatusOK, selectionResponse{
		Applied:   len(toggled) != len(selection),
		Selection: toggled,
	})
}

type contradictionResponse struct {
	Applied       bool                  `json:"applied"`
	Caught        bool                  `json:"caught"`
	Contradiction *models.Contradiction `json:"contradiction,omitempty"`
}

// checkContradiction checks the selection of the session. A complete selection is cleared whatever the outcome.
func (app *application) checkContradiction(w http.ResponseWriter, r *http.Request) {
	var (
		ctx      = r.Context()
		personID = r.PathValue("personID")
	)
	selection := app.selection(ctx, personID)
	if !selection.Complete() {
		app.writeJSON(w, r, http.StatusOK, contradictionResponse{})
		return
	}
	contradiction, err := app.game.CheckContradiction(ctx, personID, selection)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.putSelection(ctx, personID, engine.Selection{})
	app.writeJSON(w, r, http.StatusOK, contradictionResponse{
		Applied:       true,
		Caught:        contradiction != nil,
		Contradiction: contradiction,
	})
}

type accusationRequest struct {
	Culprit string `json:"culprit"`
}

func (app *application) submitAccusation(w http.ResponseWriter, r *http.Request) {
	var req accusationRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)) //nolint:mnd // 1 KiB
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil || req.Culprit == "" {
		app.clientError(w, r, http.StatusBadRequest, `expected {"culprit": "<person id>"}`)
		return
	}
	result, err := app.game.SubmitAccusation(r.Context(), req.Culprit)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}

func (app *application) controlTimer(w http.ResponseWriter, r *http.Request) {
	var (
		ctx     = r.Context()
		applied bool
		err     error
	)
	switch action := r.PathValue("action"); action {
	case "start":
		applied, err = app.game.StartTimer(ctx)
	case "resume":
		applied, err = app.game.ResumeTimer(ctx)
	case "pause":
		applied, err = app.game.PauseTimer(ctx)
	case "stop":
		applied, err = app.game.StopTimer(ctx)
	default:
		app.clientError(w, r, http.StatusNotFound, "unknown timer action "+action)
		return
	}
	app.applied(w, r, applied, err)
}

func (app *application) markNewsRead(w http.ResponseWriter, r *http.Request) {
	applied, err := app.game.MarkNewsRead(r.Context())
	app.applied(w, r, applied, err)
}
