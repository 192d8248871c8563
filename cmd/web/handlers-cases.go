package main

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/myrjola/coldcase/internal/casefile"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/logging"
)

const maxCaseFileBytes = 1 << 20

func (app *application) listCases(w http.ResponseWriter, r *http.Request) {
	cases, err := app.game.Cases(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, cases)
}

// importFormat picks the case file format from the format query parameter or the Content-Type header.
func importFormat(r *http.Request) (casefile.Format, error) {
	if format := r.URL.Query().Get("format"); format != "" {
		return casefile.ParseFormat(format)
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return casefile.FormatYAML, nil
	}
	return casefile.FormatJSON, nil
}

func (app *application) importCase(w http.ResponseWriter, r *http.Request) {
	format, err := importFormat(r)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCaseFileBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			app.clientError(w, r, http.StatusRequestEntityTooLarge, "case file too large")
			return
		}
		app.clientError(w, r, http.StatusBadRequest, "could not read case file")
		return
	}
	summary, err := app.game.ImportCase(r.Context(), data, format)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, summary)
}

func (app *application) selectCase(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")
	ctx := logging.WithCase(r.Context(), caseID)
	if err := app.game.SelectCase(ctx, caseID); err != nil {
		app.gameError(w, r, err)
		return
	}
	app.clearSelection(ctx)
	app.viewCase(w, r.WithContext(ctx))
}

func (app *application) exitCase(w http.ResponseWriter, r *http.Request) {
	if err := app.game.ExitCase(r.Context()); err != nil {
		app.gameError(w, r, err)
		return
	}
	app.clearSelection(r.Context())
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, "cleared contradiction selection")
	app.writeJSON(w, r, http.StatusOK, appliedResponse{Applied: true})
}
