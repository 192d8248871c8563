package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/myrjola/coldcase/internal/casefile"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/game"
	"github.com/myrjola/coldcase/internal/repositories"
)

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

type appliedResponse struct {
	Applied bool `json:"applied"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	body, _ := json.Marshal(errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write(body)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", method), slog.String("uri", uri), slog.String("reason", msg))
	app.writeJSON(w, r, status, errorResponse{Error: msg})
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

// gameError maps the errors of game commands to responses.
func (app *application) gameError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *casefile.ValidationError
	switch {
	case errors.Is(err, game.ErrNoActiveCase):
		app.clientError(w, r, http.StatusConflict, "no active case, select a case first")
	case errors.Is(err, repositories.ErrCaseNotFound):
		app.clientError(w, r, http.StatusNotFound, "case not found")
	case errors.As(err, &validationErr):
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "case rejected", slog.Any("problems", validationErr.Problems))
		app.writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{
			Error:    "invalid case",
			Problems: validationErr.Problems,
		})
	case errors.Is(err, casefile.ErrInvalidCase):
		app.clientError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		app.serverError(w, r, err)
	}
}

// applied responds to commands that are silently ignored when their preconditions do not hold.
func (app *application) applied(w http.ResponseWriter, r *http.Request, applied bool, err error) {
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, appliedResponse{Applied: applied})
}
