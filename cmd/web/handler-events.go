package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/myrjola/coldcase/internal/errors"
)

// caseEvents streams the clock's tick reports as server-sent events until the client goes away or the clock stops.
func (app *application) caseEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		app.serverError(w, r, errors.Wrap(err, "clear write deadline"))
		return
	}

	reports, unsubscribe := app.game.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "flush event stream", errors.SlogError(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case report, ok := <-reports:
			if !ok {
				return
			}
			data, err := json.Marshal(report)
			if err != nil {
				app.logger.LogAttrs(r.Context(), slog.LevelError, "marshal tick report", errors.SlogError(err))
				return
			}
			if _, err = fmt.Fprintf(w, "event: tick\ndata: %s\n\n", data); err != nil {
				return
			}
			if err = rc.Flush(); err != nil {
				return
			}
		}
	}
}
