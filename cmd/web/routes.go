package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthy", app.healthy)

	session := alice.New(app.sessionManager.LoadAndSave, app.noSurf, commonContext)

	mux.Handle("GET /api/csrf-token", session.ThenFunc(app.csrfToken))

	mux.Handle("GET /api/cases", session.ThenFunc(app.listCases))
	mux.Handle("POST /api/cases", session.ThenFunc(app.importCase))
	mux.Handle("POST /api/cases/{caseID}/select", session.ThenFunc(app.selectCase))

	mux.Handle("GET /api/case", session.ThenFunc(app.viewCase))
	mux.Handle("GET /api/case/board", session.ThenFunc(app.viewBoard))
	mux.Handle("POST /api/case/exit", session.ThenFunc(app.exitCase))
	mux.Handle("POST /api/case/locations/{locationID}/examine", session.ThenFunc(app.examineLocation))
	mux.Handle("POST /api/case/evidence/{evidenceID}/collect", session.ThenFunc(app.collectEvidence))
	mux.Handle("POST /api/case/evidence/{evidenceID}/analyze", session.ThenFunc(app.analyzeEvidence))
	mux.Handle("GET /api/case/people/{personID}", session.ThenFunc(app.viewPerson))
	mux.Handle("POST /api/case/people/{personID}/questions/{treeID}/ask", session.ThenFunc(app.askQuestion))
	mux.Handle("POST /api/case/people/{personID}/responses/{responseRef}/select",
		session.ThenFunc(app.selectResponse))
	mux.Handle("POST /api/case/people/{personID}/contradictions/check", session.ThenFunc(app.checkContradiction))
	mux.Handle("POST /api/case/accusation", session.ThenFunc(app.submitAccusation))
	mux.Handle("POST /api/case/timer/{action}", session.ThenFunc(app.controlTimer))
	mux.Handle("POST /api/case/news/read", session.ThenFunc(app.markNewsRead))

	// The event stream is long-lived, so it bypasses the timeout handler and the buffering session middleware.
	root := http.NewServeMux()
	root.HandleFunc("GET /api/case/events", app.caseEvents)
	root.Handle("/", timeoutHandler(mux, defaultTimeout))

	common := alice.New(app.recoverPanic, app.logRequest, secureHeaders)
	return common.Then(root)
}
