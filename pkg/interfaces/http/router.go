package httpapi

import (
	"net/http"
	"time"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", app.healthHandler)
	mux.HandleFunc("POST /goals/parse", app.parseGoalHandler)
	mux.HandleFunc("POST /plan/generate", app.generatePlanHandler)
	mux.HandleFunc("POST /plan/run", app.runPlanHandler)
	mux.HandleFunc("GET /plans", app.listPlansHandler)
	mux.HandleFunc("GET /plans/{id}", app.getPlanHandler)
	mux.HandleFunc("GET /plans/{id}/evidence", app.getEvidenceHandler)
	mux.HandleFunc("GET /plans/{id}/events", app.getEventsHandler)
	mux.HandleFunc("POST /plans/{id}/critique", app.critiqueHandler)
	mux.HandleFunc("GET /events", app.getAllEventsHandler)
	mux.HandleFunc("POST /questions/next", app.nextQuestionsHandler)
	mux.HandleFunc("POST /feedback/ingest", app.ingestFeedbackHandler)
	return WithRequestID(WithLogging(app.logger, mux))
}

// NewServer wraps the router in an http.Server with conservative timeouts
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
}
