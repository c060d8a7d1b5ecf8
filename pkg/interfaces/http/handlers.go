package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/vsinha/procureplan/pkg/application/dto"
	"github.com/vsinha/procureplan/pkg/application/services/goals"
	"github.com/vsinha/procureplan/pkg/application/services/orchestration"
	"github.com/vsinha/procureplan/pkg/domain/entities"
	"github.com/vsinha/procureplan/pkg/domain/repositories"
	"github.com/vsinha/procureplan/pkg/infrastructure/llm"
)

const maxBodyBytes = 16 << 20

// App holds the dependencies shared by the handlers
type App struct {
	orchestrator *orchestration.PlanningOrchestrator
	validate     *validator.Validate
	logger       *slog.Logger
}

type goalParseRequest struct {
	GoalText string `json:"goal_text" validate:"required"`
}

type generatePlanRequest struct {
	Goal entities.Goal `json:"goal"`
}

type runPlanRequest struct {
	Goal   entities.Goal `json:"goal"`
	Tables dto.Tables    `json:"tables"`
}

type runListing struct {
	RunID   string               `json:"run_id"`
	Summary entities.PlanSummary `json:"summary"`
	Score   float64              `json:"score"`
}

func NewApp(orchestrator *orchestration.PlanningOrchestrator, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{orchestrator: orchestrator, validate: validator.New(), logger: logger}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (a *App) parseGoalHandler(w http.ResponseWriter, r *http.Request) {
	var req goalParseRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.validate.Struct(req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "goal_text is required")
		return
	}
	writeJSON(w, http.StatusOK, goals.ParseGoal(req.GoalText))
}

func (a *App) generatePlanHandler(w http.ResponseWriter, r *http.Request) {
	var req generatePlanRequest
	if !a.decode(w, r, &req) {
		return
	}
	req.Goal.Normalize()
	if err := a.orchestrator.ValidateGoal(req.Goal); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a.orchestrator.PlanOptions(req.Goal))
}

func (a *App) runPlanHandler(w http.ResponseWriter, r *http.Request) {
	var req runPlanRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.validateTables(req.Tables); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	result, err := a.orchestrator.RunPipeline(r.Context(), req.Goal, req.Tables)
	var verr *entities.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteJSONError(w, http.StatusBadRequest, "validation_error", verr.Error())
		return
	case err != nil:
		a.logger.Error("pipeline_failed", "request_id", RequestIDFromContext(r.Context()), "error", err)
		WriteJSONError(w, http.StatusInternalServerError, "pipeline_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) listPlansHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := a.orchestrator.ListRuns(r.Context())
	if err != nil {
		WriteJSONError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	listing := make([]runListing, 0, len(runs))
	for _, run := range runs {
		listing = append(listing, runListing{RunID: run.RunID, Summary: run.Summary, Score: run.Scored.Score})
	}
	writeJSON(w, http.StatusOK, listing)
}

func (a *App) getPlanHandler(w http.ResponseWriter, r *http.Request) {
	run, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (a *App) getEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	run, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run.Evidence)
}

func (a *App) getEventsHandler(w http.ResponseWriter, r *http.Request) {
	stream, err := a.orchestrator.Events(r.PathValue("id"))
	if err != nil {
		WriteJSONError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	if len(stream) == 0 {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, stream)
}

func (a *App) getAllEventsHandler(w http.ResponseWriter, r *http.Request) {
	from := 0
	if raw := r.URL.Query().Get("from"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteJSONError(w, http.StatusBadRequest, "validation_error", "from must be a non-negative integer")
			return
		}
		from = n
	}
	all, err := a.orchestrator.AllEvents(from)
	if err != nil {
		WriteJSONError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (a *App) critiqueHandler(w http.ResponseWriter, r *http.Request) {
	critique, err := a.orchestrator.Critique(r.Context(), r.PathValue("id"))
	var perr *llm.ProviderError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, critique)
	case errors.Is(err, repositories.ErrRunNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
	case errors.Is(err, orchestration.ErrCritiqueUnavailable):
		WriteJSONError(w, http.StatusServiceUnavailable, "critique_unavailable", err.Error())
	case errors.As(err, &perr):
		WriteJSONError(w, http.StatusBadGateway, "provider_error", perr.Error())
	default:
		WriteJSONError(w, http.StatusInternalServerError, "critique_failed", err.Error())
	}
}

func (a *App) nextQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	provided := map[entities.InputID]bool{}
	if !a.decodeOptional(w, r, &provided) {
		return
	}
	writeJSON(w, http.StatusOK, a.orchestrator.NextQuestions(provided, nil))
}

func (a *App) ingestFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var feedback entities.Feedback
	if !a.decode(w, r, &feedback) {
		return
	}
	if err := a.validate.Struct(feedback); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	a.logger.Info("feedback_received",
		"request_id", RequestIDFromContext(r.Context()),
		"plan_name", feedback.PlanName,
		"kpis", len(feedback.KPIs),
	)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "received": feedback})
}

func (a *App) loadRun(w http.ResponseWriter, r *http.Request) (*entities.PlanRun, bool) {
	run, err := a.orchestrator.GetRun(r.Context(), r.PathValue("id"))
	if errors.Is(err, repositories.ErrRunNotFound) {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return nil, false
	}
	if err != nil {
		WriteJSONError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return nil, false
	}
	return run, true
}

// validateTables checks every row of the inline tables against its struct tags
func (a *App) validateTables(tables dto.Tables) error {
	for i, row := range tables.Sales {
		if err := a.validate.Struct(row); err != nil {
			return &entities.ValidationError{Table: "sales", Row: i + 1, Reason: err.Error()}
		}
	}
	for i, row := range tables.Inventory {
		if err := a.validate.Struct(row); err != nil {
			return &entities.ValidationError{Table: "inventory", Row: i + 1, Reason: err.Error()}
		}
	}
	for i, row := range tables.Offers {
		if err := a.validate.Struct(row); err != nil {
			return &entities.ValidationError{Table: "offers", Row: i + 1, Reason: err.Error()}
		}
	}
	return nil
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

// decodeOptional accepts an empty body or JSON null as the zero value
func (a *App) decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return false
	}
	if len(body) == 0 || string(body) == "null" {
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", fmt.Sprintf("expected an object of input flags: %v", err))
		return false
	}
	return true
}
