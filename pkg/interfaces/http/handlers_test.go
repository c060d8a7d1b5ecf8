package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/procureplan/pkg/application/dto"
	"github.com/vsinha/procureplan/pkg/application/services/critique"
	"github.com/vsinha/procureplan/pkg/application/services/orchestration"
	testhelpers "github.com/vsinha/procureplan/pkg/application/services/testing"
	"github.com/vsinha/procureplan/pkg/domain/entities"
	"github.com/vsinha/procureplan/pkg/infrastructure/events"
	"github.com/vsinha/procureplan/pkg/infrastructure/llm"
	"github.com/vsinha/procureplan/pkg/infrastructure/logging"
	"github.com/vsinha/procureplan/pkg/infrastructure/repositories/memory"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	orchestrator, err := orchestration.NewPlanningOrchestrator(
		orchestration.DefaultOptions(),
		memory.NewPlanRunRepository(),
		events.NewInMemoryEventStore(logging.Discard()),
		critique.NewCritic(llm.NewMockProvider()),
		logging.Discard(),
	)
	require.NoError(t, err)
	return NewRouter(NewApp(orchestrator, logging.Discard()))
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	rr := do(t, setupRouter(t), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
	assert.Equal(t, map[string]bool{"ok": true}, decodeBody[map[string]bool](t, rr))
}

func TestRequestIDPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rr := httptest.NewRecorder()
	setupRouter(t).ServeHTTP(rr, req)

	assert.Equal(t, "req-123", rr.Header().Get("X-Request-Id"))
}

func TestParseGoal(t *testing.T) {
	rr := do(t, setupRouter(t), http.MethodPost, "/goals/parse", map[string]string{
		"goal_text": "Keep service at 97% with £8,000/month budget; focus on supplies and food; exclude Supplier X",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	goal := decodeBody[entities.Goal](t, rr)
	assert.Equal(t, 8000.0, goal.MonthlyBudgetGBP)
	assert.InDelta(t, 0.97, goal.ServiceLevelTarget, 1e-9)
	assert.Contains(t, goal.Categories, "supplies")
	assert.Contains(t, goal.Categories, "food")
	assert.Contains(t, goal.Excludes, "Supplier X")
}

func TestParseGoal_Errors(t *testing.T) {
	h := setupRouter(t)

	rr := do(t, h, http.MethodPost, "/goals/parse", map[string]string{"goal_text": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", decodeBody[jsonError](t, rr).Error)

	rr = do(t, h, http.MethodPost, "/goals/parse", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_json", decodeBody[jsonError](t, rr).Error)

	rr = do(t, h, http.MethodGet, "/goals/parse", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestGeneratePlan_ThreeOptions(t *testing.T) {
	rr := do(t, setupRouter(t), http.MethodPost, "/plan/generate", map[string]any{
		"goal": map[string]any{
			"monthly_budget_gbp":   8000,
			"service_level_target": 0.97,
			"categories":           []string{"supplies"},
			"excludes":             []string{},
			"constraints":          []any{},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	options := decodeBody[[]entities.PlanOption](t, rr)
	require.Len(t, options, 3)
	assert.Equal(t, 7200.0, options[0].EstimatedMonthlyCost)
	assert.Equal(t, 8000.0, options[1].EstimatedMonthlyCost)
	assert.Equal(t, 8800.0, options[2].EstimatedMonthlyCost)
}

func TestGeneratePlan_InvalidGoal(t *testing.T) {
	rr := do(t, setupRouter(t), http.MethodPost, "/plan/generate", map[string]any{
		"goal": map[string]any{"monthly_budget_gbp": -1, "service_level_target": 0.9},
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeBody[jsonError](t, rr).Details, "monthly_budget_gbp")
}

func TestQuestionsNext(t *testing.T) {
	h := setupRouter(t)

	rr := do(t, h, http.MethodPost, "/questions/next", map[string]bool{})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]entities.VoIQuestion](t, rr), 3)

	rr = do(t, h, http.MethodPost, "/questions/next", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]entities.VoIQuestion](t, rr), 3)

	rr = do(t, h, http.MethodPost, "/questions/next", map[string]bool{"sales.csv": true})
	require.Equal(t, http.StatusOK, rr.Code)
	questions := decodeBody[[]entities.VoIQuestion](t, rr)
	require.Len(t, questions, 2)
	assert.Equal(t, entities.InputOffers, questions[0].InputID)
	assert.Equal(t, entities.InputInventory, questions[1].InputID)
	assert.Equal(t, "Please provide offers.csv", questions[0].Prompt)
}

func TestRunPlan_AndFetchRun(t *testing.T) {
	h := setupRouter(t)

	rr := do(t, h, http.MethodPost, "/plan/run", runPlanRequest{
		Goal:   entities.Goal{MonthlyBudgetGBP: 8000, ServiceLevelTarget: 0.95, Excludes: []string{"SupplierC"}},
		Tables: testhelpers.BuildSampleTables(),
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	result := decodeBody[dto.PipelineResult](t, rr)
	require.NotEmpty(t, result.RunID)
	assert.Len(t, result.Allocation, 2)
	require.Len(t, result.Shortages, 1)
	assert.Equal(t, entities.ShortagePolicyBanned, result.Shortages[0].Reason)

	rr = do(t, h, http.MethodGet, "/plans/"+result.RunID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	run := decodeBody[entities.PlanRun](t, rr)
	assert.Equal(t, result.Summary, run.Summary)

	rr = do(t, h, http.MethodGet, "/plans/"+result.RunID+"/evidence", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	graph := decodeBody[entities.ProvenanceGraph](t, rr)
	assert.True(t, graph.NodeIDs()["plan"])

	rr = do(t, h, http.MethodGet, "/plans/"+result.RunID+"/events", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rr), 5)

	rr = do(t, h, http.MethodGet, "/plans", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]runListing](t, rr), 1)

	rr = do(t, h, http.MethodPost, "/plans/"+result.RunID+"/critique", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"prices stable"}, decodeBody[entities.Critique](t, rr).Assumptions)
}

func TestAllEvents(t *testing.T) {
	h := setupRouter(t)

	rr := do(t, h, http.MethodGet, "/events", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeBody[[]map[string]any](t, rr))

	var runIDs []string
	for i := 0; i < 2; i++ {
		rr = do(t, h, http.MethodPost, "/plan/run", runPlanRequest{
			Goal:   entities.Goal{MonthlyBudgetGBP: 8000, ServiceLevelTarget: 0.95},
			Tables: testhelpers.BuildSampleTables(),
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		runIDs = append(runIDs, decodeBody[dto.PipelineResult](t, rr).RunID)
	}

	rr = do(t, h, http.MethodGet, "/events", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	all := decodeBody[[]map[string]any](t, rr)
	require.Len(t, all, 8)
	assert.Equal(t, runIDs[0], all[0]["stream_id"])
	assert.Equal(t, runIDs[1], all[7]["stream_id"])

	rr = do(t, h, http.MethodGet, "/events?from=6", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	tail := decodeBody[[]map[string]any](t, rr)
	require.Len(t, tail, 2)
	assert.Equal(t, runIDs[1], tail[0]["stream_id"])

	for _, from := range []string{"-1", "x"} {
		rr = do(t, h, http.MethodGet, "/events?from="+from, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}
}

func TestRunPlan_InvalidRows(t *testing.T) {
	tables := testhelpers.BuildSampleTables()
	tables.Offers[1].UnitPrice = -1

	rr := do(t, setupRouter(t), http.MethodPost, "/plan/run", runPlanRequest{
		Goal:   entities.Goal{MonthlyBudgetGBP: 100, ServiceLevelTarget: 0.9},
		Tables: tables,
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeBody[jsonError](t, rr).Details, "offers row 2")
}

func TestRunPlan_InvalidGoal(t *testing.T) {
	rr := do(t, setupRouter(t), http.MethodPost, "/plan/run", runPlanRequest{
		Goal: entities.Goal{MonthlyBudgetGBP: 100, ServiceLevelTarget: 2},
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", decodeBody[jsonError](t, rr).Error)
}

func TestPlans_NotFound(t *testing.T) {
	h := setupRouter(t)

	for _, path := range []string{"/plans/missing", "/plans/missing/evidence", "/plans/missing/events"} {
		rr := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
	}
	rr := do(t, h, http.MethodPost, "/plans/missing/critique", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestIngestFeedback(t *testing.T) {
	h := setupRouter(t)

	rr := do(t, h, http.MethodPost, "/feedback/ingest", map[string]any{
		"plan_name": "balanced",
		"kpis":      []map[string]any{{"name": "service_level", "value": 0.96}},
		"notes":     "ran out of cups",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody[map[string]any](t, rr)
	assert.Equal(t, true, body["ok"])
	received := body["received"].(map[string]any)
	assert.Equal(t, "balanced", received["plan_name"])

	rr = do(t, h, http.MethodPost, "/feedback/ingest", map[string]any{"kpis": []any{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
