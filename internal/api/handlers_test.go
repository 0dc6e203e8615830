package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mongrate/mongrate/internal/api"
	"github.com/mongrate/mongrate/internal/models"
	"github.com/mongrate/mongrate/internal/pipeline"
	"github.com/mongrate/mongrate/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClient struct{}

func (c *fixedClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return "a fixed narrative", nil
}

func newTestRouter(t *testing.T) (http.Handler, *state.StateManager) {
	t.Helper()
	manager := state.NewStateManager(state.NewMemoryStore())
	p := pipeline.New(&fixedClient{}, pipeline.WithRecorder(manager))
	handler := api.NewMigrationHandler(p, manager, t.TempDir())
	return api.SetupRoutes(handler), manager
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestStartMigration(t *testing.T) {
	router, manager := newTestRouter(t)

	body, err := json.Marshal(models.SampleSchema())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/migrations", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		RunID     string `json:"run_id"`
		OutputDir string `json:"output_dir"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.RunID)
	assert.Contains(t, resp.OutputDir, resp.RunID)

	// The run executes in the background; wait for it to land in the store.
	require.Eventually(t, func() bool {
		run, err := manager.GetRun(context.Background(), resp.RunID)
		return err == nil && run.Status == models.RunStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
}

func TestStartMigrationRejectsBadInput(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/migrations", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/migrations", bytes.NewBufferString(`{"database_name": ""}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "schema validation")
}

func TestGetMigration(t *testing.T) {
	router, manager := newTestRouter(t)

	run := &models.PipelineRun{
		ID:        "run-1",
		Schema:    models.SampleSchema(),
		Status:    models.RunStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, manager.RunStarted(context.Background(), run))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/migrations/run-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.PipelineRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, "ecommerce_db", got.Schema.DatabaseName)
}

func TestGetMigrationNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/migrations/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListMigrations(t *testing.T) {
	router, manager := newTestRouter(t)

	base := time.Now().UTC()
	for i, id := range []string{"run-a", "run-b"} {
		require.NoError(t, manager.RunStarted(context.Background(), &models.PipelineRun{
			ID:        id,
			Schema:    models.SampleSchema(),
			Status:    models.RunStatusCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/migrations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Runs []models.PipelineRun `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Runs, 2)
	assert.Equal(t, "run-b", resp.Runs[0].ID)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/migrations?offset=bad", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMigrationsRejectsNegativePaging(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, target := range []string{
		"/api/v1/migrations?offset=-1",
		"/api/v1/migrations?limit=-1",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}
