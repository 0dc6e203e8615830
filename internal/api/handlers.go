package api

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mongrate/mongrate/internal/artifacts"
	"github.com/mongrate/mongrate/internal/logger"
	"github.com/mongrate/mongrate/internal/models"
	"github.com/mongrate/mongrate/internal/pipeline"
	"github.com/mongrate/mongrate/internal/state"
)

type MigrationHandler struct {
	pipeline  *pipeline.Pipeline
	manager   *state.StateManager
	outputDir string
}

func NewMigrationHandler(p *pipeline.Pipeline, manager *state.StateManager, outputDir string) *MigrationHandler {
	return &MigrationHandler{
		pipeline:  p,
		manager:   manager,
		outputDir: outputDir,
	}
}

type startMigrationResponse struct {
	RunID     string `json:"run_id"`
	Message   string `json:"message"`
	OutputDir string `json:"output_dir"`
}

// StartMigration validates the posted schema, kicks off a pipeline run in the
// background and returns its ID. Stage failures never fail the run, so the
// only client-visible errors are malformed input.
func (h *MigrationHandler) StartMigration(w http.ResponseWriter, r *http.Request) {
	var schema models.SchemaDescription
	if err := json.NewDecoder(r.Body).Decode(&schema); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := schema.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	runID := uuid.New().String()
	runDir := filepath.Join(h.outputDir, runID)

	go func() {
		run, err := h.pipeline.RunWithID(context.Background(), runID, &schema)
		if err != nil {
			logger.Log.Error("pipeline run failed", "run_id", runID, "error", err)
			return
		}
		if err := artifacts.NewWriter(runDir).Write(run); err != nil {
			logger.Log.Error("artifact write failed", "run_id", runID, "error", err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(startMigrationResponse{
		RunID:     runID,
		Message:   "Migration pipeline started",
		OutputDir: runDir,
	})
}

func (h *MigrationHandler) GetMigration(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["runID"]

	run, err := h.manager.GetRun(r.Context(), runID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

func (h *MigrationHandler) ListMigrations(w http.ResponseWriter, r *http.Request) {
	offset := 0
	limit := 50

	if v := r.URL.Query().Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			http.Error(w, "offset must be a non-negative integer", http.StatusBadRequest)
			return
		}
		offset = parsed
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	runs, err := h.manager.ListRuns(r.Context(), offset, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"runs": runs})
}

func (h *MigrationHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
