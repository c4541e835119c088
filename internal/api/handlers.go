// Package api exposes the suggestion pipeline, the rename engine, and
// the history log over a small JSON HTTP surface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"nameforge/internal/core"
)

// Renamer is the subset of the application layer the API needs.
type Renamer interface {
	Suggest(ctx context.Context, paths []string, concurrency int, onProgress core.ProgressFunc) ([]core.SuggestionResult, error)
	Apply(ctx context.Context, results []core.SuggestionResult, dryRun bool) (*core.CommitOutcome, error)
	Undo() (*core.UndoOutcome, error)
	History(limit int) ([]*core.RenameBatch, error)
}

// Handler serves the JSON API.
type Handler struct {
	renamer Renamer
	logger  core.Logger
}

// NewHandler creates an API handler on top of the given application layer.
func NewHandler(renamer Renamer, logger core.Logger) *Handler {
	return &Handler{renamer: renamer, logger: logger}
}

type suggestRequest struct {
	Paths       []string `json:"paths"`
	Concurrency int      `json:"concurrency,omitempty"`
}

type suggestResponse struct {
	Results []core.SuggestionResult `json:"results"`
}

type applyRequest struct {
	Results []core.SuggestionResult `json:"results"`
	DryRun  bool                    `json:"dry_run,omitempty"`
}

type applyResponse struct {
	*core.CommitOutcome
	// Error reports a failure that occurred after renames were applied,
	// such as the batch record not being written.
	Error string `json:"error,omitempty"`
}

type historyResponse struct {
	Batches []*core.RenameBatch `json:"batches"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Suggest runs the suggestion pipeline over the submitted paths.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Paths) == 0 {
		writeError(w, http.StatusBadRequest, "paths must not be empty")
		return
	}

	results, err := h.renamer.Suggest(r.Context(), req.Paths, req.Concurrency, nil)
	if err != nil {
		h.logger.Error("suggest request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	for _, res := range results {
		suggestionsTotal.WithLabelValues(string(res.Status)).Inc()
	}
	writeJSON(w, http.StatusOK, suggestResponse{Results: results})
}

// Apply commits the approved results, or plans them when dry_run is set.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	outcome, err := h.renamer.Apply(r.Context(), req.Results, req.DryRun)
	if err != nil && outcome == nil {
		h.logger.Error("apply request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := applyResponse{CommitOutcome: outcome}
	if err != nil {
		// Renames already happened; return them along with the error so
		// the client can see the batch record (and undo-ability) was lost.
		h.logger.Error("apply partially failed", "error", err)
		resp.Error = err.Error()
	}

	if !outcome.DryRun {
		renamesAppliedTotal.Add(float64(outcome.Applied))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Undo reverses the most recent committed batch.
func (h *Handler) Undo(w http.ResponseWriter, _ *http.Request) {
	outcome, err := h.renamer.Undo()
	if err != nil {
		if errors.Is(err, core.ErrNoUndoableBatch) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("undo request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if outcome.Restored > 0 {
		undosTotal.Inc()
	}
	writeJSON(w, http.StatusOK, outcome)
}

// History returns the most recent batches, newest first. The limit query
// parameter defaults to 20.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	batches, err := h.renamer.History(limit)
	if err != nil {
		h.logger.Error("history request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Batches: batches})
}

// Healthz reports process liveness.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
