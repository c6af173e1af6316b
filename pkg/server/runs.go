package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hydromix/hydromix/pkg/log"
	"github.com/hydromix/hydromix/pkg/storage"
	"github.com/hydromix/hydromix/pkg/types"
)

// ListRunsRes is the response type for GET /api/runs.
type ListRunsRes struct {
	Region string              `json:"region"`
	Runs   []types.AdequacyRun `json:"runs"`
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	region := r.URL.Query().Get("region")
	if region == "" {
		writeJSONError(w, "region is required", http.StatusBadRequest)
		return
	}

	// default to the last 30 days
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)
	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeJSONError(w, "invalid start time", http.StatusBadRequest)
			return
		}
		start = t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeJSONError(w, "invalid end time", http.StatusBadRequest)
			return
		}
		end = t
	}
	if !end.After(start) {
		writeJSONError(w, "end must be after start", http.StatusBadRequest)
		return
	}

	runs, err := s.storage.ListRuns(ctx, region, start, end)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list runs", slog.Any("error", err))
		writeJSONError(w, "failed to list runs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, ListRunsRes{Region: region, Runs: runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	region := r.URL.Query().Get("region")
	runID := r.URL.Query().Get("id")
	if region == "" || runID == "" {
		writeJSONError(w, "region and id are required", http.StatusBadRequest)
		return
	}

	run, err := s.storage.GetRun(ctx, region, runID)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			writeJSONError(w, "run not found", http.StatusNotFound)
			return
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to get run", slog.Any("error", err))
		writeJSONError(w, "failed to get run", http.StatusInternalServerError)
		return
	}

	writeJSON(w, run)
}
