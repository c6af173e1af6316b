package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hydromix/hydromix/pkg/adequacy"
	"github.com/hydromix/hydromix/pkg/log"
	"github.com/hydromix/hydromix/pkg/types"
)

// SweepReq is the request type for POST /api/sweep.
type SweepReq struct {
	Region   string `json:"region"`
	Year     int    `json:"year"`
	Provider string `json:"provider"`
}

// SweepRes is the response type for POST /api/sweep: the persisted run,
// surface included.
type SweepRes struct {
	Run     types.AdequacyRun `json:"run"`
	Surface adequacy.Surface  `json:"surface"`
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SweepReq
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Region == "" || req.Year == 0 {
		writeJSONError(w, "region and year are required", http.StatusBadRequest)
		return
	}
	if req.Provider == "" {
		req.Provider = "stored"
	}

	sv, err := s.getSettingsWithMigration(ctx, req.Region)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get settings", slog.Any("error", err))
		writeJSONError(w, "failed to get settings", http.StatusInternalServerError)
		return
	}

	provider, err := s.providers.Provider(req.Provider)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := provider.Bundle(ctx, req.Region, req.Year)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get bundle",
			slog.String("provider", req.Provider),
			slog.String("region", req.Region),
			slog.Int("year", req.Year),
			slog.Any("error", err),
		)
		writeJSONError(w, "failed to get bundle", http.StatusInternalServerError)
		return
	}

	started := time.Now()
	surface, err := adequacy.Sweep(ctx, b, sv.SweepSettings)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "sweep failed", slog.Any("error", err))
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	duration := time.Since(started)

	now := time.Now().UTC()
	run := types.AdequacyRun{
		ID:         now.Format(time.RFC3339),
		Region:     req.Region,
		Year:       req.Year,
		Provider:   req.Provider,
		Timestamp:  now,
		Settings:   sv.SweepSettings,
		Adequacy:   surface.Adequacy,
		BestMix:    surface.BestMix,
		DurationMS: duration.Milliseconds(),
	}
	if err := s.storage.InsertRun(ctx, req.Region, run); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to persist run", slog.Any("error", err))
		writeJSONError(w, "failed to persist run", http.StatusInternalServerError)
		return
	}

	log.Ctx(ctx).InfoContext(ctx, "sweep finished",
		slog.String("region", req.Region),
		slog.Int("year", req.Year),
		slog.Duration("duration", duration),
		slog.Int("shares", len(surface.RenewableShares)),
		slog.Int("windFractions", len(surface.WindFractions)),
	)
	writeJSON(w, SweepRes{Run: run, Surface: surface})
}
