package server

import (
	"log/slog"
	"net/http"

	"github.com/hydromix/hydromix/pkg/adequacy"
	"github.com/hydromix/hydromix/pkg/log"
	"github.com/hydromix/hydromix/pkg/types"
)

// EvaluateReq is the request type for POST /api/evaluate. Settings are
// optional; when absent the region's stored settings are used.
type EvaluateReq struct {
	Region         string  `json:"region"`
	Year           int     `json:"year"`
	Provider       string  `json:"provider"`
	RenewableShare float64 `json:"renewableShare"`
	WindFraction   float64 `json:"windFraction"`

	Settings *types.SweepSettings `json:"settings,omitempty"`
}

// EvaluateRes is the response type for POST /api/evaluate.
type EvaluateRes struct {
	Region         string  `json:"region"`
	Year           int     `json:"year"`
	RenewableShare float64 `json:"renewableShare"`
	WindFraction   float64 `json:"windFraction"`

	adequacy.CellResult
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EvaluateReq
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

	var set types.SweepSettings
	if req.Settings != nil {
		set = *req.Settings
	} else {
		sv, err := s.getSettingsWithMigration(ctx, req.Region)
		if err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to get settings", slog.Any("error", err))
			writeJSONError(w, "failed to get settings", http.StatusInternalServerError)
			return
		}
		set = sv.SweepSettings
	}
	set.ApplyDefaults()

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

	cell, err := adequacy.Evaluate(ctx, b, req.RenewableShare, req.WindFraction, set)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "evaluation failed", slog.Any("error", err))
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, EvaluateRes{
		Region:         req.Region,
		Year:           req.Year,
		RenewableShare: req.RenewableShare,
		WindFraction:   req.WindFraction,
		CellResult:     cell,
	})
}
