package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hydromix/hydromix/pkg/log"
	"github.com/hydromix/hydromix/pkg/types"
)

type settingsWithVersion struct {
	types.SweepSettings
	version int
}

// getSettingsWithMigration loads the region's sweep settings and migrates
// them forward if they were written by an older version. Freshly created
// regions get the defaults.
func (s *Server) getSettingsWithMigration(ctx context.Context, region string) (settingsWithVersion, error) {
	settings, version, err := s.storage.GetSweepSettings(ctx, region)
	if err != nil {
		return settingsWithVersion{}, err
	}
	sv := settingsWithVersion{
		SweepSettings: settings,
		version:       version,
	}

	// Check for migration
	if version < types.CurrentSweepSettingsVersion {
		log.Ctx(ctx).InfoContext(ctx, "migrating settings", slog.Int("oldVersion", version), slog.Int("newVersion", types.CurrentSweepSettingsVersion))
		newSettings, changed, err := types.MigrateSweepSettings(settings, version)
		if err != nil {
			// Log error but return settings as is (best effort)
			log.Ctx(ctx).ErrorContext(ctx, "failed to migrate settings", slog.Int("currentVersion", version), slog.Any("error", err))
		} else if changed {
			sv.SweepSettings = newSettings
			sv.version = types.CurrentSweepSettingsVersion
			if err := s.storage.SetSweepSettings(ctx, region, newSettings, types.CurrentSweepSettingsVersion); err != nil {
				log.Ctx(ctx).ErrorContext(ctx, "failed to save migrated settings", slog.Any("error", err))
				// Return migrated settings even if save failed, so current request works with new defaults
			}
		}
	}

	return sv, nil
}

// SettingsRes is the response type for GET /api/settings.
type SettingsRes struct {
	Region   string              `json:"region"`
	Version  int                 `json:"version"`
	Settings types.SweepSettings `json:"settings"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	region := r.URL.Query().Get("region")
	if region == "" {
		writeJSONError(w, "region is required", http.StatusBadRequest)
		return
	}

	sv, err := s.getSettingsWithMigration(ctx, region)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get settings", slog.Any("error", err))
		writeJSONError(w, "failed to get settings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, SettingsRes{
		Region:   region,
		Version:  sv.version,
		Settings: sv.SweepSettings,
	})
}

// UpdateSettingsReq is the request type for POST /api/settings.
type UpdateSettingsReq struct {
	Region   string              `json:"region"`
	Settings types.SweepSettings `json:"settings"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpdateSettingsReq
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Region == "" {
		writeJSONError(w, "region is required", http.StatusBadRequest)
		return
	}

	req.Settings.ApplyDefaults()
	if err := req.Settings.Validate(); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.storage.SetSweepSettings(ctx, req.Region, req.Settings, types.CurrentSweepSettingsVersion); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to save settings", slog.Any("error", err))
		writeJSONError(w, "failed to save settings", http.StatusInternalServerError)
		return
	}

	log.Ctx(ctx).InfoContext(ctx, "updated settings",
		slog.String("region", req.Region),
		slog.String("updatedBy", s.getUserEmail(r)),
	)
	writeJSON(w, SettingsRes{
		Region:   req.Region,
		Version:  types.CurrentSweepSettingsVersion,
		Settings: req.Settings,
	})
}
