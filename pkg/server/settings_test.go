package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hydromix/hydromix/pkg/storage/storagemock"
	"github.com/hydromix/hydromix/pkg/types"
)

func TestHandleGetSettings(t *testing.T) {
	t.Run("migrates empty settings to defaults", func(t *testing.T) {
		db := &storagemock.MockDatabase{}
		db.On("GetSweepSettings", mock.Anything, "testland").Return(types.SweepSettings{}, 0, nil)
		db.On("SetSweepSettings", mock.Anything, "testland", mock.AnythingOfType("types.SweepSettings"), types.CurrentSweepSettingsVersion).Return(nil)

		srv := newTestServer(t, db, nil)
		rec := getPath(t, srv.setupHandler(), "/api/settings?region=testland")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res SettingsRes
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, types.CurrentSweepSettingsVersion, res.Version)
		assert.Len(t, res.Settings.RenewableShares, 21)
		assert.Equal(t, 8.0, res.Settings.HoursAtFullConsumption)
		db.AssertExpectations(t)
	})

	t.Run("current version untouched", func(t *testing.T) {
		db := &storagemock.MockDatabase{}
		set := testSettings()
		db.On("GetSweepSettings", mock.Anything, "testland").Return(set, types.CurrentSweepSettingsVersion, nil)

		srv := newTestServer(t, db, nil)
		rec := getPath(t, srv.setupHandler(), "/api/settings?region=testland")
		require.Equal(t, http.StatusOK, rec.Code)

		var res SettingsRes
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, set.RenewableShares, res.Settings.RenewableShares)
		db.AssertNotCalled(t, "SetSweepSettings", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing region", func(t *testing.T) {
		srv := newTestServer(t, &storagemock.MockDatabase{}, nil)
		rec := getPath(t, srv.setupHandler(), "/api/settings")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleUpdateSettings(t *testing.T) {
	t.Run("saves valid settings", func(t *testing.T) {
		db := &storagemock.MockDatabase{}
		set := testSettings()
		db.On("SetSweepSettings", mock.Anything, "testland", set, types.CurrentSweepSettingsVersion).Return(nil)

		srv := newTestServer(t, db, nil)
		rec := postJSON(t, srv.setupHandler(), "/api/settings", UpdateSettingsReq{
			Region:   "testland",
			Settings: set,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		db.AssertExpectations(t)
	})

	t.Run("rejects invalid axes", func(t *testing.T) {
		srv := newTestServer(t, &storagemock.MockDatabase{}, nil)
		set := testSettings()
		set.WindFractions = []float64{0.5, 0.5}
		rec := postJSON(t, srv.setupHandler(), "/api/settings", UpdateSettingsReq{
			Region:   "testland",
			Settings: set,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing region", func(t *testing.T) {
		srv := newTestServer(t, &storagemock.MockDatabase{}, nil)
		rec := postJSON(t, srv.setupHandler(), "/api/settings", UpdateSettingsReq{Settings: testSettings()})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
