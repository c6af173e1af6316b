package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hydromix/hydromix/pkg/storage/storagemock"
	"github.com/hydromix/hydromix/pkg/types"
)

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleEvaluate(t *testing.T) {
	t.Run("inline settings", func(t *testing.T) {
		db := &storagemock.MockDatabase{}
		prov := &mockProvider{}
		b := serverBundle(t, "testland", 2023)
		prov.On("Bundle", mock.Anything, "testland", 2023).Return(b, nil)

		srv := newTestServer(t, db, prov)
		h := srv.setupHandler()

		set := testSettings()
		rec := postJSON(t, h, "/api/evaluate", EvaluateReq{
			Region:         "testland",
			Year:           2023,
			Provider:       "test",
			RenewableShare: 1,
			WindFraction:   0.5,
			Settings:       &set,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res EvaluateRes
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		// flat demand, flat capacity factors, metered hydro: the share-1
		// scenario covers demand exactly
		assert.InDelta(t, 1.0, res.Adequacy, 1e-9)
		assert.Len(t, res.ResidualMW, b.DemandMW.Len())
		prov.AssertExpectations(t)
	})

	t.Run("stored settings when omitted", func(t *testing.T) {
		db := &storagemock.MockDatabase{}
		prov := &mockProvider{}
		db.On("GetSweepSettings", mock.Anything, "testland").Return(testSettings(), types.CurrentSweepSettingsVersion, nil)
		prov.On("Bundle", mock.Anything, "testland", 2023).Return(serverBundle(t, "testland", 2023), nil)

		srv := newTestServer(t, db, prov)
		rec := postJSON(t, srv.setupHandler(), "/api/evaluate", EvaluateReq{
			Region:         "testland",
			Year:           2023,
			Provider:       "test",
			RenewableShare: 1,
			WindFraction:   0.5,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		db.AssertExpectations(t)
	})

	t.Run("missing region", func(t *testing.T) {
		srv := newTestServer(t, &storagemock.MockDatabase{}, &mockProvider{})
		rec := postJSON(t, srv.setupHandler(), "/api/evaluate", EvaluateReq{Year: 2023})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown provider", func(t *testing.T) {
		srv := newTestServer(t, &storagemock.MockDatabase{}, &mockProvider{})
		set := testSettings()
		rec := postJSON(t, srv.setupHandler(), "/api/evaluate", EvaluateReq{
			Region:   "testland",
			Year:     2023,
			Provider: "nope",
			Settings: &set,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bundle fetch failure", func(t *testing.T) {
		prov := &mockProvider{}
		prov.On("Bundle", mock.Anything, "testland", 2023).Return(types.Bundle{}, fmt.Errorf("feed down"))

		srv := newTestServer(t, &storagemock.MockDatabase{}, prov)
		set := testSettings()
		rec := postJSON(t, srv.setupHandler(), "/api/evaluate", EvaluateReq{
			Region:   "testland",
			Year:     2023,
			Provider: "test",
			Settings: &set,
		})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("invalid scenario", func(t *testing.T) {
		prov := &mockProvider{}
		prov.On("Bundle", mock.Anything, "testland", 2023).Return(serverBundle(t, "testland", 2023), nil)

		srv := newTestServer(t, &storagemock.MockDatabase{}, prov)
		set := testSettings()
		rec := postJSON(t, srv.setupHandler(), "/api/evaluate", EvaluateReq{
			Region:       "testland",
			Year:         2023,
			Provider:     "test",
			WindFraction: 1.5,
			Settings:     &set,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
