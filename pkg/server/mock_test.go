package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/hydromix/hydromix/pkg/bundle"
	"github.com/hydromix/hydromix/pkg/storage/storagemock"
	"github.com/hydromix/hydromix/pkg/types"
)

type mockProvider struct {
	mock.Mock
}

var _ bundle.Provider = (*mockProvider)(nil)

func (m *mockProvider) Bundle(ctx context.Context, region string, year int) (types.Bundle, error) {
	args := m.Called(ctx, region, year)
	if len(args) > 0 {
		return args.Get(0).(types.Bundle), args.Error(1)
	}
	return types.Bundle{}, nil
}

func (m *mockProvider) Describe() string {
	return "fixture bundles for handler tests"
}

func (m *mockProvider) Validate() error {
	args := m.Called()
	return args.Error(0)
}

// newTestServer returns a Server wired to the given mocks with auth bypassed.
func newTestServer(t *testing.T, db *storagemock.MockDatabase, prov *mockProvider) *Server {
	t.Helper()
	m := bundle.NewMap()
	if prov != nil {
		m.SetProvider("test", prov)
	}
	return &Server{
		providers:  m,
		storage:    db,
		bypassAuth: true,
		serverName: "hydromix-test",
	}
}

// serverBundle builds a full-year constant bundle that passes validation.
func serverBundle(t *testing.T, region string, year int) types.Bundle {
	t.Helper()
	n := types.HoursInYear(year)
	full := func(v float64) types.Series {
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = v
		}
		return types.NewSeries(year, vals)
	}
	return types.Bundle{
		Region:                             region,
		Year:                               year,
		WindCapacityFactor:                 full(0.4),
		SolarCapacityFactor:                full(0.2),
		DemandMW:                           full(1000),
		HydroInflowMWH:                     full(100),
		ConventionalHydroGenerationMW:      full(100),
		PumpedStorageGenerationMW:          full(20),
		PumpedStorageConsumptionMW:         full(5),
		RunOfRiverGenerationMW:             full(30),
		ReservoirFillingLevelMWH:           full(5000),
		ConventionalHydroCapacityMW:        500,
		PumpedStorageGenerationCapacityMW:  100,
		PumpedStorageConsumptionCapacityMW: 80,
		RunOfRiverCapacityMW:               50,
	}
}

// testSettings returns small valid sweep settings at the current version.
func testSettings() types.SweepSettings {
	s := types.SweepSettings{
		RenewableShares: []float64{1, 2},
		WindFractions:   []float64{0, 0.5, 1},
		UseActualHydro:  true,
	}
	s.ApplyDefaults()
	return s
}
