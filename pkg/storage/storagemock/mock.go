// Package storagemock provides a testify mock of the storage.Database
// interface.
package storagemock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hydromix/hydromix/pkg/storage"
	"github.com/hydromix/hydromix/pkg/types"
)

type MockDatabase struct {
	mock.Mock
}

var _ storage.Database = (*MockDatabase)(nil)

func (m *MockDatabase) GetSweepSettings(ctx context.Context, region string) (types.SweepSettings, int, error) {
	args := m.Called(ctx, region)
	if len(args) > 0 {
		return args.Get(0).(types.SweepSettings), args.Int(1), args.Error(2)
	}
	return types.SweepSettings{}, 0, nil
}

func (m *MockDatabase) SetSweepSettings(ctx context.Context, region string, settings types.SweepSettings, version int) error {
	args := m.Called(ctx, region, settings, version)
	return args.Error(0)
}

func (m *MockDatabase) InsertRun(ctx context.Context, region string, run types.AdequacyRun) error {
	args := m.Called(ctx, region, run)
	return args.Error(0)
}

func (m *MockDatabase) GetRun(ctx context.Context, region, runID string) (types.AdequacyRun, error) {
	args := m.Called(ctx, region, runID)
	if len(args) > 0 {
		return args.Get(0).(types.AdequacyRun), args.Error(1)
	}
	return types.AdequacyRun{}, nil
}

func (m *MockDatabase) ListRuns(ctx context.Context, region string, start, end time.Time) ([]types.AdequacyRun, error) {
	args := m.Called(ctx, region, start, end)
	if len(args) > 0 {
		return args.Get(0).([]types.AdequacyRun), args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) UpsertBundle(ctx context.Context, bundle types.Bundle, version int) error {
	args := m.Called(ctx, bundle, version)
	return args.Error(0)
}

func (m *MockDatabase) GetBundle(ctx context.Context, region string, year int) (types.Bundle, int, error) {
	args := m.Called(ctx, region, year)
	if len(args) > 0 {
		return args.Get(0).(types.Bundle), args.Int(1), args.Error(2)
	}
	return types.Bundle{}, 0, nil
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}
