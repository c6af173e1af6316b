// Package storage persists sweep settings, adequacy runs, and country-year
// bundles per region.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/levenlabs/go-lflag"

	"github.com/hydromix/hydromix/pkg/types"
)

var (
	ErrRunNotFound    = errors.New("run not found")
	ErrBundleNotFound = errors.New("bundle not found")
)

// Database defines the interface for persisting data and retrieving settings.
type Database interface {
	// Settings
	GetSweepSettings(ctx context.Context, region string) (types.SweepSettings, int, error)
	SetSweepSettings(ctx context.Context, region string, settings types.SweepSettings, version int) error

	// Runs
	InsertRun(ctx context.Context, region string, run types.AdequacyRun) error
	GetRun(ctx context.Context, region, runID string) (types.AdequacyRun, error)
	ListRuns(ctx context.Context, region string, start, end time.Time) ([]types.AdequacyRun, error)

	// Bundles
	UpsertBundle(ctx context.Context, bundle types.Bundle, version int) error
	GetBundle(ctx context.Context, region string, year int) (types.Bundle, int, error)

	// Lifecycle
	Close() error
}

// Configured sets up the Storage provider based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "firestore", "Storage provider to use (available: firestore)")

	var p struct{ Database }

	fs := configuredFirestore()

	lflag.Do(func() {
		switch *provider {
		case "firestore":
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("firestore validation failed: %v", err))
			}
			p.Database = fs
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}
