package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/levenlabs/go-lflag"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hydromix/hydromix/pkg/log"
	"github.com/hydromix/hydromix/pkg/types"
)

// FirestoreProvider implements the Database interface using Google Cloud
// Firestore. It persists settings, runs, and bundles to per-region
// sub-collections.
type FirestoreProvider struct {
	client    *firestore.Client
	projectID string
	database  string
}

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// set this because that's how firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured.
func (f *FirestoreProvider) Validate() error {
	// Project ID verification could be here, but we allow empty if inferred.
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *FirestoreProvider) getCollection(region, name string) (*firestore.CollectionRef, error) {
	if region == "" {
		return nil, fmt.Errorf("region cannot be empty")
	}
	return f.client.Collection("regions").Doc(region).Collection(name), nil
}

// GetSweepSettings retrieves the dynamic configuration from the
// "config/settings" document.
func (f *FirestoreProvider) GetSweepSettings(ctx context.Context, region string) (types.SweepSettings, int, error) {
	coll, err := f.getCollection(region, "config")
	if err != nil {
		return types.SweepSettings{}, 0, err
	}
	doc, err := coll.Doc("settings").Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			// Return default settings if not found
			return types.SweepSettings{}, 0, nil
		}
		return types.SweepSettings{}, 0, fmt.Errorf("failed to fetch settings doc: %w", err)
	}

	// Read version if available (default 0)
	var version int
	if v, err := doc.DataAt("version"); err == nil {
		if vInt, ok := v.(int64); ok {
			version = int(vInt)
		}
	}

	val, err := doc.DataAt("json")
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "settings doc missing json", slog.String("region", region))
		return types.SweepSettings{}, 0, fmt.Errorf("settings document missing 'json' field: %w", err)
	}

	jsonStr, ok := val.(string)
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "settings doc json not string", slog.String("region", region))
		return types.SweepSettings{}, 0, fmt.Errorf("settings 'json' field is not a string")
	}

	var s types.SweepSettings
	if err := json.Unmarshal([]byte(jsonStr), &s); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal settings json", slog.String("region", region), slog.Any("err", err))
		return types.SweepSettings{}, 0, fmt.Errorf("failed to unmarshal settings json: %w", err)
	}
	return s, version, nil
}

// SetSweepSettings saves the dynamic configuration to the "config/settings"
// document. It stores the settings as a JSON string for portability.
func (f *FirestoreProvider) SetSweepSettings(ctx context.Context, region string, settings types.SweepSettings, version int) error {
	jsonBytes, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	coll, err := f.getCollection(region, "config")
	if err != nil {
		return err
	}
	_, err = coll.Doc("settings").Set(ctx, map[string]interface{}{
		"json":    string(jsonBytes),
		"version": version,
	})
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// InsertRun adds a new adequacy run to the "runs" collection as a JSON blob.
// The document ID is the run's RFC3339 timestamp for efficient range queries.
func (f *FirestoreProvider) InsertRun(ctx context.Context, region string, run types.AdequacyRun) error {
	if run.Timestamp.IsZero() {
		return fmt.Errorf("run missing timestamp")
	}
	jsonBytes, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	coll, err := f.getCollection(region, "runs")
	if err != nil {
		return err
	}
	// Use RFC3339 as document ID for lexicographic ordering and efficient range queries
	docID := run.Timestamp.UTC().Format(time.RFC3339)
	_, err = coll.Doc(docID).Set(ctx, map[string]interface{}{
		"json":      string(jsonBytes),
		"timestamp": run.Timestamp,
		"version":   types.CurrentRunVersion,
	})
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// GetRun retrieves a single run by its ID.
func (f *FirestoreProvider) GetRun(ctx context.Context, region, runID string) (types.AdequacyRun, error) {
	coll, err := f.getCollection(region, "runs")
	if err != nil {
		return types.AdequacyRun{}, err
	}
	doc, err := coll.Doc(runID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.AdequacyRun{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return types.AdequacyRun{}, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	return unmarshalRun(ctx, region, doc)
}

// ListRuns retrieves runs within the specified time range.
// Uses document ID range queries for efficient filtering without reading all
// documents.
func (f *FirestoreProvider) ListRuns(ctx context.Context, region string, start, end time.Time) ([]types.AdequacyRun, error) {
	startDocID := start.UTC().Format(time.RFC3339)
	endDocID := end.UTC().Format(time.RFC3339)

	coll, err := f.getCollection(region, "runs")
	if err != nil {
		return nil, err
	}
	iter := coll.
		Where(firestore.DocumentID, ">=", coll.Doc(startDocID)).
		Where(firestore.DocumentID, "<", coll.Doc(endDocID)).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var runs []types.AdequacyRun
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating runs: %w", err)
		}

		run, err := unmarshalRun(ctx, region, doc)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func unmarshalRun(ctx context.Context, region string, doc *firestore.DocumentSnapshot) (types.AdequacyRun, error) {
	val, err := doc.DataAt("json")
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "run doc missing json", slog.String("runID", doc.Ref.ID), slog.String("region", region), slog.Any("err", err))
		return types.AdequacyRun{}, fmt.Errorf("run document %s missing 'json' field: %w", doc.Ref.ID, err)
	}

	jsonStr, ok := val.(string)
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "run doc json not string", slog.String("runID", doc.Ref.ID), slog.String("region", region))
		return types.AdequacyRun{}, fmt.Errorf("run document %s 'json' field is not string", doc.Ref.ID)
	}

	var r types.AdequacyRun
	if err := json.Unmarshal([]byte(jsonStr), &r); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal run", slog.String("runID", doc.Ref.ID), slog.String("region", region), slog.Any("err", err))
		return types.AdequacyRun{}, fmt.Errorf("failed to unmarshal run (id=%s): %w", doc.Ref.ID, err)
	}
	return r, nil
}

// UpsertBundle adds or updates a country-year bundle in the "bundles"
// collection of the bundle's region. The document ID is the year for direct
// lookups.
func (f *FirestoreProvider) UpsertBundle(ctx context.Context, bundle types.Bundle, version int) error {
	if err := bundle.Validate(); err != nil {
		return fmt.Errorf("refusing to store invalid bundle: %w", err)
	}
	jsonBytes, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}

	coll, err := f.getCollection(bundle.Region, "bundles")
	if err != nil {
		return err
	}
	docID := strconv.Itoa(bundle.Year)
	_, err = coll.Doc(docID).Set(ctx, map[string]interface{}{
		"json":    string(jsonBytes),
		"year":    bundle.Year,
		"version": version,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert bundle: %w", err)
	}
	return nil
}

// GetBundle retrieves the bundle for a region and year.
func (f *FirestoreProvider) GetBundle(ctx context.Context, region string, year int) (types.Bundle, int, error) {
	coll, err := f.getCollection(region, "bundles")
	if err != nil {
		return types.Bundle{}, 0, err
	}
	doc, err := coll.Doc(strconv.Itoa(year)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Bundle{}, 0, fmt.Errorf("%w: %s/%d", ErrBundleNotFound, region, year)
		}
		return types.Bundle{}, 0, fmt.Errorf("failed to get bundle %s/%d: %w", region, year, err)
	}

	// Read version if available (default 0)
	var version int
	if v, err := doc.DataAt("version"); err == nil {
		if vInt, ok := v.(int64); ok {
			version = int(vInt)
		}
	}

	val, err := doc.DataAt("json")
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "bundle doc missing json", slog.String("region", region), slog.Int("year", year))
		return types.Bundle{}, 0, fmt.Errorf("bundle document %s/%d missing 'json' field: %w", region, year, err)
	}
	jsonStr, ok := val.(string)
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "bundle doc json not string", slog.String("region", region), slog.Int("year", year))
		return types.Bundle{}, 0, fmt.Errorf("bundle document %s/%d 'json' field is not string", region, year)
	}

	var b types.Bundle
	if err := json.Unmarshal([]byte(jsonStr), &b); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal bundle", slog.String("region", region), slog.Int("year", year), slog.Any("err", err))
		return types.Bundle{}, 0, fmt.Errorf("failed to unmarshal bundle %s/%d: %w", region, year, err)
	}
	return b, version, nil
}
