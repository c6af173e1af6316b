package bundle

import (
	"context"
	"fmt"

	"github.com/hydromix/hydromix/pkg/storage"
	"github.com/hydromix/hydromix/pkg/types"
)

// Stored serves bundles previously persisted to the database, typically by
// the seed tool or an earlier grid feed fetch.
type Stored struct {
	db storage.Database
}

// NewStored returns a storage-backed provider.
func NewStored(db storage.Database) *Stored {
	return &Stored{db: db}
}

// Describe implements the Provider interface.
func (s *Stored) Describe() string {
	return "bundles previously saved to storage by the seed tool or a grid feed fetch"
}

// Validate ensures the provider has a database.
func (s *Stored) Validate() error {
	if s.db == nil {
		return fmt.Errorf("stored provider requires a database")
	}
	return nil
}

// Bundle retrieves the stored bundle for a region and year.
func (s *Stored) Bundle(ctx context.Context, region string, year int) (types.Bundle, error) {
	b, _, err := s.db.GetBundle(ctx, region, year)
	if err != nil {
		return types.Bundle{}, err
	}
	return b, nil
}
