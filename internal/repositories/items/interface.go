package items

//go:generate mockgen -destination=mock/mock.go -package=mockitems -source=interface.go

import (
	"context"

	"github.com/habitforge/progression/internal/entities"
)

// Repository defines the interface for item catalog persistence
type Repository interface {
	// GetByCode retrieves an item definition by its code
	GetByCode(ctx context.Context, code string) (*entities.ItemDefinition, error)

	// UpsertByCode stores a definition if none exists for its code and
	// returns the stored definition. First write wins; later upserts of the
	// same code return the existing definition unchanged.
	UpsertByCode(ctx context.Context, def *entities.ItemDefinition) (*entities.ItemDefinition, error)

	// List retrieves all item definitions in the catalog
	List(ctx context.Context) ([]*entities.ItemDefinition, error)
}
