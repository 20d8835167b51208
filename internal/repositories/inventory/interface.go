package inventory

//go:generate mockgen -destination=mock/mock.go -package=mockinventory -source=interface.go

import (
	"context"

	"github.com/habitforge/progression/internal/entities"
)

// Repository defines the interface for inventory entry persistence
type Repository interface {
	// Create stores a new inventory entry
	Create(ctx context.Context, entry *entities.InventoryEntry) error

	// Get retrieves an entry by ID
	Get(ctx context.Context, id string) (*entities.InventoryEntry, error)

	// Update overwrites an existing entry
	Update(ctx context.Context, entry *entities.InventoryEntry) error

	// Delete removes an entry
	Delete(ctx context.Context, id string) error

	// ListByOwnerAndItem retrieves all entries for an owner and item code,
	// ordered by AcquiredAt ascending (oldest first)
	ListByOwnerAndItem(ctx context.Context, ownerID, itemCode string) ([]*entities.InventoryEntry, error)

	// ListByOwner retrieves all entries for an owner
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.InventoryEntry, error)
}
