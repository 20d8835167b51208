package items

import (
	"context"
	"sync"

	"github.com/habitforge/progression/internal/entities"
	apperr "github.com/habitforge/progression/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the catalog repository.
// Useful for testing and development.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*entities.ItemDefinition
}

// NewInMemoryRepository creates a new in-memory catalog repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		items: make(map[string]*entities.ItemDefinition),
	}
}

// GetByCode retrieves an item definition by code
func (r *InMemoryRepository) GetByCode(ctx context.Context, code string) (*entities.ItemDefinition, error) {
	if code == "" {
		return nil, apperr.InvalidArgument("item code is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.items[code]
	if !exists {
		return nil, apperr.NotFoundf("item with code '%s' not found", code).
			WithMeta("item_code", code)
	}

	copied := *def
	return &copied, nil
}

// UpsertByCode stores the definition unless the code already exists
func (r *InMemoryRepository) UpsertByCode(ctx context.Context, def *entities.ItemDefinition) (*entities.ItemDefinition, error) {
	if def == nil {
		return nil, apperr.InvalidArgument("item definition cannot be nil")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.items[def.Code]; exists {
		copied := *existing
		return &copied, nil
	}

	copied := *def
	r.items[def.Code] = &copied

	result := copied
	return &result, nil
}

// List retrieves all item definitions
func (r *InMemoryRepository) List(ctx context.Context) ([]*entities.ItemDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*entities.ItemDefinition, 0, len(r.items))
	for _, def := range r.items {
		copied := *def
		defs = append(defs, &copied)
	}
	return defs, nil
}
