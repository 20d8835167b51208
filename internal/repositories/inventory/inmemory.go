package inventory

import (
	"context"
	"sort"
	"sync"

	"github.com/habitforge/progression/internal/entities"
	apperr "github.com/habitforge/progression/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the inventory
// repository. Useful for testing and development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]*entities.InventoryEntry
}

// NewInMemoryRepository creates a new in-memory inventory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		entries: make(map[string]*entities.InventoryEntry),
	}
}

// Create stores a new inventory entry
func (r *InMemoryRepository) Create(ctx context.Context, entry *entities.InventoryEntry) error {
	if entry == nil {
		return apperr.InvalidArgument("entry cannot be nil")
	}
	if entry.ID == "" {
		return apperr.InvalidArgument("entry ID is required")
	}
	if entry.OwnerID == "" {
		return apperr.InvalidArgument("entry owner ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[entry.ID]; exists {
		return apperr.AlreadyExistsf("entry with ID '%s' already exists", entry.ID).
			WithMeta("entry_id", entry.ID)
	}

	copied := *entry
	r.entries[entry.ID] = &copied
	return nil
}

// Get retrieves an entry by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*entities.InventoryEntry, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("entry ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[id]
	if !exists {
		return nil, apperr.NotFoundf("entry with ID '%s' not found", id).
			WithMeta("entry_id", id)
	}

	copied := *entry
	return &copied, nil
}

// Update overwrites an existing entry
func (r *InMemoryRepository) Update(ctx context.Context, entry *entities.InventoryEntry) error {
	if entry == nil {
		return apperr.InvalidArgument("entry cannot be nil")
	}
	if entry.ID == "" {
		return apperr.InvalidArgument("entry ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[entry.ID]; !exists {
		return apperr.NotFoundf("entry with ID '%s' not found", entry.ID).
			WithMeta("entry_id", entry.ID)
	}

	copied := *entry
	r.entries[entry.ID] = &copied
	return nil
}

// Delete removes an entry
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperr.InvalidArgument("entry ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; !exists {
		return apperr.NotFoundf("entry with ID '%s' not found", id).
			WithMeta("entry_id", id)
	}

	delete(r.entries, id)
	return nil
}

// ListByOwnerAndItem retrieves entries for an owner and item, oldest first
func (r *InMemoryRepository) ListByOwnerAndItem(ctx context.Context, ownerID, itemCode string) ([]*entities.InventoryEntry, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}
	if itemCode == "" {
		return nil, apperr.InvalidArgument("item code is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*entities.InventoryEntry
	for _, entry := range r.entries {
		if entry.OwnerID == ownerID && entry.ItemCode == itemCode {
			copied := *entry
			result = append(result, &copied)
		}
	}

	sortByAcquiredAt(result)
	return result, nil
}

// ListByOwner retrieves all entries for an owner
func (r *InMemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.InventoryEntry, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*entities.InventoryEntry
	for _, entry := range r.entries {
		if entry.OwnerID == ownerID {
			copied := *entry
			result = append(result, &copied)
		}
	}

	sortByAcquiredAt(result)
	return result, nil
}

// sortByAcquiredAt orders entries oldest first, falling back to ID so the
// order is stable when timestamps collide
func sortByAcquiredAt(entries []*entities.InventoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].AcquiredAt.Equal(entries[j].AcquiredAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].AcquiredAt.Before(entries[j].AcquiredAt)
	})
}
