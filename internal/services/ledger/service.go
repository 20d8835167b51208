package ledger

//go:generate mockgen -destination=mock/mock_service.go -package=mockledger -source=service.go

import (
	"context"
	"time"

	"github.com/habitforge/progression/internal/clock"
	"github.com/habitforge/progression/internal/entities"
	apperr "github.com/habitforge/progression/internal/errors"
	"github.com/habitforge/progression/internal/lock"
	"github.com/habitforge/progression/internal/repositories/inventory"
	"github.com/habitforge/progression/internal/repositories/items"
	"github.com/habitforge/progression/internal/uuid"
)

// ApplyFunc runs between consume validation and the decrement commit. If it
// returns an error nothing is consumed.
type ApplyFunc func(def *entities.ItemDefinition, entry *entities.InventoryEntry) error

// Service defines the inventory ledger interface
type Service interface {
	// Grant adds a quantity of an item to an owner's inventory, stacking
	// and splitting per the item's max stack
	Grant(ctx context.Context, input *GrantInput) (*GrantResult, error)

	// Consume removes exactly one unit from an entry. With no explicit
	// entry ID the oldest entry for the item is consumed.
	Consume(ctx context.Context, input *ConsumeInput) (*ConsumeResult, error)

	// ConsumeWith consumes one unit, running apply after the entry is
	// validated and before the decrement commits. Apply and the decrement
	// happen under the owner's lock, so they land together or not at all.
	ConsumeWith(ctx context.Context, input *ConsumeInput, apply ApplyFunc) (*ConsumeResult, error)

	// List retrieves all inventory entries for an owner, oldest first
	List(ctx context.Context, ownerID string) ([]*entities.InventoryEntry, error)
}

// GrantInput contains the parameters of a grant
type GrantInput struct {
	OwnerID  string
	ItemCode string
	Quantity int
	Source   string // Opaque tag describing why the grant happened
}

// GrantResult reports the entries the grant created or filled
type GrantResult struct {
	Entries []*entities.InventoryEntry
}

// ConsumeInput identifies what to consume. EntryID is optional; when empty
// the oldest entry for (OwnerID, ItemCode) is selected.
type ConsumeInput struct {
	OwnerID  string
	ItemCode string
	EntryID  string
}

// ConsumeResult reports the consumed entry's state after the decrement
type ConsumeResult struct {
	Item              *entities.ItemDefinition
	EntryID           string
	RemainingQuantity int
	Deleted           bool
}

// service implements the Service interface
type service struct {
	repo         inventory.Repository
	catalog      items.Repository
	locker       *lock.OwnerLocker
	uuidGen      uuid.Generator
	timeProvider clock.TimeProvider
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository   inventory.Repository // Required
	Catalog      items.Repository     // Required
	Locker       *lock.OwnerLocker    // Optional, created if nil
	UUIDGen      uuid.Generator       // Optional, google uuid if nil
	TimeProvider clock.TimeProvider   // Optional, wall clock if nil
}

// NewService creates a new inventory ledger service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("inventory repository is required")
	}
	if cfg.Catalog == nil {
		panic("catalog repository is required")
	}

	svc := &service{
		repo:         cfg.Repository,
		catalog:      cfg.Catalog,
		locker:       cfg.Locker,
		uuidGen:      cfg.UUIDGen,
		timeProvider: cfg.TimeProvider,
	}
	if svc.locker == nil {
		svc.locker = lock.NewOwnerLocker()
	}
	if svc.uuidGen == nil {
		svc.uuidGen = uuid.NewGoogleUUIDGenerator()
	}
	if svc.timeProvider == nil {
		svc.timeProvider = clock.NewRealTimeProvider()
	}
	return svc
}

// Grant adds a quantity of an item to an owner's inventory
func (s *service) Grant(ctx context.Context, input *GrantInput) (*GrantResult, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input is required")
	}
	if input.OwnerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}
	if input.ItemCode == "" {
		return nil, apperr.InvalidArgument("item code is required")
	}
	if input.Quantity <= 0 {
		return nil, apperr.InvalidArgumentf("grant quantity must be positive, got %d", input.Quantity)
	}

	def, err := s.lookupDefinition(ctx, input.ItemCode)
	if err != nil {
		return nil, err
	}

	s.locker.Lock(input.OwnerID)
	defer s.locker.Unlock(input.OwnerID)

	now := s.timeProvider.Now().UTC()

	// Unstackable items never merge: every unit is its own entry
	if !def.Stackable {
		result := &GrantResult{}
		for i := 0; i < input.Quantity; i++ {
			entry, err := s.createEntry(ctx, input, 1, now)
			if err != nil {
				return nil, err
			}
			result.Entries = append(result.Entries, entry)
		}
		return result, nil
	}

	existing, err := s.repo.ListByOwnerAndItem(ctx, input.OwnerID, input.ItemCode)
	if err != nil {
		return nil, err
	}

	result := &GrantResult{}
	remaining := input.Quantity

	// Fill partially-filled stacks first, oldest first. Incremented
	// entries get their AcquiredAt refreshed: recency matters for
	// consumption ordering.
	for _, entry := range existing {
		if remaining == 0 {
			break
		}
		headroom := def.MaxStack - entry.Quantity
		if headroom <= 0 {
			continue
		}
		fill := headroom
		if remaining < fill {
			fill = remaining
		}
		entry.Quantity += fill
		entry.AcquiredAt = now
		if err := s.repo.Update(ctx, entry); err != nil {
			return nil, err
		}
		result.Entries = append(result.Entries, entry)
		remaining -= fill
	}

	// Whatever is left goes into fresh stacks, each capped at max
	for remaining > 0 {
		qty := remaining
		if qty > def.MaxStack {
			qty = def.MaxStack
		}
		entry, err := s.createEntry(ctx, input, qty, now)
		if err != nil {
			return nil, err
		}
		result.Entries = append(result.Entries, entry)
		remaining -= qty
	}

	return result, nil
}

// Consume removes one unit from an entry
func (s *service) Consume(ctx context.Context, input *ConsumeInput) (*ConsumeResult, error) {
	return s.ConsumeWith(ctx, input, nil)
}

// ConsumeWith consumes one unit with an apply hook between validation and
// commit
func (s *service) ConsumeWith(ctx context.Context, input *ConsumeInput, apply ApplyFunc) (*ConsumeResult, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input is required")
	}
	if input.OwnerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}
	if input.ItemCode == "" && input.EntryID == "" {
		return nil, apperr.InvalidArgument("item code or entry ID is required")
	}

	s.locker.Lock(input.OwnerID)
	defer s.locker.Unlock(input.OwnerID)

	entry, err := s.selectEntry(ctx, input)
	if err != nil {
		return nil, err
	}

	def, err := s.lookupDefinition(ctx, entry.ItemCode)
	if err != nil {
		return nil, err
	}

	if apply != nil {
		if applyErr := apply(def, entry); applyErr != nil {
			return nil, applyErr
		}
	}

	entry.Quantity--
	result := &ConsumeResult{
		Item:              def,
		EntryID:           entry.ID,
		RemainingQuantity: entry.Quantity,
	}

	if entry.Quantity == 0 {
		if err := s.repo.Delete(ctx, entry.ID); err != nil {
			return nil, err
		}
		result.Deleted = true
		return result, nil
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return result, nil
}

// List retrieves all inventory entries for an owner
func (s *service) List(ctx context.Context, ownerID string) ([]*entities.InventoryEntry, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// selectEntry resolves the entry to consume: the explicitly named one, or
// the oldest entry with stock for (owner, item)
func (s *service) selectEntry(ctx context.Context, input *ConsumeInput) (*entities.InventoryEntry, error) {
	if input.EntryID != "" {
		entry, err := s.repo.Get(ctx, input.EntryID)
		if err != nil {
			return nil, err
		}
		if entry.OwnerID != input.OwnerID {
			return nil, apperr.NotFoundf("entry with ID '%s' not found", input.EntryID).
				WithMeta("entry_id", input.EntryID)
		}
		if input.ItemCode != "" && entry.ItemCode != input.ItemCode {
			return nil, apperr.InvalidArgumentf("entry '%s' holds '%s', not '%s'",
				input.EntryID, entry.ItemCode, input.ItemCode)
		}
		if entry.Quantity <= 0 {
			return nil, apperr.InvalidStatef("entry '%s' has no remaining quantity", input.EntryID)
		}
		return entry, nil
	}

	entries, err := s.repo.ListByOwnerAndItem(ctx, input.OwnerID, input.ItemCode)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.Quantity > 0 {
			return entry, nil
		}
	}
	return nil, apperr.NotFoundf("no '%s' in inventory for owner '%s'", input.ItemCode, input.OwnerID).
		WithMeta("item_code", input.ItemCode).
		WithMeta("owner_id", input.OwnerID)
}

// lookupDefinition reads the item definition, registering the builtin
// blueprint on first reference
func (s *service) lookupDefinition(ctx context.Context, code string) (*entities.ItemDefinition, error) {
	def, err := s.catalog.GetByCode(ctx, code)
	if err == nil {
		return def, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}
	if blueprint, ok := entities.BuiltinItem(code); ok {
		return s.catalog.UpsertByCode(ctx, blueprint)
	}
	return nil, err
}

// createEntry stores a fresh inventory entry
func (s *service) createEntry(ctx context.Context, input *GrantInput, quantity int, now time.Time) (*entities.InventoryEntry, error) {
	entry := &entities.InventoryEntry{
		ID:         s.uuidGen.New(),
		OwnerID:    input.OwnerID,
		ItemCode:   input.ItemCode,
		Quantity:   quantity,
		AcquiredAt: now,
		Source:     input.Source,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
