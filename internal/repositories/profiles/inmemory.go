package profiles

import (
	"context"
	"sync"

	"github.com/habitforge/progression/internal/entities"
	apperr "github.com/habitforge/progression/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the profile
// repository. Useful for testing and development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]*entities.Profile
}

// NewInMemoryRepository creates a new in-memory profile repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		profiles: make(map[string]*entities.Profile),
	}
}

// Get retrieves a profile by owner ID
func (r *InMemoryRepository) Get(ctx context.Context, ownerID string) (*entities.Profile, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, exists := r.profiles[ownerID]
	if !exists {
		return nil, apperr.NotFoundf("profile for owner '%s' not found", ownerID).
			WithMeta("owner_id", ownerID)
	}

	return copyProfile(profile), nil
}

// GetOrCreate retrieves a profile, creating an empty one if absent
func (r *InMemoryRepository) GetOrCreate(ctx context.Context, ownerID string) (*entities.Profile, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	profile, exists := r.profiles[ownerID]
	if !exists {
		profile = &entities.Profile{OwnerID: ownerID}
		r.profiles[ownerID] = profile
	}

	return copyProfile(profile), nil
}

// Save overwrites a profile
func (r *InMemoryRepository) Save(ctx context.Context, profile *entities.Profile) error {
	if profile == nil {
		return apperr.InvalidArgument("profile cannot be nil")
	}
	if profile.OwnerID == "" {
		return apperr.InvalidArgument("profile owner ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[profile.OwnerID] = copyProfile(profile)
	return nil
}

// copyProfile deep-copies a profile so callers cannot mutate stored state
func copyProfile(p *entities.Profile) *entities.Profile {
	copied := *p
	if p.Boost != nil {
		boost := *p.Boost
		if p.Boost.ExpiresAt != nil {
			expires := *p.Boost.ExpiresAt
			boost.ExpiresAt = &expires
		}
		copied.Boost = &boost
	}
	if p.Cosmetics != nil {
		cosmetics := make(map[entities.CosmeticSlot]string, len(p.Cosmetics))
		for k, v := range p.Cosmetics {
			cosmetics[k] = v
		}
		copied.Cosmetics = cosmetics
	}
	return &copied
}
