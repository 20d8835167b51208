package profiles

//go:generate mockgen -destination=mock/mock.go -package=mockprofiles -source=interface.go

import (
	"context"

	"github.com/habitforge/progression/internal/entities"
)

// Repository defines the interface for profile progression state persistence
type Repository interface {
	// Get retrieves a profile by owner ID
	Get(ctx context.Context, ownerID string) (*entities.Profile, error)

	// GetOrCreate retrieves a profile, creating an empty one if absent
	GetOrCreate(ctx context.Context, ownerID string) (*entities.Profile, error)

	// Save overwrites a profile
	Save(ctx context.Context, profile *entities.Profile) error
}
