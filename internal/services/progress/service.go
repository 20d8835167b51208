package progress

//go:generate mockgen -destination=mock/mock_service.go -package=mockprogress -source=service.go

import (
	"context"
	"time"

	"github.com/habitforge/progression/internal/clock"
	"github.com/habitforge/progression/internal/entities"
	apperr "github.com/habitforge/progression/internal/errors"
	"github.com/habitforge/progression/internal/leveling"
	"github.com/habitforge/progression/internal/lock"
	"github.com/habitforge/progression/internal/repositories/profiles"
)

// Service defines the profile progression interface
type Service interface {
	// AwardXP adds XP to a profile, applying the active boost multiplier,
	// and reports the level transition
	AwardXP(ctx context.Context, input *AwardXPInput) (*AwardXPResult, error)

	// GetProgress reads the profile's level snapshot and boost status.
	// Boost expiry is lazy: activity is computed here, at read time.
	GetProgress(ctx context.Context, ownerID string, curve *leveling.Curve) (*ProgressResult, error)
}

// AwardXPInput contains the parameters of an XP award
type AwardXPInput struct {
	OwnerID string
	Amount  int
	Curve   *leveling.Curve // Optional, primary curve if nil
	Source  string
}

// AwardXPResult reports the XP award and the resulting level transition
type AwardXPResult struct {
	AwardedXP int               `json:"awarded_xp"`
	TotalXP   int               `json:"total_xp"`
	Before    leveling.Progress `json:"before"`
	After     leveling.Progress `json:"after"`
	LeveledUp bool              `json:"leveled_up"`
}

// ProgressResult is a read-time snapshot of a profile's progression
type ProgressResult struct {
	Progress        leveling.Progress                `json:"progress"`
	TotalXP         int                              `json:"total_xp"`
	ShieldCount     int                              `json:"shield_count"`
	BoostActive     bool                             `json:"boost_active"`
	BoostMultiplier float64                          `json:"boost_multiplier,omitempty"`
	BoostExpiresAt  *time.Time                       `json:"boost_expires_at,omitempty"`
	Cosmetics       map[entities.CosmeticSlot]string `json:"cosmetics,omitempty"`
}

// service implements the Service interface
type service struct {
	profiles     profiles.Repository
	locker       *lock.OwnerLocker
	timeProvider clock.TimeProvider
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Profiles     profiles.Repository // Required
	Locker       *lock.OwnerLocker   // Optional, created if nil
	TimeProvider clock.TimeProvider  // Optional, wall clock if nil
}

// NewService creates a new progression service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Profiles == nil {
		panic("profile repository is required")
	}

	svc := &service{
		profiles:     cfg.Profiles,
		locker:       cfg.Locker,
		timeProvider: cfg.TimeProvider,
	}
	if svc.locker == nil {
		svc.locker = lock.NewOwnerLocker()
	}
	if svc.timeProvider == nil {
		svc.timeProvider = clock.NewRealTimeProvider()
	}
	return svc
}

// BoostedAmount applies the profile's active boost multiplier to an XP
// amount, flooring the result. Inactive boost means 1.0.
func BoostedAmount(amount int, profile *entities.Profile, now time.Time) int {
	multiplier := profile.BoostMultiplier(now)
	if multiplier == 1.0 {
		return amount
	}
	return int(float64(amount) * multiplier)
}

// AwardXP adds XP to a profile
func (s *service) AwardXP(ctx context.Context, input *AwardXPInput) (*AwardXPResult, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input is required")
	}
	if input.OwnerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}
	if input.Amount <= 0 {
		return nil, apperr.InvalidArgumentf("XP amount must be positive, got %d", input.Amount)
	}

	curve := input.Curve
	if curve == nil {
		curve = leveling.Primary
	}

	s.locker.Lock(input.OwnerID)
	defer s.locker.Unlock(input.OwnerID)

	profile, err := s.profiles.GetOrCreate(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	awarded := BoostedAmount(input.Amount, profile, now)

	before := curve.FromXP(profile.TotalXP)
	profile.TotalXP += awarded
	after := curve.FromXP(profile.TotalXP)

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}

	return &AwardXPResult{
		AwardedXP: awarded,
		TotalXP:   profile.TotalXP,
		Before:    before,
		After:     after,
		LeveledUp: after.Level > before.Level,
	}, nil
}

// GetProgress reads the profile's progression snapshot
func (s *service) GetProgress(ctx context.Context, ownerID string, curve *leveling.Curve) (*ProgressResult, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}
	if curve == nil {
		curve = leveling.Primary
	}

	profile, err := s.profiles.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	result := &ProgressResult{
		Progress:    curve.FromXP(profile.TotalXP),
		TotalXP:     profile.TotalXP,
		ShieldCount: profile.ShieldCount,
		Cosmetics:   profile.Cosmetics,
	}

	if profile.Boost.IsActive(now) {
		result.BoostActive = true
		result.BoostMultiplier = profile.Boost.Multiplier
		result.BoostExpiresAt = profile.Boost.ExpiresAt
	}

	return result, nil
}
