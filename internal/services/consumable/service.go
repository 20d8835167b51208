package consumable

//go:generate mockgen -destination=mock/mock_service.go -package=mockconsumable -source=service.go

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/habitforge/progression/internal/clock"
	"github.com/habitforge/progression/internal/entities"
	apperr "github.com/habitforge/progression/internal/errors"
	"github.com/habitforge/progression/internal/leveling"
	"github.com/habitforge/progression/internal/repositories/profiles"
	"github.com/habitforge/progression/internal/services/ledger"
	"github.com/habitforge/progression/internal/services/progress"
	"github.com/habitforge/progression/internal/services/rewards"
)

// Service defines the consumable effect processor interface
type Service interface {
	// Use consumes one unit of an item and applies its effect. The effect
	// and the decrement commit together or not at all.
	Use(ctx context.Context, input *UseInput) (*UseResult, error)
}

// UseInput identifies the unit to use. EntryID is optional; when empty the
// oldest entry for (OwnerID, ItemCode) is used.
type UseInput struct {
	OwnerID  string
	ItemCode string
	EntryID  string
}

// EffectOutcome is the family-specific payload of a use. Only the fields
// for the effect kind are populated.
type EffectOutcome struct {
	Kind entities.EffectKind `json:"kind"`

	// Streak shield
	ShieldCount int `json:"shield_count,omitempty"`

	// Timed XP boost
	Multiplier float64    `json:"multiplier,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`

	// Cosmetic equip
	Slot  entities.CosmeticSlot `json:"slot,omitempty"`
	Value string                `json:"value,omitempty"`

	// Instant XP
	XPAwarded int                `json:"xp_awarded,omitempty"`
	Progress  *leveling.Progress `json:"progress,omitempty"`

	// Loot box token
	Drop *rewards.RollResult `json:"drop,omitempty"`
}

// UseResult is the outcome of using one inventory unit
type UseResult struct {
	Item              entities.ItemSummary `json:"item"`
	Effect            *EffectOutcome       `json:"effect"`
	RemainingQuantity int                  `json:"remaining_quantity"`
}

// service implements the Service interface
type service struct {
	ledger       ledger.Service
	rewards      rewards.Service
	profiles     profiles.Repository
	timeProvider clock.TimeProvider
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Ledger       ledger.Service      // Required
	Rewards      rewards.Service     // Required
	Profiles     profiles.Repository // Required
	TimeProvider clock.TimeProvider  // Optional, wall clock if nil
}

// NewService creates a new consumable effect processor
func NewService(cfg *ServiceConfig) Service {
	if cfg.Ledger == nil {
		panic("ledger service is required")
	}
	if cfg.Rewards == nil {
		panic("rewards service is required")
	}
	if cfg.Profiles == nil {
		panic("profile repository is required")
	}

	svc := &service{
		ledger:       cfg.Ledger,
		rewards:      cfg.Rewards,
		profiles:     cfg.Profiles,
		timeProvider: cfg.TimeProvider,
	}
	if svc.timeProvider == nil {
		svc.timeProvider = clock.NewRealTimeProvider()
	}
	return svc
}

// Use consumes one unit of an item and applies its effect
func (s *service) Use(ctx context.Context, input *UseInput) (*UseResult, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input is required")
	}
	if input.OwnerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	var outcome *EffectOutcome
	// A loot box drop that grants an item is committed after the token
	// decrement; granting inside the apply hook would re-enter the
	// owner lock
	var pendingDrop *rewards.RollResult

	consumed, err := s.ledger.ConsumeWith(ctx, &ledger.ConsumeInput{
		OwnerID:  input.OwnerID,
		ItemCode: input.ItemCode,
		EntryID:  input.EntryID,
	}, func(def *entities.ItemDefinition, entry *entities.InventoryEntry) error {
		applied, drop, applyErr := s.applyEffect(ctx, input.OwnerID, def)
		if applyErr != nil {
			return applyErr
		}
		outcome = applied
		pendingDrop = drop
		return nil
	})
	if err != nil {
		return nil, err
	}

	if pendingDrop != nil {
		if _, grantErr := s.ledger.Grant(ctx, &ledger.GrantInput{
			OwnerID:  input.OwnerID,
			ItemCode: pendingDrop.Item.Code,
			Quantity: pendingDrop.Quantity,
			Source:   fmt.Sprintf("loot_box:%s", consumed.Item.Code),
		}); grantErr != nil {
			// The token is already consumed at this point
			log.Printf("failed to grant loot box drop %s to %s: %v",
				pendingDrop.Item.Code, input.OwnerID, grantErr)
			return nil, apperr.Wrap(grantErr, "failed to grant loot box drop")
		}
	}

	return &UseResult{
		Item:              consumed.Item.Summary(),
		Effect:            outcome,
		RemainingQuantity: consumed.RemainingQuantity,
	}, nil
}

// applyEffect dispatches on the item's effect variant and mutates profile
// state. It runs under the owner lock, before the decrement commits. The
// returned drop, if any, is an inventory grant the caller must commit after
// the consume.
func (s *service) applyEffect(ctx context.Context, ownerID string, def *entities.ItemDefinition) (*EffectOutcome, *rewards.RollResult, error) {
	if def.Effect == nil {
		return nil, nil, apperr.Unsupportedf("item '%s' has no usable effect", def.Code).
			WithMeta("item_code", def.Code)
	}

	switch def.Effect.Kind {
	case entities.EffectStreakShield:
		outcome, err := s.applyStreakShield(ctx, ownerID)
		return outcome, nil, err

	case entities.EffectXPBoost:
		outcome, err := s.applyXPBoost(ctx, ownerID, def.Effect)
		return outcome, nil, err

	case entities.EffectCosmeticEquip:
		outcome, err := s.applyCosmetic(ctx, ownerID, def.Effect)
		return outcome, nil, err

	case entities.EffectXPBonus:
		outcome, err := s.applyInstantXP(ctx, ownerID, def.Effect.XPBonus)
		return outcome, nil, err

	case entities.EffectLootBox:
		return s.applyLootBox(ctx, ownerID, def.Effect)

	default:
		return nil, nil, apperr.Unsupportedf("item '%s' has unsupported effect kind '%s'", def.Code, def.Effect.Kind).
			WithMeta("item_code", def.Code)
	}
}

// applyStreakShield increments the profile's shield counter
func (s *service) applyStreakShield(ctx context.Context, ownerID string) (*EffectOutcome, error) {
	profile, err := s.profiles.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	profile.ShieldCount++
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}

	return &EffectOutcome{
		Kind:        entities.EffectStreakShield,
		ShieldCount: profile.ShieldCount,
	}, nil
}

// applyXPBoost opens a boost window, unconditionally overwriting any active
// boost regardless of its remaining time or magnitude
func (s *service) applyXPBoost(ctx context.Context, ownerID string, effect *entities.Effect) (*EffectOutcome, error) {
	profile, err := s.profiles.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	expires := s.timeProvider.Now().Add(time.Duration(effect.DurationMinutes) * time.Minute)
	profile.Boost = &entities.ActiveBoost{
		Multiplier: effect.Multiplier,
		ExpiresAt:  &expires,
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}

	return &EffectOutcome{
		Kind:       entities.EffectXPBoost,
		Multiplier: effect.Multiplier,
		ExpiresAt:  &expires,
	}, nil
}

// applyCosmetic writes the profile equip slot
func (s *service) applyCosmetic(ctx context.Context, ownerID string, effect *entities.Effect) (*EffectOutcome, error) {
	profile, err := s.profiles.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	profile.Equip(effect.Slot, effect.Value)
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}

	return &EffectOutcome{
		Kind:  entities.EffectCosmeticEquip,
		Slot:  effect.Slot,
		Value: effect.Value,
	}, nil
}

// applyInstantXP adds stored XP to the profile total. The boost multiplier
// applies the same way it does for any other XP award.
func (s *service) applyInstantXP(ctx context.Context, ownerID string, amount int) (*EffectOutcome, error) {
	profile, err := s.profiles.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	awarded := progress.BoostedAmount(amount, profile, s.timeProvider.Now())
	profile.TotalXP += awarded
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}

	after := leveling.Primary.FromXP(profile.TotalXP)
	return &EffectOutcome{
		Kind:      entities.EffectXPBonus,
		XPAwarded: awarded,
		Progress:  &after,
	}, nil
}

// applyLootBox re-rolls against the tiers at or above the token's minimum
// rarity. The drop is handled exactly like a fresh roll: instant XP lands
// on the profile here, an item drop is granted by the caller after the
// token commits.
func (s *service) applyLootBox(ctx context.Context, ownerID string, effect *entities.Effect) (*EffectOutcome, *rewards.RollResult, error) {
	drop, err := s.rewards.OpenLootBox(ctx, &rewards.OpenLootBoxInput{
		MinRarity: effect.MinRarity,
	})
	if err != nil {
		return nil, nil, err
	}

	outcome := &EffectOutcome{
		Kind: entities.EffectLootBox,
		Drop: drop,
	}

	if !drop.Dropped {
		return outcome, nil, nil
	}

	if drop.InstantXP > 0 {
		xpOutcome, err := s.applyInstantXP(ctx, ownerID, drop.InstantXP)
		if err != nil {
			return nil, nil, err
		}
		outcome.XPAwarded = xpOutcome.XPAwarded
		outcome.Progress = xpOutcome.Progress
		return outcome, nil, nil
	}

	return outcome, drop, nil
}
