package rewards

//go:generate mockgen -destination=mock/mock_service.go -package=mockrewards -source=service.go

import (
	"context"
	"log"

	"github.com/habitforge/progression/internal/entities"
	apperr "github.com/habitforge/progression/internal/errors"
	"github.com/habitforge/progression/internal/repositories/items"
	"github.com/habitforge/progression/internal/rng"
)

// Service defines the rarity roll engine interface
type Service interface {
	// Roll resolves a single reward-eligibility roll against a drop table
	Roll(ctx context.Context, input *RollInput) (*RollResult, error)

	// OpenLootBox rolls against only the tiers at or above a minimum
	// rarity. Unlike Roll it always produces a drop when any tier is
	// eligible.
	OpenLootBox(ctx context.Context, input *OpenLootBoxInput) (*RollResult, error)
}

// RollInput contains the parameters of a roll
type RollInput struct {
	Table *entities.DropTable // Optional, standard table if nil
	Luck  float64             // Optional, 1.0 if zero
}

// OpenLootBoxInput contains the parameters of a loot box opening
type OpenLootBoxInput struct {
	Table     *entities.DropTable // Optional, standard table if nil
	MinRarity entities.Rarity
}

// RollResult is the outcome of a roll or loot box opening
type RollResult struct {
	Dropped   bool                  `json:"dropped"`
	Item      *entities.ItemSummary `json:"item,omitempty"`
	Quantity  int                   `json:"quantity,omitempty"`
	InstantXP int                   `json:"instant_xp,omitempty"`
	Rarity    entities.Rarity       `json:"rarity,omitempty"`
}

// service implements the Service interface
type service struct {
	catalog items.Repository
	source  rng.Source
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Catalog items.Repository // Required
	Source  rng.Source       // Optional, time-seeded random if nil
}

// NewService creates a new roll engine service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Catalog == nil {
		panic("catalog repository is required")
	}

	svc := &service{
		catalog: cfg.Catalog,
		source:  cfg.Source,
	}
	if svc.source == nil {
		svc.source = rng.NewRandomSource()
	}
	return svc
}

// Roll resolves a single roll. Tiers are scanned highest rarity first; each
// tier's luck-adjusted chance is accumulated and the first tier whose
// cumulative chance exceeds the draw wins. Overlaps resolve by that strict
// ordering, never by re-rolling.
func (s *service) Roll(ctx context.Context, input *RollInput) (*RollResult, error) {
	if input == nil {
		input = &RollInput{}
	}
	if input.Luck < 0 {
		return nil, apperr.InvalidArgumentf("luck multiplier cannot be negative, got %f", input.Luck)
	}

	table := input.Table
	if table == nil {
		table = entities.StandardDropTable()
	}
	luck := input.Luck
	if luck == 0 {
		luck = 1.0
	}

	draw := s.source.Int64N(entities.ChanceScale)

	var cumulative int64
	for _, tier := range table.TiersByRarityDesc() {
		cumulative += adjustedChance(tier.ChancePPM, luck)
		if draw < cumulative {
			return s.resolveTier(ctx, &tier)
		}
	}

	return &RollResult{Dropped: false}, nil
}

// OpenLootBox rolls against the eligible tier subset, using the raw base
// chances as relative weights with no cap. When the draw lands in the
// headroom left by renormalization, the lowest eligible tier wins: opening
// a loot box is never a no-op.
func (s *service) OpenLootBox(ctx context.Context, input *OpenLootBoxInput) (*RollResult, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input is required")
	}
	if !input.MinRarity.IsValid() {
		return nil, apperr.InvalidArgumentf("invalid minimum rarity %q", input.MinRarity)
	}

	table := input.Table
	if table == nil {
		table = entities.StandardDropTable()
	}

	eligible := table.TiersAtOrAbove(input.MinRarity)
	if len(eligible) == 0 {
		return &RollResult{Dropped: false}, nil
	}

	draw := s.source.Int64N(entities.ChanceScale)

	var cumulative int64
	for _, tier := range eligible {
		cumulative += tier.ChancePPM
		if draw < cumulative {
			return s.resolveTier(ctx, &tier)
		}
	}

	// Fall back to the lowest eligible tier
	return s.resolveTier(ctx, &eligible[len(eligible)-1])
}

// adjustedChance scales a tier chance by the luck multiplier and caps the
// result at 50%
func adjustedChance(chancePPM int64, luck float64) int64 {
	adjusted := chancePPM
	if luck != 1.0 {
		adjusted = int64(float64(chancePPM) * luck)
	}
	if adjusted > entities.MaxTierChancePPM {
		adjusted = entities.MaxTierChancePPM
	}
	return adjusted
}

// resolveTier picks a weighted entry within the winning tier and shapes the
// drop result
func (s *service) resolveTier(ctx context.Context, tier *entities.DropTier) (*RollResult, error) {
	totalWeight := tier.TotalWeight()
	if totalWeight <= 0 {
		log.Printf("drop tier %s has zero total weight, no drop", tier.Rarity)
		return &RollResult{Dropped: false}, nil
	}

	remainder := s.source.Int64N(totalWeight)
	var code string
	for _, entry := range tier.Entries {
		remainder -= entry.Weight
		if remainder < 0 {
			code = entry.ItemCode
			break
		}
	}

	def, err := s.ensureDefinition(ctx, code, tier.Rarity)
	if err != nil {
		return nil, err
	}

	summary := def.Summary()
	result := &RollResult{
		Dropped: true,
		Item:    &summary,
		Rarity:  tier.Rarity,
	}

	// Instant XP is applied to the profile by the caller, never granted
	// into inventory
	if def.Effect != nil && def.Effect.Kind == entities.EffectXPBonus {
		result.InstantXP = def.Effect.XPBonus
	} else {
		result.Quantity = 1
	}

	return result, nil
}

// ensureDefinition lazily writes the item definition for a code the first
// time it is rolled. The upsert is idempotent, so concurrent first rolls of
// the same code settle on one definition.
func (s *service) ensureDefinition(ctx context.Context, code string, rarity entities.Rarity) (*entities.ItemDefinition, error) {
	if blueprint, ok := entities.BuiltinItem(code); ok {
		return s.catalog.UpsertByCode(ctx, blueprint)
	}

	def, err := s.catalog.GetByCode(ctx, code)
	if err == nil {
		return def, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	// No blueprint and nothing stored: register a minimal definition so
	// the drop is still usable
	return s.catalog.UpsertByCode(ctx, &entities.ItemDefinition{
		Code:   code,
		Name:   code,
		Rarity: rarity,
		Kind:   entities.ItemKindConsumable,
	})
}
