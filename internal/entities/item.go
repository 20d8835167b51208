package entities

import (
	apperr "github.com/habitforge/progression/internal/errors"
)

// ItemKind classifies what an item is, independent of its rarity
type ItemKind string

const (
	ItemKindConsumable ItemKind = "consumable"
	ItemKindCosmetic   ItemKind = "cosmetic"
	ItemKindPet        ItemKind = "pet"
	ItemKindCurrency   ItemKind = "currency"
)

// EffectKind tags the closed set of effect variants an item can carry
type EffectKind string

const (
	// EffectStreakShield increments the owner's streak shield counter
	EffectStreakShield EffectKind = "streak_shield"

	// EffectXPBoost opens a timed XP multiplier window on the profile
	EffectXPBoost EffectKind = "xp_boost"

	// EffectLootBox re-rolls against the tiers at or above a minimum rarity
	EffectLootBox EffectKind = "loot_box"

	// EffectCosmeticEquip writes a profile equip slot
	EffectCosmeticEquip EffectKind = "cosmetic_equip"

	// EffectXPBonus grants a flat amount of XP
	EffectXPBonus EffectKind = "xp_bonus"
)

// Defaults applied when a timed boost's config is missing or malformed
const (
	DefaultBoostMinutes    = 60
	DefaultBoostMultiplier = 2.0
)

// Effect is the validated effect configuration of an item. Exactly the
// fields for its Kind are meaningful; the rest stay zero.
type Effect struct {
	Kind EffectKind `json:"kind"`

	// DurationMinutes and Multiplier configure an xp_boost
	DurationMinutes int     `json:"duration_minutes,omitempty"`
	Multiplier      float64 `json:"multiplier,omitempty"`

	// MinRarity configures a loot_box
	MinRarity Rarity `json:"min_rarity,omitempty"`

	// Slot and Value configure a cosmetic_equip
	Slot  CosmeticSlot `json:"slot,omitempty"`
	Value string       `json:"value,omitempty"`

	// XPBonus configures an xp_bonus
	XPBonus int `json:"xp_bonus,omitempty"`
}

// Normalize validates the effect config, recovering recoverable problems.
// A malformed timed boost falls back to the documented defaults instead of
// failing; everything else must be well formed.
func (e *Effect) Normalize() error {
	switch e.Kind {
	case EffectStreakShield:
		return nil
	case EffectXPBoost:
		if e.DurationMinutes <= 0 {
			e.DurationMinutes = DefaultBoostMinutes
		}
		if e.Multiplier <= 1.0 {
			e.Multiplier = DefaultBoostMultiplier
		}
		return nil
	case EffectLootBox:
		if !e.MinRarity.IsValid() {
			return apperr.InvalidArgumentf("loot box effect has invalid minimum rarity %q", e.MinRarity)
		}
		return nil
	case EffectCosmeticEquip:
		if !e.Slot.IsValid() {
			return apperr.InvalidArgumentf("cosmetic effect has invalid slot %q", e.Slot)
		}
		if e.Value == "" {
			return apperr.InvalidArgument("cosmetic effect requires a value")
		}
		return nil
	case EffectXPBonus:
		if e.XPBonus <= 0 {
			return apperr.InvalidArgumentf("xp bonus effect requires a positive amount, got %d", e.XPBonus)
		}
		return nil
	default:
		return apperr.Unsupportedf("unknown effect kind %q", e.Kind)
	}
}

// ItemDefinition describes an item in the catalog. Definitions are created
// on first roll of a code and are immutable afterwards.
type ItemDefinition struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Icon      string   `json:"icon"`
	Rarity    Rarity   `json:"rarity"`
	Kind      ItemKind `json:"kind"`
	Stackable bool     `json:"stackable"`
	MaxStack  int      `json:"max_stack,omitempty"`
	Effect    *Effect  `json:"effect,omitempty"`
}

// Validate checks the definition and normalizes its effect config
func (d *ItemDefinition) Validate() error {
	if d.Code == "" {
		return apperr.InvalidArgument("item code is required")
	}
	if !d.Rarity.IsValid() {
		return apperr.InvalidArgumentf("item %q has invalid rarity %q", d.Code, d.Rarity)
	}
	if d.Stackable && d.MaxStack <= 0 {
		return apperr.InvalidArgumentf("stackable item %q requires a positive max stack", d.Code)
	}
	if d.Effect != nil {
		if err := d.Effect.Normalize(); err != nil {
			return apperr.Wrapf(err, "item %q has invalid effect config", d.Code)
		}
	}
	return nil
}

// ItemSummary is the caller-facing slice of an item definition
type ItemSummary struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Icon   string   `json:"icon"`
	Rarity Rarity   `json:"rarity"`
	Kind   ItemKind `json:"kind"`
}

// Summary returns the caller-facing view of the definition
func (d *ItemDefinition) Summary() ItemSummary {
	return ItemSummary{
		Code:   d.Code,
		Name:   d.Name,
		Icon:   d.Icon,
		Rarity: d.Rarity,
		Kind:   d.Kind,
	}
}
