package entities

// Rarity represents the probability bracket of a drop tier
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// AllRarities returns all rarities in order from lowest to highest
func AllRarities() []Rarity {
	return []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}
}

// Order returns the sort position of the rarity, lowest first.
// Unknown rarities sort below common.
func (r Rarity) Order() int {
	switch r {
	case RarityCommon:
		return 1
	case RarityRare:
		return 2
	case RarityEpic:
		return 3
	case RarityLegendary:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether the rarity is at or above the given minimum
func (r Rarity) AtLeast(minimum Rarity) bool {
	return r.Order() >= minimum.Order()
}

// DisplayName returns a human-readable label for the rarity
func (r Rarity) DisplayName() string {
	switch r {
	case RarityCommon:
		return "Common"
	case RarityRare:
		return "Rare"
	case RarityEpic:
		return "Epic"
	case RarityLegendary:
		return "Legendary"
	default:
		return string(r)
	}
}

// IsValid reports whether the rarity is one of the known tiers
func (r Rarity) IsValid() bool {
	return r.Order() > 0
}
