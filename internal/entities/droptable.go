package entities

import "sort"

// ChanceScale is the fixed-point denominator for tier chances. Chances are
// held in parts per million so tier accumulation stays exact integer math
// instead of drifting float sums near tier boundaries.
const ChanceScale int64 = 1_000_000

// MaxTierChancePPM caps a tier's luck-adjusted chance at 50%
const MaxTierChancePPM int64 = 500_000

// DropEntry is one weighted item within a tier
type DropEntry struct {
	ItemCode string `json:"item_code"`
	Weight   int64  `json:"weight"`
}

// DropTier is a rarity bracket with a base chance and its weighted items
type DropTier struct {
	Rarity    Rarity      `json:"rarity"`
	ChancePPM int64       `json:"chance_ppm"`
	Entries   []DropEntry `json:"entries"`
}

// TotalWeight sums the entry weights of the tier
func (t *DropTier) TotalWeight() int64 {
	var total int64
	for _, e := range t.Entries {
		total += e.Weight
	}
	return total
}

// DropTable is an ordered set of rarity tiers
type DropTable struct {
	Name  string     `json:"name"`
	Tiers []DropTier `json:"tiers"`
}

// TiersByRarityDesc returns the tiers ordered highest rarity first, which is
// the order the roll engine resolves them in
func (dt *DropTable) TiersByRarityDesc() []DropTier {
	tiers := make([]DropTier, len(dt.Tiers))
	copy(tiers, dt.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].Rarity.Order() > tiers[j].Rarity.Order()
	})
	return tiers
}

// TiersAtOrAbove returns the tiers at or above the given rarity, ordered
// highest first
func (dt *DropTable) TiersAtOrAbove(minimum Rarity) []DropTier {
	var eligible []DropTier
	for _, tier := range dt.TiersByRarityDesc() {
		if tier.Rarity.AtLeast(minimum) {
			eligible = append(eligible, tier)
		}
	}
	return eligible
}
