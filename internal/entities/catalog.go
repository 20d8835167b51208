package entities

// Builtin item blueprints. A definition is written to the catalog store the
// first time its code is rolled, via an idempotent upsert so concurrent
// first rolls of the same code cannot race.

// Builtin item codes
const (
	ItemStreakShield    = "streak_shield"
	ItemXPSpark         = "xp_spark"
	ItemXPSurge         = "xp_surge"
	ItemBoost1H         = "xp_boost_1h"
	ItemBoost2H         = "xp_boost_2h"
	ItemFrameSilver     = "frame_silver"
	ItemThemeMidnight   = "theme_midnight"
	ItemLootBoxRare     = "loot_box_rare"
	ItemLootBoxEpic     = "loot_box_epic"
	ItemTitleRelentless = "title_relentless"
	ItemCompanionFox    = "companion_fox"
)

var builtinItems = map[string]ItemDefinition{
	ItemStreakShield: {
		Code:      ItemStreakShield,
		Name:      "Streak Shield",
		Icon:      "shield",
		Rarity:    RarityCommon,
		Kind:      ItemKindConsumable,
		Stackable: true,
		MaxStack:  3,
		Effect:    &Effect{Kind: EffectStreakShield},
	},
	ItemXPSpark: {
		Code:      ItemXPSpark,
		Name:      "XP Spark",
		Icon:      "spark",
		Rarity:    RarityCommon,
		Kind:      ItemKindCurrency,
		Stackable: true,
		MaxStack:  99,
		Effect:    &Effect{Kind: EffectXPBonus, XPBonus: 25},
	},
	ItemXPSurge: {
		Code:      ItemXPSurge,
		Name:      "XP Surge",
		Icon:      "surge",
		Rarity:    RarityRare,
		Kind:      ItemKindCurrency,
		Stackable: true,
		MaxStack:  99,
		Effect:    &Effect{Kind: EffectXPBonus, XPBonus: 100},
	},
	ItemBoost1H: {
		Code:      ItemBoost1H,
		Name:      "1-Hour XP Boost",
		Icon:      "boost",
		Rarity:    RarityRare,
		Kind:      ItemKindConsumable,
		Stackable: true,
		MaxStack:  5,
		Effect:    &Effect{Kind: EffectXPBoost, DurationMinutes: 60, Multiplier: 2.0},
	},
	ItemBoost2H: {
		Code:      ItemBoost2H,
		Name:      "2-Hour XP Boost",
		Icon:      "boost",
		Rarity:    RarityEpic,
		Kind:      ItemKindConsumable,
		Stackable: true,
		MaxStack:  5,
		Effect:    &Effect{Kind: EffectXPBoost, DurationMinutes: 120, Multiplier: 2.5},
	},
	ItemFrameSilver: {
		Code:      ItemFrameSilver,
		Name:      "Silver Frame",
		Icon:      "frame",
		Rarity:    RarityRare,
		Kind:      ItemKindCosmetic,
		Stackable: false,
		Effect:    &Effect{Kind: EffectCosmeticEquip, Slot: SlotFrame, Value: "silver"},
	},
	ItemThemeMidnight: {
		Code:      ItemThemeMidnight,
		Name:      "Midnight Theme",
		Icon:      "theme",
		Rarity:    RarityEpic,
		Kind:      ItemKindCosmetic,
		Stackable: false,
		Effect:    &Effect{Kind: EffectCosmeticEquip, Slot: SlotTheme, Value: "midnight"},
	},
	ItemLootBoxRare: {
		Code:      ItemLootBoxRare,
		Name:      "Rare Loot Box",
		Icon:      "box",
		Rarity:    RarityEpic,
		Kind:      ItemKindConsumable,
		Stackable: true,
		MaxStack:  10,
		Effect:    &Effect{Kind: EffectLootBox, MinRarity: RarityRare},
	},
	ItemLootBoxEpic: {
		Code:      ItemLootBoxEpic,
		Name:      "Epic Loot Box",
		Icon:      "box",
		Rarity:    RarityLegendary,
		Kind:      ItemKindConsumable,
		Stackable: true,
		MaxStack:  10,
		Effect:    &Effect{Kind: EffectLootBox, MinRarity: RarityEpic},
	},
	ItemTitleRelentless: {
		Code:      ItemTitleRelentless,
		Name:      "Title: The Relentless",
		Icon:      "title",
		Rarity:    RarityLegendary,
		Kind:      ItemKindCosmetic,
		Stackable: false,
		Effect:    &Effect{Kind: EffectCosmeticEquip, Slot: SlotTitle, Value: "The Relentless"},
	},
	ItemCompanionFox: {
		Code:      ItemCompanionFox,
		Name:      "Fox Companion",
		Icon:      "fox",
		Rarity:    RarityLegendary,
		Kind:      ItemKindPet,
		Stackable: false,
	},
}

// BuiltinItem returns a copy of the builtin definition for a code
func BuiltinItem(code string) (*ItemDefinition, bool) {
	def, ok := builtinItems[code]
	if !ok {
		return nil, false
	}
	copied := def
	if def.Effect != nil {
		effect := *def.Effect
		copied.Effect = &effect
	}
	return &copied, true
}

// StandardDropTable returns the default reward table
func StandardDropTable() *DropTable {
	return &DropTable{
		Name: "standard",
		Tiers: []DropTier{
			{
				Rarity:    RarityCommon,
				ChancePPM: 250_000, // 25%
				Entries: []DropEntry{
					{ItemCode: ItemStreakShield, Weight: 60},
					{ItemCode: ItemXPSpark, Weight: 40},
				},
			},
			{
				Rarity:    RarityRare,
				ChancePPM: 80_000, // 8%
				Entries: []DropEntry{
					{ItemCode: ItemBoost1H, Weight: 40},
					{ItemCode: ItemXPSurge, Weight: 35},
					{ItemCode: ItemFrameSilver, Weight: 25},
				},
			},
			{
				Rarity:    RarityEpic,
				ChancePPM: 20_000, // 2%
				Entries: []DropEntry{
					{ItemCode: ItemLootBoxRare, Weight: 50},
					{ItemCode: ItemBoost2H, Weight: 30},
					{ItemCode: ItemThemeMidnight, Weight: 20},
				},
			},
			{
				Rarity:    RarityLegendary,
				ChancePPM: 5_000, // 0.5%
				Entries: []DropEntry{
					{ItemCode: ItemLootBoxEpic, Weight: 50},
					{ItemCode: ItemTitleRelentless, Weight: 30},
					{ItemCode: ItemCompanionFox, Weight: 20},
				},
			},
		},
	}
}

// BoostedDropTable returns the table used while a reward event is running;
// same entries, higher per-tier chances
func BoostedDropTable() *DropTable {
	return &DropTable{
		Name: "boosted",
		Tiers: []DropTier{
			{
				Rarity:    RarityCommon,
				ChancePPM: 400_000, // 40%
				Entries: []DropEntry{
					{ItemCode: ItemStreakShield, Weight: 60},
					{ItemCode: ItemXPSpark, Weight: 40},
				},
			},
			{
				Rarity:    RarityRare,
				ChancePPM: 150_000, // 15%
				Entries: []DropEntry{
					{ItemCode: ItemBoost1H, Weight: 40},
					{ItemCode: ItemXPSurge, Weight: 35},
					{ItemCode: ItemFrameSilver, Weight: 25},
				},
			},
			{
				Rarity:    RarityEpic,
				ChancePPM: 40_000, // 4%
				Entries: []DropEntry{
					{ItemCode: ItemLootBoxRare, Weight: 50},
					{ItemCode: ItemBoost2H, Weight: 30},
					{ItemCode: ItemThemeMidnight, Weight: 20},
				},
			},
			{
				Rarity:    RarityLegendary,
				ChancePPM: 10_000, // 1%
				Entries: []DropEntry{
					{ItemCode: ItemLootBoxEpic, Weight: 50},
					{ItemCode: ItemTitleRelentless, Weight: 30},
					{ItemCode: ItemCompanionFox, Weight: 20},
				},
			},
		},
	}
}
