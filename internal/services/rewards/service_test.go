package rewards

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitforge/progression/internal/entities"
	apperr "github.com/habitforge/progression/internal/errors"
	"github.com/habitforge/progression/internal/repositories/items"
	"github.com/habitforge/progression/internal/rng"
)

func newTestService(source rng.Source) (Service, items.Repository) {
	catalog := items.NewInMemoryRepository()
	svc := NewService(&ServiceConfig{
		Catalog: catalog,
		Source:  source,
	})
	return svc, catalog
}

func TestRoll_LegendaryTierWins(t *testing.T) {
	source := rng.NewManualSource()
	svc, _ := newTestService(source)

	// Tier draw lands inside the legendary bracket (0.5%), weight draw
	// picks the second entry (weights 50/30/20)
	source.SetDraws([]int64{4_999, 50})

	result, err := svc.Roll(context.Background(), &RollInput{})
	require.NoError(t, err)

	assert.True(t, result.Dropped)
	assert.Equal(t, entities.RarityLegendary, result.Rarity)
	require.NotNil(t, result.Item)
	assert.Equal(t, entities.ItemTitleRelentless, result.Item.Code)
	assert.Equal(t, 1, result.Quantity)
	assert.Zero(t, result.InstantXP)
}

func TestRoll_FirstEntryAtWeightBoundary(t *testing.T) {
	source := rng.NewManualSource()
	svc, _ := newTestService(source)

	// Weight draw 49 is the last value inside the first entry's weight 50
	source.SetDraws([]int64{4_999, 49})

	result, err := svc.Roll(context.Background(), &RollInput{})
	require.NoError(t, err)
	assert.Equal(t, entities.ItemLootBoxEpic, result.Item.Code)
}

func TestRoll_NoTierMatched(t *testing.T) {
	source := rng.NewManualSource()
	svc, _ := newTestService(source)

	// Cumulative chance of the standard table is 355,000 ppm; a draw at
	// exactly that value misses every tier
	source.SetDraws([]int64{355_000})

	result, err := svc.Roll(context.Background(), &RollInput{})
	require.NoError(t, err)

	assert.False(t, result.Dropped)
	assert.Nil(t, result.Item)
}

func TestRoll_TierOverlapResolvedByOrder(t *testing.T) {
	source := rng.NewManualSource()
	svc, _ := newTestService(source)

	// 104,999 is the last draw inside the rare bracket; 105,000 is the
	// first inside common. Ties resolve by the high-to-low scan, never
	// by re-rolling.
	source.SetDraws([]int64{104_999, 0})
	result, err := svc.Roll(context.Background(), &RollInput{})
	require.NoError(t, err)
	assert.Equal(t, entities.RarityRare, result.Rarity)

	source.SetDraws([]int64{105_000, 0})
	result, err = svc.Roll(context.Background(), &RollInput{})
	require.NoError(t, err)
	assert.Equal(t, entities.RarityCommon, result.Rarity)
}

func TestRoll_InstantXPEntry(t *testing.T) {
	source := rng.NewManualSource()
	svc, _ := newTestService(source)

	// Common tier, weight draw 60 lands on the xp spark (weights 60/40)
	source.SetDraws([]int64{105_000, 60})

	result, err := svc.Roll(context.Background(), &RollInput{})
	require.NoError(t, err)

	assert.True(t, result.Dropped)
	assert.Equal(t, entities.ItemXPSpark, result.Item.Code)
	assert.Equal(t, 25, result.InstantXP)
	assert.Zero(t, result.Quantity, "instant XP drops are never granted into inventory")
}

func TestRoll_LuckAdjustsAndCapsChance(t *testing.T) {
	source := rng.NewManualSource()
	svc, _ := newTestService(source)

	// With luck 10 the rare and common tiers both cap at 500,000 ppm:
	// cumulative brackets are 50k / 250k / 750k / 1.25M, so the largest
	// possible draw still lands in the common tier
	source.SetDraws([]int64{999_999, 0})
	result, err := svc.Roll(context.Background(), &RollInput{Luck: 10})
	require.NoError(t, err)
	assert.Equal(t, entities.RarityCommon, result.Rarity)

	source.SetDraws([]int64{749_999, 0})
	result, err = svc.Roll(context.Background(), &RollInput{Luck: 10})
	require.NoError(t, err)
	assert.Equal(t, entities.RarityRare, result.Rarity)
}

func TestRoll_NegativeLuckRejected(t *testing.T) {
	svc, _ := newTestService(rng.NewManualSource())

	_, err := svc.Roll(context.Background(), &RollInput{Luck: -1})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidArgument(err))
}

func TestRoll_ZeroTotalWeightIsNoDrop(t *testing.T) {
	source := rng.NewManualSource()
	svc, _ := newTestService(source)

	table := &entities.DropTable{
		Name: "broken",
		Tiers: []entities.DropTier{
			{
				Rarity:    entities.RarityEpic,
				ChancePPM: 500_000,
				Entries:   []entities.DropEntry{{ItemCode: "nothing", Weight: 0}},
			},
		},
	}

	source.SetDraws([]int64{0})
	result, err := svc.Roll(context.Background(), &RollInput{Table: table})
	require.NoError(t, err)
	assert.False(t, result.Dropped)
}

func TestRoll_LazilyRegistersItemDefinition(t *testing.T) {
	source := rng.NewManualSource()
	svc, catalog := newTestService(source)

	_, err := catalog.GetByCode(context.Background(), entities.ItemStreakShield)
	assert.True(t, apperr.IsNotFound(err))

	source.SetDraws([]int64{105_000, 0, 105_000, 0})

	result, err := svc.Roll(context.Background(), &RollInput{})
	require.NoError(t, err)
	require.Equal(t, entities.ItemStreakShield, result.Item.Code)

	def, err := catalog.GetByCode(context.Background(), entities.ItemStreakShield)
	require.NoError(t, err)
	assert.Equal(t, "Streak Shield", def.Name)
	assert.True(t, def.Stackable)
	assert.Equal(t, 3, def.MaxStack)

	// Second roll of the same code reuses the stored definition
	_, err = svc.Roll(context.Background(), &RollInput{})
	require.NoError(t, err)

	again, err := catalog.GetByCode(context.Background(), entities.ItemStreakShield)
	require.NoError(t, err)
	assert.Equal(t, def, again)
}

func TestOpenLootBox_EligibleTierWins(t *testing.T) {
	source := rng.NewManualSource()
	svc, _ := newTestService(source)

	// Eligible brackets at rare+: legendary 5k, epic 25k, rare 105k
	source.SetDraws([]int64{104_999, 0})

	result, err := svc.OpenLootBox(context.Background(), &OpenLootBoxInput{
		MinRarity: entities.RarityRare,
	})
	require.NoError(t, err)

	assert.True(t, result.Dropped)
	assert.Equal(t, entities.RarityRare, result.Rarity)
	assert.Equal(t, entities.ItemBoost1H, result.Item.Code)
}

func TestOpenLootBox_HeadroomFallsBackToLowestEligible(t *testing.T) {
	source := rng.NewManualSource()
	svc, _ := newTestService(source)

	// Draw well past the cumulative chance of the eligible subset: the
	// lowest eligible tier wins instead of returning nothing
	source.SetDraws([]int64{999_999, 99})

	result, err := svc.OpenLootBox(context.Background(), &OpenLootBoxInput{
		MinRarity: entities.RarityRare,
	})
	require.NoError(t, err)

	assert.True(t, result.Dropped, "opening a loot box is never a no-op")
	assert.Equal(t, entities.RarityRare, result.Rarity)
	assert.Equal(t, entities.ItemFrameSilver, result.Item.Code)
}

func TestOpenLootBox_NoEligibleTier(t *testing.T) {
	source := rng.NewManualSource()
	svc, _ := newTestService(source)

	table := &entities.DropTable{
		Name: "commons-only",
		Tiers: []entities.DropTier{
			{
				Rarity:    entities.RarityCommon,
				ChancePPM: 300_000,
				Entries:   []entities.DropEntry{{ItemCode: entities.ItemXPSpark, Weight: 1}},
			},
		},
	}

	result, err := svc.OpenLootBox(context.Background(), &OpenLootBoxInput{
		Table:     table,
		MinRarity: entities.RarityEpic,
	})
	require.NoError(t, err)
	assert.False(t, result.Dropped)
}

func TestOpenLootBox_InvalidMinRarity(t *testing.T) {
	svc, _ := newTestService(rng.NewManualSource())

	_, err := svc.OpenLootBox(context.Background(), &OpenLootBoxInput{MinRarity: "mythic"})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidArgument(err))
}

func TestRoll_ObservedFrequenciesMatchConfigured(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping statistical test in short mode")
	}

	svc, _ := newTestService(rng.NewSeededSource(42))
	table := entities.StandardDropTable()

	const trials = 200_000
	counts := make(map[entities.Rarity]int)
	for i := 0; i < trials; i++ {
		result, err := svc.Roll(context.Background(), &RollInput{Table: table})
		require.NoError(t, err)
		if result.Dropped {
			counts[result.Rarity]++
		}
	}

	for _, tier := range table.Tiers {
		expected := float64(trials) * float64(tier.ChancePPM) / float64(entities.ChanceScale)
		observed := float64(counts[tier.Rarity])
		assert.InDelta(t, expected, observed, expected*0.20,
			"rarity %s: observed %v expected %v", tier.Rarity, observed, expected)
	}
}

func TestRoll_LegendaryOnlyTableDropRate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping statistical test in short mode")
	}

	svc, _ := newTestService(rng.NewSeededSource(7))

	table := &entities.DropTable{
		Name: "legendary-only",
		Tiers: []entities.DropTier{
			{
				Rarity:    entities.RarityLegendary,
				ChancePPM: 5_000, // 0.5%
				Entries:   []entities.DropEntry{{ItemCode: entities.ItemTitleRelentless, Weight: 1}},
			},
		},
	}

	const trials = 1_000_000
	dropped := 0
	for i := 0; i < trials; i++ {
		result, err := svc.Roll(context.Background(), &RollInput{Table: table})
		require.NoError(t, err)
		if result.Dropped {
			dropped++
		}
	}

	expected := float64(trials) * 0.005
	assert.InDelta(t, expected, float64(dropped), expected*0.20)
}
