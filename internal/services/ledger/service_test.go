package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mockclock "github.com/habitforge/progression/internal/clock/mock"
	"github.com/habitforge/progression/internal/entities"
	apperr "github.com/habitforge/progression/internal/errors"
	"github.com/habitforge/progression/internal/repositories/inventory"
	"github.com/habitforge/progression/internal/repositories/items"
)

type ledgerFixture struct {
	svc     Service
	repo    inventory.Repository
	catalog items.Repository
	now     time.Time
	clock   *mockclock.MockTimeProvider
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &ledgerFixture{
		repo:    inventory.NewInMemoryRepository(),
		catalog: items.NewInMemoryRepository(),
		now:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		clock:   mockclock.NewMockTimeProvider(ctrl),
	}
	f.clock.EXPECT().Now().DoAndReturn(func() time.Time {
		return f.now
	}).AnyTimes()

	f.svc = NewService(&ServiceConfig{
		Repository:   f.repo,
		Catalog:      f.catalog,
		TimeProvider: f.clock,
	})
	return f
}

// advance moves the fixture clock forward so later grants get later
// AcquiredAt stamps
func (f *ledgerFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func TestGrant_StackableSplitsAcrossStacks(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	// streak_shield stacks to 3, so 5 units land as [3, 2]
	result, err := f.svc.Grant(ctx, &GrantInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemStreakShield,
		Quantity: 5,
		Source:   "test",
	})
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	assert.Equal(t, 3, result.Entries[0].Quantity)
	assert.Equal(t, 2, result.Entries[1].Quantity)

	entries, err := f.svc.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestGrant_FillsExistingStackFirst(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	first, err := f.svc.Grant(ctx, &GrantInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemStreakShield,
		Quantity: 2,
	})
	require.NoError(t, err)
	require.Len(t, first.Entries, 1)
	firstID := first.Entries[0].ID

	f.advance(time.Hour)

	second, err := f.svc.Grant(ctx, &GrantInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemStreakShield,
		Quantity: 2,
	})
	require.NoError(t, err)

	// One unit tops up the existing stack to 3, one opens a new stack
	require.Len(t, second.Entries, 2)
	assert.Equal(t, firstID, second.Entries[0].ID)
	assert.Equal(t, 3, second.Entries[0].Quantity)
	assert.Equal(t, 1, second.Entries[1].Quantity)
}

func TestGrant_IncrementRefreshesAcquiredAt(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	first, err := f.svc.Grant(ctx, &GrantInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemStreakShield,
		Quantity: 1,
	})
	require.NoError(t, err)
	originalAt := first.Entries[0].AcquiredAt

	f.advance(2 * time.Hour)

	second, err := f.svc.Grant(ctx, &GrantInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemStreakShield,
		Quantity: 1,
	})
	require.NoError(t, err)

	require.Len(t, second.Entries, 1)
	assert.Equal(t, first.Entries[0].ID, second.Entries[0].ID)
	assert.True(t, second.Entries[0].AcquiredAt.After(originalAt),
		"topping up a stack refreshes its acquisition time")
}

func TestGrant_UnstackableCreatesEntryPerUnit(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	// The fox companion is an unstackable pet
	result, err := f.svc.Grant(ctx, &GrantInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemCompanionFox,
		Quantity: 3,
	})
	require.NoError(t, err)

	require.Len(t, result.Entries, 3)
	for _, entry := range result.Entries {
		assert.Equal(t, 1, entry.Quantity)
	}
}

func TestGrant_Validation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.svc.Grant(ctx, &GrantInput{ItemCode: entities.ItemStreakShield, Quantity: 1})
	assert.True(t, apperr.IsInvalidArgument(err))

	_, err = f.svc.Grant(ctx, &GrantInput{OwnerID: "owner-1", Quantity: 1})
	assert.True(t, apperr.IsInvalidArgument(err))

	_, err = f.svc.Grant(ctx, &GrantInput{OwnerID: "owner-1", ItemCode: entities.ItemStreakShield, Quantity: 0})
	assert.True(t, apperr.IsInvalidArgument(err))

	_, err = f.svc.Grant(ctx, &GrantInput{OwnerID: "owner-1", ItemCode: "no-such-item", Quantity: 1})
	assert.True(t, apperr.IsNotFound(err))
}

func TestGrant_ConcurrentGrantsAreLossless(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	// Grant stacking is a read-modify-write; interleaved grants for the
	// same owner must serialize or units get lost
	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Grant(ctx, &GrantInput{
				OwnerID:  "owner-1",
				ItemCode: entities.ItemStreakShield,
				Quantity: 1,
				Source:   "concurrent",
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := f.svc.List(ctx, "owner-1")
	require.NoError(t, err)

	total := 0
	for _, entry := range entries {
		assert.LessOrEqual(t, entry.Quantity, 3, "stacks must stay within max stack")
		assert.Positive(t, entry.Quantity)
		total += entry.Quantity
	}
	assert.Equal(t, workers, total, "every granted unit must be accounted for")
}

func TestConsume_OldestEntryFirst(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	older, err := f.svc.Grant(ctx, &GrantInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemCompanionFox,
		Quantity: 1,
	})
	require.NoError(t, err)

	f.advance(time.Hour)

	_, err = f.svc.Grant(ctx, &GrantInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemCompanionFox,
		Quantity: 1,
	})
	require.NoError(t, err)

	result, err := f.svc.Consume(ctx, &ConsumeInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemCompanionFox,
	})
	require.NoError(t, err)

	assert.Equal(t, older.Entries[0].ID, result.EntryID)
}

func TestConsume_DeletesEntryAtZero(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	granted, err := f.svc.Grant(ctx, &GrantInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemStreakShield,
		Quantity: 2,
	})
	require.NoError(t, err)
	entryID := granted.Entries[0].ID

	result, err := f.svc.Consume(ctx, &ConsumeInput{OwnerID: "owner-1", ItemCode: entities.ItemStreakShield})
	require.NoError(t, err)
	assert.Equal(t, 1, result.RemainingQuantity)
	assert.False(t, result.Deleted)

	result, err = f.svc.Consume(ctx, &ConsumeInput{OwnerID: "owner-1", ItemCode: entities.ItemStreakShield})
	require.NoError(t, err)
	assert.Zero(t, result.RemainingQuantity)
	assert.True(t, result.Deleted)

	entries, err := f.svc.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, entries, "entry %s should be gone", entryID)
}

func TestConsume_ExplicitEntryID(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	granted, err := f.svc.Grant(ctx, &GrantInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemCompanionFox,
		Quantity: 2,
	})
	require.NoError(t, err)
	target := granted.Entries[1]

	result, err := f.svc.Consume(ctx, &ConsumeInput{
		OwnerID: "owner-1",
		EntryID: target.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, target.ID, result.EntryID)
}

func TestConsume_EntryOwnedBySomeoneElse(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	granted, err := f.svc.Grant(ctx, &GrantInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemStreakShield,
		Quantity: 1,
	})
	require.NoError(t, err)

	// Another owner naming the entry explicitly gets not-found, never a
	// hint that the entry exists
	_, err = f.svc.Consume(ctx, &ConsumeInput{
		OwnerID: "owner-2",
		EntryID: granted.Entries[0].ID,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestConsume_NothingToConsume(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.svc.Consume(context.Background(), &ConsumeInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemStreakShield,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestConsumeWith_ApplyErrorLeavesEntryUntouched(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.svc.Grant(ctx, &GrantInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemStreakShield,
		Quantity: 3,
	})
	require.NoError(t, err)

	_, err = f.svc.ConsumeWith(ctx, &ConsumeInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemStreakShield,
	}, func(def *entities.ItemDefinition, entry *entities.InventoryEntry) error {
		return apperr.InvalidState("effect refused to apply")
	})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidState(err))

	entries, err := f.svc.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].Quantity, "failed apply must not decrement")
}

func TestConsumeWith_ApplySeesDefinitionAndEntry(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.svc.Grant(ctx, &GrantInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemBoost1H,
		Quantity: 1,
	})
	require.NoError(t, err)

	var seenCode string
	var seenQuantity int
	result, err := f.svc.ConsumeWith(ctx, &ConsumeInput{
		OwnerID:  "owner-1",
		ItemCode: entities.ItemBoost1H,
	}, func(def *entities.ItemDefinition, entry *entities.InventoryEntry) error {
		seenCode = def.Code
		seenQuantity = entry.Quantity
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, entities.ItemBoost1H, seenCode)
	assert.Equal(t, 1, seenQuantity, "apply runs before the decrement")
	assert.True(t, result.Deleted)
}

func TestList_OldestFirstAcrossItems(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.svc.Grant(ctx, &GrantInput{OwnerID: "owner-1", ItemCode: entities.ItemBoost1H, Quantity: 1})
	require.NoError(t, err)
	f.advance(time.Minute)
	_, err = f.svc.Grant(ctx, &GrantInput{OwnerID: "owner-1", ItemCode: entities.ItemStreakShield, Quantity: 1})
	require.NoError(t, err)

	entries, err := f.svc.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entities.ItemBoost1H, entries[0].ItemCode)
	assert.Equal(t, entities.ItemStreakShield, entries[1].ItemCode)
}
