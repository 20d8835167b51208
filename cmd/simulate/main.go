// simulate exercises the progression engine end to end: it runs a batch of
// drop rolls, reports observed rarity frequencies against the configured
// chances, and walks one owner through a grant / use round trip.
package main

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/habitforge/progression/internal/config"
	"github.com/habitforge/progression/internal/entities"
	"github.com/habitforge/progression/internal/leveling"
	"github.com/habitforge/progression/internal/repositories/inventory"
	"github.com/habitforge/progression/internal/repositories/items"
	"github.com/habitforge/progression/internal/repositories/profiles"
	"github.com/habitforge/progression/internal/rng"
	"github.com/habitforge/progression/internal/services"
	"github.com/habitforge/progression/internal/services/consumable"
	"github.com/habitforge/progression/internal/services/ledger"
	"github.com/habitforge/progression/internal/services/progress"
	"github.com/habitforge/progression/internal/services/rewards"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	providerCfg := &services.ProviderConfig{}
	if cfg.Simulate.Seed != 0 {
		providerCfg.Source = rng.NewSeededSource(cfg.Simulate.Seed)
	}

	ctx := context.Background()

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Printf("Failed to close Redis client: %v", err)
			}
		}()
		log.Printf("Using Redis at %s", cfg.Redis.Addr)

		providerCfg.ItemRepository = items.NewRedis(client)
		providerCfg.InventoryRepository = inventory.NewRedis(client)
		providerCfg.ProfileRepository = profiles.NewRedis(client)
	} else {
		log.Println("REDIS_ADDR not set, using in-memory repositories")
	}

	provider := services.NewProvider(providerCfg)

	if err := runRollBatch(ctx, provider, cfg.Simulate.Rolls, cfg.Simulate.Workers); err != nil {
		log.Fatalf("Roll batch failed: %v", err)
	}

	if err := runOwnerWalkthrough(ctx, provider); err != nil {
		log.Fatalf("Owner walkthrough failed: %v", err)
	}
}

// runRollBatch runs rolls across workers and prints per-rarity frequency
func runRollBatch(ctx context.Context, provider *services.Provider, rolls, workers int) error {
	table := entities.StandardDropTable()

	var mu sync.Mutex
	counts := make(map[entities.Rarity]int)
	dropped := 0

	g, gctx := errgroup.WithContext(ctx)
	perWorker := rolls / workers
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < perWorker; i++ {
				result, err := provider.Rewards.Roll(gctx, &rewards.RollInput{Table: table})
				if err != nil {
					return err
				}
				if result.Dropped {
					mu.Lock()
					counts[result.Rarity]++
					dropped++
					mu.Unlock()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	total := perWorker * workers
	fmt.Printf("rolled %d times, %d drops (%.2f%%)\n", total, dropped, 100*float64(dropped)/float64(total))
	for _, tier := range table.TiersByRarityDesc() {
		observed := float64(counts[tier.Rarity]) / float64(total)
		configured := float64(tier.ChancePPM) / float64(entities.ChanceScale)
		fmt.Printf("  %-10s observed %.4f%%  configured %.4f%%\n",
			tier.Rarity.DisplayName(), observed*100, configured*100)
	}
	return nil
}

// runOwnerWalkthrough grants and uses items for one owner
func runOwnerWalkthrough(ctx context.Context, provider *services.Provider) error {
	const owner = "simulated-owner"

	grant, err := provider.Ledger.Grant(ctx, &ledger.GrantInput{
		OwnerID:  owner,
		ItemCode: entities.ItemStreakShield,
		Quantity: 5,
		Source:   "simulation",
	})
	if err != nil {
		return err
	}
	fmt.Printf("granted 5x %s across %d entries\n", entities.ItemStreakShield, len(grant.Entries))

	used, err := provider.Consumable.Use(ctx, &consumable.UseInput{
		OwnerID:  owner,
		ItemCode: entities.ItemStreakShield,
	})
	if err != nil {
		return err
	}
	fmt.Printf("used %s, shields now %d, %d left in entry\n",
		used.Item.Name, used.Effect.ShieldCount, used.RemainingQuantity)

	award, err := provider.Progress.AwardXP(ctx, &progress.AwardXPInput{
		OwnerID: owner,
		Amount:  300,
		Curve:   leveling.Secondary,
		Source:  "simulation",
	})
	if err != nil {
		return err
	}
	fmt.Printf("awarded %d xp, level %d -> %d (%d/%d into level)\n",
		award.AwardedXP, award.Before.Level, award.After.Level,
		award.After.XPInLevel, award.After.XPToNext)

	return nil
}
