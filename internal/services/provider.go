package services

import (
	"github.com/habitforge/progression/internal/clock"
	"github.com/habitforge/progression/internal/lock"
	"github.com/habitforge/progression/internal/repositories/inventory"
	"github.com/habitforge/progression/internal/repositories/items"
	"github.com/habitforge/progression/internal/repositories/profiles"
	"github.com/habitforge/progression/internal/rng"
	consumableService "github.com/habitforge/progression/internal/services/consumable"
	ledgerService "github.com/habitforge/progression/internal/services/ledger"
	progressService "github.com/habitforge/progression/internal/services/progress"
	rewardsService "github.com/habitforge/progression/internal/services/rewards"
	"github.com/habitforge/progression/internal/uuid"
)

// Provider holds all service instances
type Provider struct {
	Rewards    rewardsService.Service
	Ledger     ledgerService.Service
	Consumable consumableService.Service
	Progress   progressService.Service
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	ItemRepository      items.Repository
	InventoryRepository inventory.Repository
	ProfileRepository   profiles.Repository
	Source              rng.Source
	TimeProvider        clock.TimeProvider
	UUIDGenerator       uuid.Generator
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	if cfg == nil {
		cfg = &ProviderConfig{}
	}

	// Use in-memory repositories if none provided
	itemRepo := cfg.ItemRepository
	if itemRepo == nil {
		itemRepo = items.NewInMemoryRepository()
	}

	inventoryRepo := cfg.InventoryRepository
	if inventoryRepo == nil {
		inventoryRepo = inventory.NewInMemoryRepository()
	}

	profileRepo := cfg.ProfileRepository
	if profileRepo == nil {
		profileRepo = profiles.NewInMemoryRepository()
	}

	// One locker for everything that mutates per-owner state, so grants,
	// consumes and XP awards for an owner serialize against each other
	locker := lock.NewOwnerLocker()

	rewardsSvc := rewardsService.NewService(&rewardsService.ServiceConfig{
		Catalog: itemRepo,
		Source:  cfg.Source,
	})

	ledgerSvc := ledgerService.NewService(&ledgerService.ServiceConfig{
		Repository:   inventoryRepo,
		Catalog:      itemRepo,
		Locker:       locker,
		UUIDGen:      cfg.UUIDGenerator,
		TimeProvider: cfg.TimeProvider,
	})

	progressSvc := progressService.NewService(&progressService.ServiceConfig{
		Profiles:     profileRepo,
		Locker:       locker,
		TimeProvider: cfg.TimeProvider,
	})

	consumableSvc := consumableService.NewService(&consumableService.ServiceConfig{
		Ledger:       ledgerSvc,
		Rewards:      rewardsSvc,
		Profiles:     profileRepo,
		TimeProvider: cfg.TimeProvider,
	})

	return &Provider{
		Rewards:    rewardsSvc,
		Ledger:     ledgerSvc,
		Consumable: consumableSvc,
		Progress:   progressSvc,
	}
}
