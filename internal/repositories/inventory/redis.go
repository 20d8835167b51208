package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/habitforge/progression/internal/entities"
	apperr "github.com/habitforge/progression/internal/errors"
)

// redisRepo implements the Repository interface using Redis. Entries are
// JSON values with owner and owner+item index sets; every write touches the
// value and its indexes in one pipeline so a grant or consume commits as a
// unit.
type redisRepo struct {
	client redis.UniversalClient
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
}

// NewRedisRepository creates a new Redis-backed inventory repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}

	return &redisRepo{
		client: cfg.Client,
	}
}

// NewRedis creates a new Redis-backed inventory repository with defaults
func NewRedis(client redis.UniversalClient) Repository {
	return NewRedisRepository(&RedisRepoConfig{
		Client: client,
	})
}

// key generates the Redis key for an entry
func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("inventory:entry:%s", id)
}

// ownerKey generates the Redis key for an owner's entry index
func (r *redisRepo) ownerKey(ownerID string) string {
	return fmt.Sprintf("inventory:owner:%s:entries", ownerID)
}

// ownerItemKey generates the Redis key for an owner's entries of one item
func (r *redisRepo) ownerItemKey(ownerID, itemCode string) string {
	return fmt.Sprintf("inventory:owner:%s:item:%s:entries", ownerID, itemCode)
}

// Create stores a new inventory entry
func (r *redisRepo) Create(ctx context.Context, entry *entities.InventoryEntry) error {
	if entry == nil {
		return apperr.InvalidArgument("entry cannot be nil")
	}
	if entry.ID == "" {
		return apperr.InvalidArgument("entry ID is required")
	}
	if entry.OwnerID == "" {
		return apperr.InvalidArgument("entry owner ID is required")
	}
	if entry.ItemCode == "" {
		return apperr.InvalidArgument("entry item code is required")
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(entry.ID), jsonData, 0)
	pipe.SAdd(ctx, r.ownerKey(entry.OwnerID), entry.ID)
	pipe.SAdd(ctx, r.ownerItemKey(entry.OwnerID, entry.ItemCode), entry.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*entities.InventoryEntry, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("entry ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(id)).Result()
	if err == redis.Nil {
		return nil, apperr.NotFoundf("entry with ID '%s' not found", id).
			WithMeta("entry_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	var entry entities.InventoryEntry
	if unmarshalErr := json.Unmarshal([]byte(jsonData), &entry); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", unmarshalErr)
	}
	return &entry, nil
}

// Update overwrites an existing entry
func (r *redisRepo) Update(ctx context.Context, entry *entities.InventoryEntry) error {
	if entry == nil {
		return apperr.InvalidArgument("entry cannot be nil")
	}
	if entry.ID == "" {
		return apperr.InvalidArgument("entry ID is required")
	}

	exists, err := r.client.Exists(ctx, r.key(entry.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check entry existence: %w", err)
	}
	if exists == 0 {
		return apperr.NotFoundf("entry with ID '%s' not found", entry.ID).
			WithMeta("entry_id", entry.ID)
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if err := r.client.Set(ctx, r.key(entry.ID), jsonData, 0).Err(); err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	return nil
}

// Delete removes an entry and its index memberships
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperr.InvalidArgument("entry ID is required")
	}

	// Need the entry to know which index sets to clean up
	entry, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.key(id))
	pipe.SRem(ctx, r.ownerKey(entry.OwnerID), id)
	pipe.SRem(ctx, r.ownerItemKey(entry.OwnerID, entry.ItemCode), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

// ListByOwnerAndItem retrieves entries for an owner and item, oldest first
func (r *redisRepo) ListByOwnerAndItem(ctx context.Context, ownerID, itemCode string) ([]*entities.InventoryEntry, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}
	if itemCode == "" {
		return nil, apperr.InvalidArgument("item code is required")
	}

	ids, err := r.client.SMembers(ctx, r.ownerItemKey(ownerID, itemCode)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list entry IDs: %w", err)
	}

	return r.fetchSorted(ctx, ids)
}

// ListByOwner retrieves all entries for an owner
func (r *redisRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entities.InventoryEntry, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	ids, err := r.client.SMembers(ctx, r.ownerKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list entry IDs: %w", err)
	}

	return r.fetchSorted(ctx, ids)
}

// fetchSorted loads entries concurrently and orders them oldest first
func (r *redisRepo) fetchSorted(ctx context.Context, ids []string) ([]*entities.InventoryEntry, error) {
	var mu sync.Mutex
	entries := make([]*entities.InventoryEntry, 0, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			entry, err := r.Get(gctx, id)
			if err != nil {
				if apperr.IsNotFound(err) {
					// Index can briefly point at a deleted entry
					return nil
				}
				return err
			}
			mu.Lock()
			entries = append(entries, entry)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortByAcquiredAt(entries)
	return entries, nil
}
