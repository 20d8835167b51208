package items

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/habitforge/progression/internal/entities"
	apperr "github.com/habitforge/progression/internal/errors"
)

// redisRepo implements the Repository interface using Redis
type redisRepo struct {
	client redis.UniversalClient
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
}

// NewRedisRepository creates a new Redis-backed catalog repository
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

// NewRedis creates a new Redis-backed catalog repository with defaults
func NewRedis(client redis.UniversalClient) Repository {
	return NewRedisRepository(&RedisRepoConfig{
		Client: client,
	})
}

// key generates the Redis key for an item definition
func (r *redisRepo) key(code string) string {
	return fmt.Sprintf("item:%s", code)
}

// catalogKey generates the Redis key for the catalog code index
func (r *redisRepo) catalogKey() string {
	return "items:catalog"
}

// GetByCode retrieves an item definition by code
func (r *redisRepo) GetByCode(ctx context.Context, code string) (*entities.ItemDefinition, error) {
	if code == "" {
		return nil, apperr.InvalidArgument("item code is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(code)).Result()
	if err == redis.Nil {
		return nil, apperr.NotFoundf("item with code '%s' not found", code).
			WithMeta("item_code", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	var def entities.ItemDefinition
	if unmarshalErr := json.Unmarshal([]byte(jsonData), &def); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", unmarshalErr)
	}
	return &def, nil
}

// UpsertByCode stores the definition with SETNX semantics so the first
// writer wins and concurrent first rolls of a new code cannot race
func (r *redisRepo) UpsertByCode(ctx context.Context, def *entities.ItemDefinition) (*entities.ItemDefinition, error) {
	if def == nil {
		return nil, apperr.InvalidArgument("item definition cannot be nil")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}

	created, err := r.client.SetNX(ctx, r.key(def.Code), jsonData, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to upsert item: %w", err)
	}

	if err := r.client.SAdd(ctx, r.catalogKey(), def.Code).Err(); err != nil {
		return nil, fmt.Errorf("failed to index item: %w", err)
	}

	if created {
		copied := *def
		return &copied, nil
	}

	// Someone else wrote first; return what is stored
	return r.GetByCode(ctx, def.Code)
}

// List retrieves all item definitions in the catalog
func (r *redisRepo) List(ctx context.Context) ([]*entities.ItemDefinition, error) {
	codes, err := r.client.SMembers(ctx, r.catalogKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list item codes: %w", err)
	}

	defs := make([]*entities.ItemDefinition, 0, len(codes))
	for _, code := range codes {
		def, err := r.GetByCode(ctx, code)
		if err != nil {
			// Skip definitions that can't be loaded
			continue
		}
		defs = append(defs, def)
	}
	return defs, nil
}
