package profiles

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

// NewRedisRepository creates a new Redis-backed profile repository
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

// NewRedis creates a new Redis-backed profile repository with defaults
func NewRedis(client redis.UniversalClient) Repository {
	return NewRedisRepository(&RedisRepoConfig{
		Client: client,
	})
}

// key generates the Redis key for a profile
func (r *redisRepo) key(ownerID string) string {
	return fmt.Sprintf("profile:%s", ownerID)
}

// Get retrieves a profile by owner ID
func (r *redisRepo) Get(ctx context.Context, ownerID string) (*entities.Profile, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(ownerID)).Result()
	if err == redis.Nil {
		return nil, apperr.NotFoundf("profile for owner '%s' not found", ownerID).
			WithMeta("owner_id", ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profile entities.Profile
	if unmarshalErr := json.Unmarshal([]byte(jsonData), &profile); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", unmarshalErr)
	}
	return &profile, nil
}

// GetOrCreate retrieves a profile, creating an empty one if absent. The
// create uses SETNX so two concurrent first reads settle on one record.
func (r *redisRepo) GetOrCreate(ctx context.Context, ownerID string) (*entities.Profile, error) {
	profile, err := r.Get(ctx, ownerID)
	if err == nil {
		return profile, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	fresh := &entities.Profile{OwnerID: ownerID}
	jsonData, err := json.Marshal(fresh)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := r.client.SetNX(ctx, r.key(ownerID), jsonData, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return r.Get(ctx, ownerID)
}

// Save overwrites a profile
func (r *redisRepo) Save(ctx context.Context, profile *entities.Profile) error {
	if profile == nil {
		return apperr.InvalidArgument("profile cannot be nil")
	}
	if profile.OwnerID == "" {
		return apperr.InvalidArgument("profile owner ID is required")
	}

	jsonData, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := r.client.Set(ctx, r.key(profile.OwnerID), jsonData, 0).Err(); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
