package items

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/habitforge/progression/internal/entities"
	apperr "github.com/habitforge/progression/internal/errors"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mockClient *redis.Client
	mock       redismock.ClientMock
	repo       Repository
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.repo = NewRedis(s.mockClient)
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func testDefinition() *entities.ItemDefinition {
	return &entities.ItemDefinition{
		Code:      "test_shield",
		Name:      "Test Shield",
		Icon:      "shield",
		Rarity:    entities.RarityCommon,
		Kind:      entities.ItemKindConsumable,
		Stackable: true,
		MaxStack:  3,
		Effect:    &entities.Effect{Kind: entities.EffectStreakShield},
	}
}

func (s *RedisRepoTestSuite) TestGetByCode() {
	ctx := context.Background()
	def := testDefinition()
	jsonData, err := json.Marshal(def)
	s.Require().NoError(err)

	// Happy path
	s.mock.ExpectGet("item:test_shield").SetVal(string(jsonData))

	got, err := s.repo.GetByCode(ctx, "test_shield")
	s.NoError(err)
	s.Equal(def, got)

	// Not found
	s.mock.ExpectGet("item:missing").RedisNil()

	_, err = s.repo.GetByCode(ctx, "missing")
	s.Error(err)
	s.True(apperr.IsNotFound(err))

	// Dependency error
	s.mock.ExpectGet("item:test_shield").SetErr(errors.New("redis error"))

	_, err = s.repo.GetByCode(ctx, "test_shield")
	s.Error(err)

	// Input validation
	_, err = s.repo.GetByCode(ctx, "")
	s.Error(err)
}

func (s *RedisRepoTestSuite) TestUpsertByCode() {
	ctx := context.Background()
	def := testDefinition()
	jsonData, err := json.Marshal(def)
	s.Require().NoError(err)

	// First writer wins
	s.mock.ExpectSetNX("item:test_shield", jsonData, 0).SetVal(true)
	s.mock.ExpectSAdd("items:catalog", "test_shield").SetVal(1)

	got, err := s.repo.UpsertByCode(ctx, def)
	s.NoError(err)
	s.Equal(def.Code, got.Code)

	// Lost the race: the stored definition comes back, not ours
	stored := testDefinition()
	stored.Name = "Previously Stored Shield"
	storedData, err := json.Marshal(stored)
	s.Require().NoError(err)

	s.mock.ExpectSetNX("item:test_shield", jsonData, 0).SetVal(false)
	s.mock.ExpectSAdd("items:catalog", "test_shield").SetVal(0)
	s.mock.ExpectGet("item:test_shield").SetVal(string(storedData))

	got, err = s.repo.UpsertByCode(ctx, def)
	s.NoError(err)
	s.Equal("Previously Stored Shield", got.Name)

	// Input validation
	_, err = s.repo.UpsertByCode(ctx, nil)
	s.Error(err)

	invalid := testDefinition()
	invalid.Rarity = "mythic"
	_, err = s.repo.UpsertByCode(ctx, invalid)
	s.Error(err)
	s.True(apperr.IsInvalidArgument(err))
}

func (s *RedisRepoTestSuite) TestList() {
	ctx := context.Background()
	def := testDefinition()
	jsonData, err := json.Marshal(def)
	s.Require().NoError(err)

	s.mock.ExpectSMembers("items:catalog").SetVal([]string{"test_shield", "gone"})
	s.mock.ExpectGet("item:test_shield").SetVal(string(jsonData))
	// Codes whose definition vanished are skipped, not fatal
	s.mock.ExpectGet("item:gone").RedisNil()

	defs, err := s.repo.List(ctx)
	s.NoError(err)
	s.Len(defs, 1)
	s.Equal("test_shield", defs[0].Code)
}
