// db/redis.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
)

var RedisClient *redis.Client

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

const ruleSnapshotKeyPrefix = "maskrules:"

// RuleSnapshotStore persists masking rule snapshots in Redis so the
// in-memory rule store survives restarts. It implements rules.Persistence.
type RuleSnapshotStore struct {
	client *redis.Client
}

func NewRuleSnapshotStore(client *redis.Client) *RuleSnapshotStore {
	return &RuleSnapshotStore{client: client}
}

// SaveRuleSet writes one (role, reportType) snapshot through to Redis.
func (s *RuleSnapshotStore) SaveRuleSet(ctx context.Context, set *model.MaskingRuleSet) error {
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal rule set: %w", err)
	}

	key := fmt.Sprintf("%s%s:%s", ruleSnapshotKeyPrefix, set.Role, set.ReportType)
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to persist rule set: %w", err)
	}

	logger.Debug("Rule set persisted",
		zap.String("role", set.Role.String()),
		zap.String("reportType", string(set.ReportType)))
	return nil
}

// LoadRuleSets reads every persisted snapshot. Used once at startup.
func (s *RuleSnapshotStore) LoadRuleSets(ctx context.Context) ([]*model.MaskingRuleSet, error) {
	var sets []*model.MaskingRuleSet

	iter := s.client.Scan(ctx, 0, ruleSnapshotKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("failed to read rule set %s: %w", iter.Val(), err)
		}

		var set model.MaskingRuleSet
		if err := json.Unmarshal(data, &set); err != nil {
			logger.Warn("Skipping unreadable rule snapshot",
				zap.String("key", iter.Val()), zap.Error(err))
			continue
		}
		sets = append(sets, &set)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan rule snapshots: %w", err)
	}

	return sets, nil
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}

// LockResource takes a best-effort distributed lock, used to serialize
// administrative rule updates across instances.
func LockResource(ctx context.Context, resourceName string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:%s", resourceName)
	locked, err := RedisClient.SetNX(ctx, key, "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	logger.Debug("Lock acquisition attempt",
		zap.String("resource", resourceName),
		zap.Bool("locked", locked))
	return locked, nil
}

// RedisLocker adapts the lock helpers to the service layer's locker
// interface.
type RedisLocker struct{}

func (RedisLocker) Lock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return LockResource(ctx, name, ttl)
}

func (RedisLocker) Unlock(ctx context.Context, name string) error {
	return UnlockResource(ctx, name)
}

func UnlockResource(ctx context.Context, resourceName string) error {
	key := fmt.Sprintf("lock:%s", resourceName)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	logger.Debug("Lock released", zap.String("resource", resourceName))
	return nil
}
