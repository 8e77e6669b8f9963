// Package storage 提供使用者份量偏好與失敗紀錄的持久化：
// Redis 為正式實作，另附行程內的記憶體版本供測試與未配置 Redis 時使用。
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"nutrition-resolver/internal/infrastructure/config"
	"nutrition-resolver/internal/pkg/common"
)

const (
	preferenceKeyPrefix = "pref:portion:"
	preferenceTTL       = 0 // 偏好不過期
)

// PreferenceStore 使用者慣用份量的讀寫；Get 查無資料回 (nil, nil)
type PreferenceStore interface {
	Get(ctx context.Context, productKey string) (*common.PortionPreference, error)
	Upsert(ctx context.Context, pref common.PortionPreference) error
}

// RedisPreferenceStore Redis 實作
type RedisPreferenceStore struct {
	client *redis.Client
}

// NewRedisClient 建立並驗證 Redis 連線
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisPreferenceStore 建立偏好存放
func NewRedisPreferenceStore(client *redis.Client) *RedisPreferenceStore {
	return &RedisPreferenceStore{client: client}
}

// Get 讀取偏好；redis.Nil 視為查無資料
func (s *RedisPreferenceStore) Get(ctx context.Context, productKey string) (*common.PortionPreference, error) {
	data, err := s.client.Get(ctx, preferenceKeyPrefix+productKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preference: %w", err)
	}

	var pref common.PortionPreference
	if err := json.Unmarshal(data, &pref); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preference: %w", err)
	}
	return &pref, nil
}

// Upsert 以 productKey 覆寫偏好
func (s *RedisPreferenceStore) Upsert(ctx context.Context, pref common.PortionPreference) error {
	if pref.ProductKey == "" {
		return fmt.Errorf("product key is required")
	}
	if pref.PortionGrams < 1 {
		return fmt.Errorf("portion grams must be at least 1")
	}
	pref.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("failed to marshal preference: %w", err)
	}
	if err := s.client.Set(ctx, preferenceKeyPrefix+pref.ProductKey, data, preferenceTTL).Err(); err != nil {
		return fmt.Errorf("failed to set preference: %w", err)
	}
	return nil
}
