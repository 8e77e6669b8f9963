package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"nutrition-resolver/internal/pkg/common"
)

const failedLookupListKey = "failed_lookups"

// FailedLookupLog 失敗紀錄池：只追加，寫入失敗由呼叫端吞掉
type FailedLookupLog interface {
	Record(ctx context.Context, lookup common.FailedLookup) error
}

// RedisFailedLookupLog Redis list 實作
type RedisFailedLookupLog struct {
	client *redis.Client
}

// NewRedisFailedLookupLog 建立失敗紀錄池
func NewRedisFailedLookupLog(client *redis.Client) *RedisFailedLookupLog {
	return &RedisFailedLookupLog{client: client}
}

// Record 追加一筆失敗紀錄
func (l *RedisFailedLookupLog) Record(ctx context.Context, lookup common.FailedLookup) error {
	data, err := json.Marshal(lookup)
	if err != nil {
		return fmt.Errorf("failed to marshal failed lookup: %w", err)
	}
	if err := l.client.RPush(ctx, failedLookupListKey, data).Err(); err != nil {
		return fmt.Errorf("failed to append failed lookup: %w", err)
	}
	return nil
}
