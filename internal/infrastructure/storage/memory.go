package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nutrition-resolver/internal/pkg/common"
)

// MemoryPreferenceStore 行程內的偏好存放，測試與未配置 Redis 時使用
type MemoryPreferenceStore struct {
	mu    sync.RWMutex
	prefs map[string]common.PortionPreference
}

// NewMemoryPreferenceStore 建立記憶體偏好存放
func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{
		prefs: make(map[string]common.PortionPreference),
	}
}

// Get 讀取偏好；查無資料回 (nil, nil)
func (s *MemoryPreferenceStore) Get(ctx context.Context, productKey string) (*common.PortionPreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pref, ok := s.prefs[productKey]
	if !ok {
		return nil, nil
	}
	copied := pref
	return &copied, nil
}

// Upsert 以 productKey 覆寫偏好
func (s *MemoryPreferenceStore) Upsert(ctx context.Context, pref common.PortionPreference) error {
	if pref.ProductKey == "" {
		return fmt.Errorf("product key is required")
	}
	if pref.PortionGrams < 1 {
		return fmt.Errorf("portion grams must be at least 1")
	}
	pref.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[pref.ProductKey] = pref
	return nil
}

// MemoryFailedLookupLog 行程內的失敗紀錄池
type MemoryFailedLookupLog struct {
	mu      sync.Mutex
	entries []common.FailedLookup
}

// NewMemoryFailedLookupLog 建立記憶體失敗紀錄池
func NewMemoryFailedLookupLog() *MemoryFailedLookupLog {
	return &MemoryFailedLookupLog{}
}

// Record 追加一筆失敗紀錄
func (l *MemoryFailedLookupLog) Record(ctx context.Context, lookup common.FailedLookup) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, lookup)
	return nil
}

// Entries 回傳目前累積的紀錄副本
func (l *MemoryFailedLookupLog) Entries() []common.FailedLookup {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]common.FailedLookup, len(l.entries))
	copy(out, l.entries)
	return out
}
