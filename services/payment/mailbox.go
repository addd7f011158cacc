package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"sajilosewa/models"

	"github.com/go-redis/redis/v8"
)

// PendingStore is a single-slot mailbox for the redirect provider's pending
// payment. Put writes the record before the browser leaves; TakeOnce reads
// and deletes it on return. The read-once-then-delete discipline is the sole
// replay guard on the return path, so TakeOnce must be atomic.
type PendingStore interface {
	Put(ctx context.Context, userID string, rec models.PendingRedirectPayment) error
	// TakeOnce returns the pending record and removes it, or (nil, nil)
	// when none exists.
	TakeOnce(ctx context.Context, userID string) (*models.PendingRedirectPayment, error)
}

const pendingKeyPrefix = "pendingPayment:"

// The record must outlive the round trip to the provider's payment page,
// but not a forgotten attempt from last week.
const pendingTTL = 24 * time.Hour

// RedisPendingStore implements PendingStore on Redis. GETDEL makes the
// take-once contract atomic across concurrent return requests.
type RedisPendingStore struct {
	Client *redis.Client
}

func (s *RedisPendingStore) Put(ctx context.Context, userID string, rec models.PendingRedirectPayment) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal pending payment: %w", err)
	}
	if err := s.Client.Set(ctx, pendingKeyPrefix+userID, data, pendingTTL).Err(); err != nil {
		return fmt.Errorf("failed to store pending payment: %w", err)
	}
	return nil
}

func (s *RedisPendingStore) TakeOnce(ctx context.Context, userID string) (*models.PendingRedirectPayment, error) {
	data, err := s.Client.GetDel(ctx, pendingKeyPrefix+userID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take pending payment: %w", err)
	}
	var rec models.PendingRedirectPayment
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to parse pending payment: %w", err)
	}
	return &rec, nil
}

// MemoryPendingStore implements PendingStore in memory, for tests.
type MemoryPendingStore struct {
	mu      sync.Mutex
	records map[string]models.PendingRedirectPayment
}

func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{records: make(map[string]models.PendingRedirectPayment)}
}

func (s *MemoryPendingStore) Put(ctx context.Context, userID string, rec models.PendingRedirectPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = rec
	return nil
}

func (s *MemoryPendingStore) TakeOnce(ctx context.Context, userID string) (*models.PendingRedirectPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, nil
	}
	delete(s.records, userID)
	return &rec, nil
}
