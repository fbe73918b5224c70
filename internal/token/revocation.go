package token

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore 记录已登出的 token，直到它们本来的过期时间为止。
type RevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// ----------------- 内存实现 -----------------

// MemoryStore is an in-process revocation set. Expired entries are swept
// lazily at lookup time, so the map stays bounded by real traffic.
type MemoryStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{expires: make(map[string]time.Time)}
}

func (s *MemoryStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // token 已经过期，无需记录
	}
	s.mu.Lock()
	s.expires[token] = time.Now().Add(ttl)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, token string) (bool, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expires[token]
	if !ok {
		return false, nil
	}
	if now.After(exp) {
		delete(s.expires, token)
		return false, nil
	}
	return true, nil
}

// Len reports the current number of tracked tokens (expired ones included
// until their next lookup).
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}

// ----------------- Redis 实现 -----------------

const redisKeyPrefix = "revoked_token:"

// RedisStore keeps the revocation set in Redis; expiry is handled by the
// key TTL so multiple instances share one set.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, redisKeyPrefix+token, 1, ttl).Err()
}

func (s *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, redisKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
