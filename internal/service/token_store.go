package service

import (
	"context"
	"faaqs_backend/internal/util"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedKeyPrefix = "auth:revoked:"

// RedisTokenStore 多实例共享的注销黑名单，key 随令牌过期自动删除
type RedisTokenStore struct {
	Redis *redis.Client
}

func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{Redis: rdb}
}

func (s *RedisTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.Redis.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return util.Unavailable("revoke token", err)
	}
	return nil
}

func (s *RedisTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.Redis.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, util.Unavailable("check token", err)
	}
	return n > 0, nil
}

// MemoryTokenStore 单实例使用
type MemoryTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{revoked: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (s *MemoryTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[tokenID]
	return ok && s.now().Before(exp), nil
}
