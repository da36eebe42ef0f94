package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sinistro-backend/models"
	"sinistro-backend/service"

	"github.com/redis/go-redis/v9"
)

// DefaultClaimCacheTTL is how long a found claim stays cached
const DefaultClaimCacheTTL = 5 * time.Minute

// CachedClaimStore serves claim lookups from Redis and delegates everything else.
// Only found claims are cached; a Redis failure falls back to the inner store.
type CachedClaimStore struct {
	service.ClaimStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedClaimStore wraps inner with a Redis read-through cache for FindClaimByID
func NewCachedClaimStore(inner service.ClaimStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedClaimStore {
	if ttl <= 0 {
		ttl = DefaultClaimCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedClaimStore{
		ClaimStore: inner,
		client:     client,
		ttl:        ttl,
		logger:     logger.With("component", "claim_cache"),
	}
}

func claimCacheKey(id int64) string {
	return fmt.Sprintf("claim:%d", id)
}

// FindClaimByID checks the cache before querying the inner store
func (s *CachedClaimStore) FindClaimByID(ctx context.Context, id int64) (*models.Claim, bool, error) {
	key := claimCacheKey(id)

	raw, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var claim models.Claim
		if jsonErr := json.Unmarshal(raw, &claim); jsonErr == nil {
			return &claim, true, nil
		}
		s.logger.Warn("discarding unreadable cached claim", "key", key)
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("claim cache read failed", "key", key, "error", err)
	}

	claim, found, err := s.ClaimStore.FindClaimByID(ctx, id)
	if err != nil || !found {
		return claim, found, err
	}

	if payload, jsonErr := json.Marshal(claim); jsonErr == nil {
		if setErr := s.client.Set(ctx, key, payload, s.ttl).Err(); setErr != nil {
			s.logger.Warn("claim cache write failed", "key", key, "error", setErr)
		}
	}

	return claim, true, nil
}
