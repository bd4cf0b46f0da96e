package source

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tradeinlabs/phoneworth/internal/domain/catalog"
	"github.com/tradeinlabs/phoneworth/internal/infrastructure/monitoring/logging"
	"github.com/tradeinlabs/phoneworth/pkg/errors"
)

const defaultCacheKey = "phoneworth:catalog:raw"

// CachedSource fronts another source with a Redis cache of the raw records.
// Cache trouble is never fatal: a miss, a write failure, or a Redis outage
// all degrade to loading from the wrapped source directly.
type CachedSource struct {
	next   catalog.Source
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	logger logging.Logger
}

// NewCachedSource wraps next with a Redis cache.  A non-positive ttl caches
// without expiry (reloads then rely on explicit invalidation).
func NewCachedSource(next catalog.Source, client redis.UniversalClient, ttl time.Duration, logger logging.Logger) *CachedSource {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CachedSource{
		next:   next,
		client: client,
		key:    defaultCacheKey,
		ttl:    ttl,
		logger: logger.Named("rediscache"),
	}
}

// Load returns the cached raw records when present, otherwise loads from
// the wrapped source and caches the result best-effort.
func (s *CachedSource) Load(ctx context.Context) ([]catalog.RawPhone, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == nil {
		var phones []catalog.RawPhone
		if err := json.Unmarshal(data, &phones); err == nil {
			s.logger.Debug("raw catalog served from redis", logging.Int("count", len(phones)))
			return phones, nil
		}
		s.logger.Warn("discarding malformed redis cache entry", logging.String("key", s.key))
	} else if err != redis.Nil {
		s.logger.Warn("redis read failed", logging.Err(err))
	}

	phones, err := s.next.Load(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(phones); err == nil {
		if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
			s.logger.Warn("redis write failed", logging.Err(err))
		}
	}
	return phones, nil
}

// Invalidate removes the cached entry.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "invalidating redis catalog cache")
	}
	return nil
}
