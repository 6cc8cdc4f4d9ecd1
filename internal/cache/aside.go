package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"travelcore/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Aside returns the cached value under key, or calls load and caches its result for ttl.
// Cache failures never fail the call; they fall through to load.
func Aside[T any](ctx context.Context, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if client == nil {
		return load(ctx)
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached T
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			observability.CacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		}
		observability.CacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		observability.CacheLookups.WithLabelValues("miss").Inc()
	default:
		observability.CacheLookups.WithLabelValues("error").Inc()
		observability.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if encoded, jsonErr := json.Marshal(value); jsonErr == nil {
		if setErr := client.Set(ctx, key, encoded, ttl).Err(); setErr != nil {
			observability.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", setErr.Error()))
		}
	}
	return value, nil
}
