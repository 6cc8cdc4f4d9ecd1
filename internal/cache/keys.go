package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"travelcore/internal/observability"
)

const (
	GeoPathKeyPrefix   = "geo:path:%s:%d"
	geoPathPattern     = "geo:path:*"
	RatingAvgKeyPrefix = "rating:avg:%s:%d"
)

const (
	GeoPathTTL   = 24 * time.Hour
	RatingAvgTTL = 10 * time.Minute
)

// GeoPathKey caches the ancestor chain of one geo node.
func GeoPathKey(level string, id uint) string {
	return fmt.Sprintf(GeoPathKeyPrefix, level, id)
}

// RatingAvgKey caches the average rating of one owner.
func RatingAvgKey(kind string, id uint) string {
	return fmt.Sprintf(RatingAvgKeyPrefix, kind, id)
}

// Invalidate deletes key. Failures are logged; the entry then expires by TTL.
func Invalidate(ctx context.Context, key string) {
	if client == nil {
		return
	}
	if err := client.Del(ctx, key).Err(); err != nil {
		observability.Logger.WarnContext(ctx, "cache invalidate failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
}

// InvalidateGeoPaths drops every cached geo path. A rename or soft delete changes the
// paths of every descendant, so the whole family goes.
func InvalidateGeoPaths(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, geoPathPattern, 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		observability.Logger.WarnContext(ctx, "geo path scan failed", slog.String("error", err.Error()))
		return
	}
	if len(keys) > 0 {
		if err := client.Del(ctx, keys...).Err(); err != nil {
			observability.Logger.WarnContext(ctx, "geo path invalidate failed", slog.String("error", err.Error()))
		}
	}
}

// InvalidateRatingAverage drops the cached average of one owner.
func InvalidateRatingAverage(ctx context.Context, kind string, id uint) {
	Invalidate(ctx, RatingAvgKey(kind, id))
}
