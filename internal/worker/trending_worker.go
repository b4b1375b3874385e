package worker

import (
	"context"
	"time"

	"github.com/eventhub/eventhub-backend/internal/config"
	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Refresher recomputes and caches the trending list.
// *service.EventService satisfies it.
type Refresher interface {
	RefreshTrending(ctx context.Context) ([]model.Event, error)
}

// Locker grants a short exclusive lease so only one instance refreshes per tick.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisLocker implements Locker with SET NX.
type RedisLocker struct {
	rdb *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, key, 1, ttl).Result()
}

// TrendingWorker periodically rebuilds the trending cache so reads rarely
// fall through to PostgreSQL.
type TrendingWorker struct {
	refresher Refresher
	locker    Locker
	interval  time.Duration
	log       zerolog.Logger
}

// DefaultTrendingInterval replaces a non-positive refresh interval.
const DefaultTrendingInterval = time.Minute

// NewTrendingWorker creates a TrendingWorker. locker may be nil for a single
// instance deployment.
func NewTrendingWorker(refresher Refresher, locker Locker, interval time.Duration, log zerolog.Logger) *TrendingWorker {
	if interval <= 0 {
		interval = DefaultTrendingInterval
	}
	return &TrendingWorker{
		refresher: refresher,
		locker:    locker,
		interval:  interval,
		log:       log.With().Str("component", "trending_worker").Logger(),
	}
}

// Start runs until ctx is cancelled, refreshing once immediately and then on
// every tick.
func (w *TrendingWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("TrendingWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("TrendingWorker stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *TrendingWorker) tick(ctx context.Context) {
	if w.locker != nil {
		// The lease expires just before the next tick.
		lease := w.interval - w.interval/10
		ok, err := w.locker.TryLock(ctx, config.CacheKey.WorkerLockKey(config.WorkerKey.TrendingRefresher), lease)
		if err != nil {
			if ctx.Err() == nil {
				w.log.Error().Err(err).Msg("Lock error")
			}
			return
		}
		if !ok {
			return
		}
	}

	start := time.Now()
	events, err := w.refresher.RefreshTrending(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Trending refresh failed")
		}
		return
	}

	w.log.Debug().
		Int("events", len(events)).
		Dur("took", time.Since(start)).
		Msg("Trending cache refreshed")
}
