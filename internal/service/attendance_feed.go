package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eventhub/eventhub-backend/internal/config"
	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisAttendanceFeed carries attendee counts over Redis pub/sub so every
// server instance can serve live subscribers.
type RedisAttendanceFeed struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisAttendanceFeed creates a new RedisAttendanceFeed.
func NewRedisAttendanceFeed(rdb *redis.Client, log zerolog.Logger) *RedisAttendanceFeed {
	return &RedisAttendanceFeed{
		rdb: rdb,
		log: log.With().Str("component", "attendance_feed").Logger(),
	}
}

// Publish sends update on the event's attendance channel. Nobody listening
// is not an error.
func (f *RedisAttendanceFeed) Publish(ctx context.Context, update model.AttendanceUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal attendance: %w", err)
	}
	return f.rdb.Publish(ctx, config.CacheKey.AttendanceChannel(update.EventID.String()), payload).Err()
}

// Subscribe returns once Redis has confirmed the subscription. The channel
// is closed when ctx is done or the subscription drops.
func (f *RedisAttendanceFeed) Subscribe(ctx context.Context, eventID uuid.UUID) (<-chan model.AttendanceUpdate, error) {
	sub := f.rdb.Subscribe(ctx, config.CacheKey.AttendanceChannel(eventID.String()))

	// Wait for the subscription confirmation so a publish right after
	// Subscribe returns is not missed.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe attendance: %w", err)
	}

	out := make(chan model.AttendanceUpdate)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var update model.AttendanceUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
					f.log.Warn().Err(err).Str("channel", msg.Channel).Msg("Dropping malformed attendance message")
					continue
				}
				select {
				case out <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
