package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TrendingEventsKey returns the cache key for the attendee-ordered event list
// computed under generation gen
func (r *CacheKeyStruct) TrendingEventsKey(gen int64) string {
	return fmt.Sprintf("events:trending:%d", gen)
}

// TrendingGenerationKey returns the counter bumped whenever attendance changes
func (r *CacheKeyStruct) TrendingGenerationKey() string {
	return "events:trending:generation"
}

// RevokedTokenKey returns the cache key marking a token ID as signed out
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("token:%s:revoked", jti)
}

// WorkerLockKey returns the cache key a worker holds while it runs a cycle
func (r *CacheKeyStruct) WorkerLockKey(worker string) string {
	return fmt.Sprintf("worker:%s:lock", worker)
}

var CacheKey = NewCacheKeyStruct()

// RateLimitKey returns the cache key counting requests from one client to one scope
func (r *CacheKeyStruct) RateLimitKey(scope, clientIP string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, clientIP)
}

// AttendanceChannel returns the pub/sub channel carrying one event's attendee count
func (r *CacheKeyStruct) AttendanceChannel(eventID string) string {
	return fmt.Sprintf("event:%s:attendance", eventID)
}
