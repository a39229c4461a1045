package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/port"
	tel "todoclient/internal/core/telemetry"
)

// ThrottleRule caps how many requests a key may make per window.
type ThrottleRule struct {
	Requests int
	Window   time.Duration
}

// Throttle refuses requests locally once a key has used up its window, so
// a user hammering "suggest" never reaches the server.
type Throttle struct {
	cache     *cache.Cache
	rules     map[string]ThrottleRule
	telemetry port.Telemetry
	logger    *zap.Logger
	mutex     sync.Mutex
	now       func() time.Time
}

// ThrottleEntry is the per-key counter kept in the cache.
type ThrottleEntry struct {
	Count     int
	ResetTime time.Time
}

func DefaultThrottleRules() map[string]ThrottleRule {
	return map[string]ThrottleRule{
		SuggestionsKey: {
			Requests: 5,
			Window:   time.Minute,
		},
	}
}

func NewThrottle(rules map[string]ThrottleRule, telemetry port.Telemetry, logger *zap.Logger) *Throttle {
	if rules == nil {
		rules = DefaultThrottleRules()
	}

	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Throttle{
		cache:     cache.New(5*time.Minute, 10*time.Minute),
		rules:     rules,
		telemetry: telemetry,
		logger:    logger,
		now:       time.Now,
	}
}

// Allow counts one request against key. Keys without a rule are never
// throttled.
func (t *Throttle) Allow(ctx context.Context, key string) error {
	rule, exists := t.rules[key]
	if !exists || rule.Requests <= 0 {
		return nil
	}

	allowed, remaining, resetTime := t.check(key, rule)

	if !allowed {
		t.telemetry.RecordThrottled(ctx, key)

		return &domain.Error{
			Kind:    domain.KindThrottled,
			Op:      key,
			Status:  429,
			Message: fmt.Sprintf("Too many requests. Try again in %s", resetTime.Sub(t.now()).Round(time.Second)),
		}
	}

	t.logger.Debug("Throttle check",
		zap.String("key", key),
		zap.Int("remaining", remaining),
		zap.Time("reset", resetTime))

	return nil
}

func (t *Throttle) check(key string, rule ThrottleRule) (bool, int, time.Time) {
	now := t.now()

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if item, found := t.cache.Get(key); found {
		entry := item.(ThrottleEntry)

		if now.After(entry.ResetTime) {
			resetTime := now.Add(rule.Window)
			t.cache.Set(key, ThrottleEntry{Count: 1, ResetTime: resetTime}, rule.Window)
			return true, rule.Requests - 1, resetTime
		}

		if entry.Count >= rule.Requests {
			return false, 0, entry.ResetTime
		}

		entry.Count++
		t.cache.Set(key, entry, entry.ResetTime.Sub(now))

		return true, rule.Requests - entry.Count, entry.ResetTime
	}

	resetTime := now.Add(rule.Window)
	t.cache.Set(key, ThrottleEntry{Count: 1, ResetTime: resetTime}, rule.Window)

	return true, rule.Requests - 1, resetTime
}

// Stats reports how many keys currently hold a counter.
func (t *Throttle) Stats() map[string]interface{} {
	return map[string]interface{}{
		"active_entries": t.cache.ItemCount(),
		"rules":          len(t.rules),
	}
}
