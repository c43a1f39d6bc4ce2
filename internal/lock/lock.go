// Package lock serializes mutations of a calendar day's variable total.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DayLocker grants exclusive access to one calendar day. TryLock fails fast
// with models.ErrContention instead of waiting.
type DayLocker interface {
	TryLock(ctx context.Context, day time.Time) (unlock func(), err error)
}

func dayKey(day time.Time) string {
	return day.Format("2006-01-02")
}

// Memory is a process-local DayLocker
type Memory struct {
	mu   sync.Mutex
	days map[string]*sync.Mutex
}

// NewMemory creates a process-local locker
func NewMemory() *Memory {
	return &Memory{days: make(map[string]*sync.Mutex)}
}

// TryLock implements DayLocker
func (m *Memory) TryLock(ctx context.Context, day time.Time) (func(), error) {
	key := dayKey(day)
	m.mu.Lock()
	dm, ok := m.days[key]
	if !ok {
		dm = &sync.Mutex{}
		m.days[key] = dm
	}
	m.mu.Unlock()

	if !dm.TryLock() {
		return nil, fmt.Errorf("%s: %w", key, models.ErrContention)
	}
	var once sync.Once
	return func() { once.Do(dm.Unlock) }, nil
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis is a DayLocker shared by every process talking to the same Redis
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis creates a locker whose keys expire after ttl if never released
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl, prefix: "cashflow:daylock:"}
}

// TryLock implements DayLocker
func (r *Redis) TryLock(ctx context.Context, day time.Time) (func(), error) {
	key := r.prefix + dayKey(day)
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire day lock %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", dayKey(day), models.ErrContention)
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			releaseScript.Run(ctx, r.client, []string{key}, token)
		})
	}, nil
}
