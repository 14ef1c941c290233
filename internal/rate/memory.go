package rate

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es la variante in-process (go-cache) para single-node o
// cuando no hay Redis configurado.
type MemoryLimiter struct {
	c      *gocache.Cache
	Max    int64
	Window time.Duration

	now func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		Max:    int64(max),
		Window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	winStart := now.Truncate(l.Window)
	k := fmt.Sprintf("%s:%d", sanitizeKey(key), winStart.Unix())
	ttl := winStart.Add(l.Window).Sub(now)

	hits := int64(1)
	if err := l.c.Add(k, int64(1), l.Window); err != nil {
		// ya existe en esta ventana
		n, err := l.c.IncrementInt64(k, 1)
		if err != nil {
			// expiró entre Add e Increment
			l.c.Set(k, int64(1), l.Window)
			n = 1
		}
		hits = n
	}
	return decide(hits, l.Max, ttl, l.Window), nil
}
