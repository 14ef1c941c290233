package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeEmail struct{ ok bool }

func (f fakeEmail) Configured() bool { return f.ok }
func (f fakeEmail) Provider() string { return "smtp" }

func TestCheck_Ready(t *testing.T) {
	s := NewHealthService(Deps{
		Version:    "1.2.3",
		DBCheck:    func(context.Context) error { return nil },
		CacheCheck: func(context.Context) error { return nil },
		CacheKind:  "memory",
		Email:      fakeEmail{ok: true},
		QueueDepth: func() int { return 3 },
		QueueSize:  10,
	})
	r := s.Check(context.Background())
	require.Equal(t, "ready", r.Status)
	require.Equal(t, "1.2.3", r.Version)
	require.Equal(t, "ok", r.Components["email_queue"].Status)
}

func TestCheck_DegradedAndUnavailable(t *testing.T) {
	s := NewHealthService(Deps{
		CacheCheck: func(context.Context) error { return errors.New("dial tcp") },
		Email:      fakeEmail{ok: true},
	})
	r := s.Check(context.Background())
	require.Equal(t, "degraded", r.Status)
	require.Equal(t, "disabled", r.Components["db"].Status)

	s = NewHealthService(Deps{
		DBCheck: func(context.Context) error { return errors.New("down") },
		Email:   fakeEmail{ok: true},
	})
	require.Equal(t, "unavailable", s.Check(context.Background()).Status)
}

func TestCheck_FullQueueDegrades(t *testing.T) {
	s := NewHealthService(Deps{
		Email:      fakeEmail{ok: true},
		QueueDepth: func() int { return 5 },
		QueueSize:  5,
	})
	r := s.Check(context.Background())
	require.Equal(t, "degraded", r.Status)
	require.Equal(t, "error", r.Components["email_queue"].Status)
}
