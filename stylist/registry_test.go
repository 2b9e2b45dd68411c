package stylist

import (
	"context"
	"errors"
	"testing"
	"time"

	"custemoapi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unreachableBackend struct{}

func (unreachableBackend) NewSession(ctx context.Context, route Route, history []Message) (ChatSession, error) {
	return nil, errors.New("unreachable")
}

func TestRegistryReusesManagerPerKey(t *testing.T) {
	created := 0
	r := NewRegistry(time.Hour, func() *Manager {
		created++
		return NewManager(nil, nil)
	})

	a := r.Get("user-1:studio")
	assert.Same(t, a, r.Get("user-1:studio"))
	assert.NotSame(t, a, r.Get("user-2:studio"))
	assert.Equal(t, 2, created)

	r.Reset("user-1:studio")
	assert.NotSame(t, a, r.Get("user-1:studio"))
	assert.Equal(t, 3, created)
}

func TestRegistryForgetsIdleManagers(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	r := NewRegistry(30*time.Minute, func() *Manager { return NewManager(nil, nil) })
	r.now = func() time.Time { return now }

	first := r.Get("a")
	r.Get("b")
	now = now.Add(20 * time.Minute)
	r.Get("b")
	now = now.Add(20 * time.Minute)

	assert.NotSame(t, first, r.Get("a"))
	assert.Equal(t, 2, r.Len())
}

func TestRegistryKeepsBusyManagers(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	r := NewRegistry(30*time.Minute, func() *Manager { return NewManager(unreachableBackend{}, nil) })
	r.now = func() time.Time { return now }

	busy := r.Get("a")
	busy.sends.Add(1)
	now = now.Add(time.Hour)
	r.Get("b")
	assert.Equal(t, 2, r.Len())
	busy.sends.Add(-1)
	require.False(t, busy.Busy())

	// A finished send counts as use.
	now = now.Add(time.Hour)
	for range busy.Send(context.Background(), models.DefaultGarmentConfiguration(), "hi", SendOptions{}) {
	}
	now = now.Add(20 * time.Minute)
	r.Get("c")
	assert.Equal(t, 2, r.Len())
	assert.Same(t, busy, r.Get("a"))
	assert.Len(t, busy.Transcript(), 3)
}
