package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 5*time.Minute))

	now = now.Add(4 * time.Minute)
	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len(), "expired entry dropped on read")
}

func TestMemory_Invalidate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, m.Invalidate(ctx, "k", "test"))
	_, ok, _ := m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestLayered_SharedHitRepopulatesLocal(t *testing.T) {
	local, shared := NewMemory(), NewMemory()
	l := NewLayered(local, shared, time.Minute, time.Hour, nil)
	ctx := context.Background()

	require.NoError(t, shared.Set(ctx, "k", []byte("v"), time.Hour))

	got, ok, err := l.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	// Local layer now holds the value directly.
	_, ok, _ = local.Get(ctx, "k")
	assert.True(t, ok)
}

func TestLayered_WritesBothLayers(t *testing.T) {
	local, shared := NewMemory(), NewMemory()
	l := NewLayered(local, shared, time.Minute, time.Hour, nil)
	ctx := context.Background()

	require.NoError(t, l.Set(ctx, "k", []byte("v"), 0))
	_, ok, _ := local.Get(ctx, "k")
	assert.True(t, ok)
	_, ok, _ = shared.Get(ctx, "k")
	assert.True(t, ok)

	require.NoError(t, l.Invalidate(ctx, "k", "profile-updated"))
	_, ok, _ = local.Get(ctx, "k")
	assert.False(t, ok)
	_, ok, _ = shared.Get(ctx, "k")
	assert.False(t, ok)
}

func TestLayered_NilShared(t *testing.T) {
	l := NewLayered(NewMemory(), nil, time.Minute, time.Hour, nil)
	ctx := context.Background()
	require.NoError(t, l.Set(ctx, "k", []byte("v"), 0))
	_, ok, _ := l.Get(ctx, "k")
	assert.True(t, ok)
	require.NoError(t, l.Invalidate(ctx, "k", "test"))
}

func TestJSONHelpers(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	type payload struct {
		Name  string  `json:"name"`
		Score float64 `json:"score"`
	}
	in := payload{Name: "dana", Score: 8.5}
	require.NoError(t, SetJSON(ctx, m, "p", in, time.Minute))

	var out payload
	ok, err := GetJSON(ctx, m, "p", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)

	// Poisoned entries report a miss and are evicted.
	require.NoError(t, m.Set(ctx, "bad", []byte("{not json"), time.Minute))
	ok, err = GetJSON(ctx, m, "bad", &out)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "bad")
	assert.False(t, ok)
}
