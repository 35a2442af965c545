package parcel

import (
	"context"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLifecycle(t *testing.T) {
	s := NewStore(time.Hour)

	d := s.Create(orb.Point{-105, 43})
	require.NotEmpty(t, d.ID)
	assert.Equal(t, DefaultRectangle(orb.Point{-105, 43}), d.Ring)

	got, err := s.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Ring, got.Ring)

	moved, err := s.MoveCorner(d.ID, 2, orb.Point{-104.999, 43.001})
	require.NoError(t, err)
	assert.Equal(t, orb.Point{-104.999, 43.001}, moved.Ring[2])

	shifted, err := s.Translate(d.ID, 0.01, 0)
	require.NoError(t, err)
	assert.InDelta(t, moved.Ring[0].Lon()+0.01, shifted.Ring[0].Lon(), 1e-12)

	rotated, err := s.Rotate(d.ID, 45)
	require.NoError(t, err)
	assert.Len(t, rotated.Ring, 5)

	require.NoError(t, s.Discard(d.ID))
	_, err = s.Get(d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
	assert.ErrorIs(t, s.Discard(d.ID), ErrDraftNotFound)
}

func TestStoreReturnsCopies(t *testing.T) {
	s := NewStore(0)
	d := s.Create(orb.Point{1, 1})

	d.Ring[0] = orb.Point{50, 50}

	got, err := s.Get(d.ID)
	require.NoError(t, err)
	assert.NotEqual(t, orb.Point{50, 50}, got.Ring[0])
}

func TestStoreKeepsDraftOnFailedEdit(t *testing.T) {
	s := NewStore(0)
	d := s.Create(orb.Point{1, 1})

	_, err := s.MoveCorner(d.ID, 7, orb.Point{})
	assert.ErrorIs(t, err, ErrCornerIndex)

	got, err := s.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Ring, got.Ring)
}

func TestStoreExpiry(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(10 * time.Minute)
	s.now = func() time.Time { return now }

	d := s.Create(orb.Point{0, 0})

	now = now.Add(5 * time.Minute)
	_, err := s.Translate(d.ID, 0, 0.001)
	require.NoError(t, err)

	// the edit renewed the draft
	now = now.Add(9 * time.Minute)
	_, err = s.Get(d.ID)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)

	assert.Equal(t, 1, s.Sweep())
	assert.Zero(t, s.Len())
}

func TestStoreRunStopsWithContext(t *testing.T) {
	s := NewStore(time.Nanosecond)
	s.Create(orb.Point{0, 0})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
