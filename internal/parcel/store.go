package parcel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/woozymasta/worldtile/internal/metrics"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

// ErrDraftNotFound is returned for unknown, discarded or expired drafts.
var ErrDraftNotFound = errors.New("draft not found")

// Draft is a parcel rectangle being edited before it is handed to checkout.
type Draft struct {
	ID        string    `json:"id"`
	Ring      orb.Ring  `json:"ring"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store keeps drafts in memory and forgets them after ttl without edits.
type Store struct {
	drafts map[string]Draft
	mu     sync.RWMutex
	ttl    time.Duration
	now    func() time.Time
}

// NewStore creates an empty draft store.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		drafts: make(map[string]Draft),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Create starts a draft with the default rectangle around center.
func (s *Store) Create(center orb.Point) Draft {
	now := s.now()
	d := Draft{
		ID:        uuid.NewString(),
		Ring:      DefaultRectangle(center),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.drafts[d.ID] = d
	s.mu.Unlock()

	return d.clone()
}

// Get returns a copy of the draft.
func (s *Store) Get(id string) (Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[id]
	if !ok || s.expired(d) {
		return Draft{}, ErrDraftNotFound
	}

	return d.clone(), nil
}

// MoveCorner replaces one corner of the draft.
func (s *Store) MoveCorner(id string, index int, p orb.Point) (Draft, error) {
	return s.update(id, func(r orb.Ring) (orb.Ring, error) {
		return UpdateCorner(r, index, p)
	})
}

// Translate shifts the whole draft.
func (s *Store) Translate(id string, deltaLon, deltaLat float64) (Draft, error) {
	return s.update(id, func(r orb.Ring) (orb.Ring, error) {
		return Translate(r, deltaLon, deltaLat), nil
	})
}

// Rotate turns the draft around its center.
func (s *Store) Rotate(id string, angle float64) (Draft, error) {
	return s.update(id, func(r orb.Ring) (orb.Ring, error) {
		return Rotate(r, angle)
	})
}

// Discard drops the draft.
func (s *Store) Discard(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[id]; !ok {
		return ErrDraftNotFound
	}
	delete(s.drafts, id)

	return nil
}

// Len returns the number of drafts held, including expired ones not yet swept.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

// Sweep removes expired drafts and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, d := range s.drafts {
		if s.expired(d) {
			delete(s.drafts, id)
			removed++
		}
	}

	return removed
}

// Run sweeps expired drafts every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := s.Sweep()
			metrics.DraftsActive.Set(float64(s.Len()))
			if n > 0 {
				log.Debug().Int("removed", n).Int("left", s.Len()).Msg("Expired parcel drafts swept")
			}
		}
	}
}

func (s *Store) update(id string, fn func(orb.Ring) (orb.Ring, error)) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[id]
	if !ok || s.expired(d) {
		return Draft{}, ErrDraftNotFound
	}

	ring, err := fn(d.Ring)
	if err != nil {
		return Draft{}, err
	}

	d.Ring = ring
	d.UpdatedAt = s.now()
	s.drafts[id] = d

	return d.clone(), nil
}

func (s *Store) expired(d Draft) bool {
	return s.ttl > 0 && s.now().Sub(d.UpdatedAt) > s.ttl
}

func (d Draft) clone() Draft {
	d.Ring = d.Ring.Clone()
	return d
}
