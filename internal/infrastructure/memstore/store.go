// Package memstore is an in-process domain.StateStore. It suits a single API
// instance; use the redis or dynamo stores when several instances share state.
package memstore

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/ainager-onboarding/internal/domain"
	"github.com/ainager-onboarding/internal/pkg/clock"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Store is a mutex-guarded TTL map. All reads treat expired entries as absent.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	clock   clock.Clock
	stop    chan struct{}
	once    sync.Once
}

// New creates a Store. When sweepEvery > 0 a background goroutine evicts
// expired entries on that interval until Close is called.
func New(c clock.Clock, sweepEvery time.Duration) *Store {
	s := &Store{
		entries: make(map[string]entry),
		clock:   c,
		stop:    make(chan struct{}),
	}
	if sweepEvery > 0 {
		go s.sweepLoop(sweepEvery)
	}
	return s
}

func (s *Store) sweepLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

// Sweep removes every expired entry and returns how many were evicted.
func (s *Store) Sweep() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Close stops the sweeper. It is safe to call more than once.
func (s *Store) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *Store) newEntry(value []byte, ttl time.Duration) entry {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.clock.Now().Add(ttl)
	}
	return e
}

// lookup returns the live entry for key, evicting it if expired. Caller holds mu.
func (s *Store) lookup(key string) (entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return entry{}, false
	}
	if e.expired(s.clock.Now()) {
		delete(s.entries, key)
		return entry{}, false
	}
	return e, true
}

func (s *Store) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lookup(key); ok {
		return false, nil
	}
	s.entries[key] = s.newEntry(value, ttl)
	return true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = s.newEntry(value, ttl)
	return nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(key)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (s *Store) CompareAndDelete(_ context.Context, key string, expected []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(key)
	if !ok || !bytes.Equal(e.value, expected) {
		return false, nil
	}
	delete(s.entries, key)
	return true, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len reports the number of stored entries, including expired ones not yet swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
