package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/eugenenazirov/apibase/internal/endpoint"
)

var (
	// ErrNotResolved indicates no endpoint has been stored yet.
	ErrNotResolved = errors.New("endpoint has not been resolved yet")
	// ErrInvalidEndpoint indicates the endpoint has no base URL.
	ErrInvalidEndpoint = errors.New("endpoint base URL must not be empty")
)

// Store holds the endpoint currently served to clients.
type Store interface {
	Current() (endpoint.ResolvedEndpoint, time.Time, error)
	Set(resolved endpoint.ResolvedEndpoint) error
}

// MemoryStore keeps the active endpoint in-memory and guards access with a RWMutex.
type MemoryStore struct {
	mu         sync.RWMutex
	current    endpoint.ResolvedEndpoint
	resolvedAt time.Time
	set        bool

	clock func() time.Time
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *MemoryStore) {
		s.clock = clock
	}
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the stored endpoint and when it was stored.
func (s *MemoryStore) Current() (endpoint.ResolvedEndpoint, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.set {
		return endpoint.ResolvedEndpoint{}, time.Time{}, ErrNotResolved
	}
	return s.current, s.resolvedAt, nil
}

// Set replaces the stored endpoint.
func (s *MemoryStore) Set(resolved endpoint.ResolvedEndpoint) error {
	if resolved.BaseURL == "" {
		return ErrInvalidEndpoint
	}

	now := s.clock()

	s.mu.Lock()
	s.current = resolved
	s.resolvedAt = now
	s.set = true
	s.mu.Unlock()

	return nil
}
