// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package contextstore holds the process-wide registry of frozen
// evidence contexts. Entries are written exactly once at creation and
// read many times; a TTL bounds how long an entry stays resolvable.
// Readers always observe a fully-formed context or none at all.
// See docs/ARCHITECTURE.md § Context Store.
package contextstore

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// ErrContextNotFound reports a request id that is unknown or expired.
var ErrContextNotFound = errors.New("context not found")

const (
	defaultTTL           = 10 * time.Minute
	defaultSweepInterval = 5 * time.Minute
)

// Store is an in-memory, TTL-bounded context registry. The zero value
// is not usable; construct with New. Stores do not survive process
// restart and expose no delete operation: entries leave only by expiry.
type Store struct {
	mu       sync.RWMutex
	contexts map[string]types.ResponseContext

	ttl time.Duration

	// now is the clock; tests substitute it to drive expiry.
	now func() time.Time

	stopSweep chan struct{}
	sweepDone chan struct{}
}

// New creates a Store. When cfg.SweepInterval is positive a background
// goroutine physically removes expired entries on that interval; it is
// stopped by Close. Expired entries are also removed lazily on Create,
// so a zero interval only delays reclamation, never correctness.
func New(cfg types.ContextStoreConfig) *Store {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	s := &Store{
		contexts: make(map[string]types.ResponseContext),
		ttl:      ttl,
		now:      time.Now,
	}

	if cfg.SweepInterval > 0 {
		s.stopSweep = make(chan struct{})
		s.sweepDone = make(chan struct{})
		go s.sweepLoop(cfg.SweepInterval)
	}

	return s
}

// Close stops the background sweeper, if any. The store remains usable
// for lookups afterwards.
func (s *Store) Close() {
	if s.stopSweep == nil {
		return
	}
	close(s.stopSweep)
	<-s.sweepDone
	s.stopSweep = nil
}

// Create freezes chunks into a new context and registers it, returning
// the allocated request id. The chunk list is copied and truncated to
// types.MaxContextChunks; callers pass it already sorted by descending
// score with ties in arrival order. Create also sweeps expired entries
// so memory stays bounded without a background sweeper.
func (s *Store) Create(query, queryType string, chunks []types.Chunk) string {
	if len(chunks) > types.MaxContextChunks {
		chunks = chunks[:types.MaxContextChunks]
	}
	frozen := make([]types.Chunk, len(chunks))
	copy(frozen, chunks)

	ctx := types.ResponseContext{
		RequestID:      uuid.NewString(),
		Query:          query,
		QueryType:      queryType,
		SelectedChunks: frozen,
		CreatedAt:      s.now(),
	}

	s.mu.Lock()
	s.removeExpiredLocked()
	s.contexts[ctx.RequestID] = ctx
	s.mu.Unlock()

	return ctx.RequestID
}

// Get resolves a context by request id. An entry older than the TTL is
// treated as absent even if the sweeper has not removed it yet, so
// expiry is consistent for every caller.
func (s *Store) Get(requestID string) (types.ResponseContext, error) {
	s.mu.RLock()
	ctx, ok := s.contexts[requestID]
	s.mu.RUnlock()

	if !ok || s.expired(ctx) {
		return types.ResponseContext{}, ErrContextNotFound
	}
	return ctx, nil
}

// Stats reports the registry state for the stats endpoint. Expired
// entries still awaiting removal are not counted.
type Stats struct {
	ActiveContexts int       `json:"active_contexts"`
	OldestCreated  time.Time `json:"oldest_created,omitempty"`
	NewestCreated  time.Time `json:"newest_created,omitempty"`
}

// Snapshot returns current registry statistics.
func (s *Store) Snapshot() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	for _, ctx := range s.contexts {
		if s.expired(ctx) {
			continue
		}
		st.ActiveContexts++
		if st.OldestCreated.IsZero() || ctx.CreatedAt.Before(st.OldestCreated) {
			st.OldestCreated = ctx.CreatedAt
		}
		if ctx.CreatedAt.After(st.NewestCreated) {
			st.NewestCreated = ctx.CreatedAt
		}
	}
	return st
}

func (s *Store) expired(ctx types.ResponseContext) bool {
	return s.now().Sub(ctx.CreatedAt) > s.ttl
}

func (s *Store) removeExpiredLocked() {
	for id, ctx := range s.contexts {
		if s.expired(ctx) {
			delete(s.contexts, id)
		}
	}
}

func (s *Store) sweepLoop(interval time.Duration) {
	defer close(s.sweepDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopSweep:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.removeExpiredLocked()
			s.mu.Unlock()
		}
	}
}
