package session

import (
	"context"
	"sync"
	"time"

	"chat-order-service/internal/models"
)

// entry is one slot of the session arena. lock is a one-token semaphore so
// that waiters can give up when their context ends.
type entry struct {
	lock    chan struct{}
	sess    models.Session
	refs    int
	touched time.Time
}

// Store keeps chat sessions in memory, one entry per session id.
// Mutations go through WithLock, which serializes the read-modify-write of a
// single id; the arena mutex is only held for map and snapshot access.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Get returns a copy of the session, or a fresh initial session if absent
func (s *Store) Get(id string) models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return models.NewSession(id)
	}
	return e.sess.Clone()
}

// Put overwrites the stored session without taking the per-id lock.
// Read-modify-write callers must use WithLock instead.
func (s *Store) Put(id string, sess models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entryLocked(id)
	sess = sess.Clone()
	sess.ID = id
	sess.UpdatedAt = s.now()
	e.sess = sess
	e.touched = sess.UpdatedAt
}

// WithLock runs fn on a working copy of the session while holding the lock
// for id. If fn returns nil the copy is committed, and the version is bumped
// when the state or cart changed; otherwise the stored session is left
// untouched and the error returned.
func (s *Store) WithLock(ctx context.Context, id string, fn func(sess *models.Session) error) error {
	e := s.acquire(id)
	defer s.release(e)

	select {
	case e.lock <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-e.lock }()

	s.mu.Lock()
	working := e.sess.Clone()
	s.mu.Unlock()

	if err := fn(&working); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working.ID = id
	working.Version = e.sess.Version
	if !working.SameOrder(e.sess) {
		working.Version++
	}
	working.UpdatedAt = s.now()
	e.sess = working
	e.touched = working.UpdatedAt
	return nil
}

// Len returns the number of sessions held
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops sessions that nobody is using and that have been idle for
// longer than idle. It returns the number removed.
func (s *Store) Sweep(idle time.Duration) int {
	if idle <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	removed := 0
	for id, e := range s.entries {
		if e.refs == 0 && e.touched.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *Store) acquire(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entryLocked(id)
	e.refs++
	return e
}

func (s *Store) release(e *entry) {
	s.mu.Lock()
	e.refs--
	s.mu.Unlock()
}

func (s *Store) entryLocked(id string) *entry {
	e, ok := s.entries[id]
	if !ok {
		e = &entry{
			lock:    make(chan struct{}, 1),
			sess:    models.NewSession(id),
			touched: s.now(),
		}
		s.entries[id] = e
	}
	return e
}
