// Package session owns the client's session belief and the probe that
// refreshes it from the backend.
package session

import (
	"sync"

	"github.com/dmitrijs2005/capgallery/internal/client/models"
	"github.com/dmitrijs2005/capgallery/internal/metrics"
)

// Ticket orders a pending probe write against every other write to the
// Store. It is taken before the probe request is issued.
type Ticket struct {
	seq uint64
}

// Store is the single session cell read by the gate and written by the probe
// and the auth form. Writes are sequence-tagged: a probe result is applied
// only if no write with a later ticket has been applied since its ticket was
// taken. A successful credential submission always takes a fresh ticket, so it
// supersedes every probe already in flight.
type Store struct {
	mu        sync.Mutex
	current   models.Session
	issued    uint64
	applied   uint64
	nextSubID int
	listeners map[int]func(models.Session)
	metrics   *metrics.Metrics
}

// NewStore returns a store holding the unknown session. m may be nil.
func NewStore(m *metrics.Metrics) *Store {
	return &Store{
		current:   models.UnknownSession(),
		listeners: make(map[int]func(models.Session)),
		metrics:   m,
	}
}

// Current returns the session as last applied.
func (s *Store) Current() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Begin reserves a ticket for a probe about to be issued.
func (s *Store) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return Ticket{seq: s.issued}
}

// ApplyProbe stores the probe verdict if t is still the newest write. It
// reports whether the verdict was applied.
func (s *Store) ApplyProbe(t Ticket, verdict models.Session) bool {
	if !verdict.Valid() || verdict.Status == models.StatusUnknown {
		verdict = models.AnonymousSession()
	}

	s.mu.Lock()
	if t.seq <= s.applied {
		s.mu.Unlock()
		s.metrics.ObserveSessionWrite("probe", false)
		return false
	}
	s.applied = t.seq
	changed := s.set(verdict)
	s.mu.Unlock()

	s.metrics.ObserveSessionWrite("probe", true)
	s.notify(changed, verdict)
	return true
}

// ApplyCredentials records a successful login or registration for username.
func (s *Store) ApplyCredentials(username string) models.Session {
	sess := models.AuthenticatedSession(username)

	s.mu.Lock()
	s.issued++
	s.applied = s.issued
	changed := s.set(sess)
	s.mu.Unlock()

	s.metrics.ObserveSessionWrite("credentials", true)
	s.notify(changed, sess)
	return sess
}

// Subscribe registers fn to be called after every change of the session.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(models.Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// set must be called with mu held.
func (s *Store) set(sess models.Session) bool {
	if s.current == sess {
		return false
	}
	s.current = sess
	return true
}

func (s *Store) notify(changed bool, sess models.Session) {
	if !changed {
		return
	}
	s.mu.Lock()
	fns := make([]func(models.Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(sess)
	}
}
