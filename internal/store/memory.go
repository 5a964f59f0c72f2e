package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-widget/internal/widget"
)

var (
	// ErrNotFound is returned when no widget session exists for an id.
	ErrNotFound = errors.New("no widget session for id")
)

// Session is a single widget instance and its bookkeeping.
type Session struct {
	ID         string
	Controller *widget.Controller
	CreatedAt  time.Time
	LastSeen   time.Time
}

// MemoryStore is a concurrency-safe in-memory registry of widget sessions.
type MemoryStore struct {
	mu sync.RWMutex

	// key: session id
	data map[string]*Session

	newController func() *widget.Controller
	now           func() time.Time

	// retention configuration
	maxSessions int           // max number of live sessions
	maxAge      time.Duration // max idle time before a session expires
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxSessions or maxAge is <= 0, it is treated as unlimited.
func NewMemoryStore(maxSessions int, maxAge time.Duration, newController func() *widget.Controller) *MemoryStore {
	return &MemoryStore{
		data:          make(map[string]*Session),
		newController: newController,
		now:           time.Now,
		maxSessions:   maxSessions,
		maxAge:        maxAge,
	}
}

// Create registers a new session and enforces retention.
func (s *MemoryStore) Create() *Session {
	now := s.now()
	sess := &Session{
		ID:         uuid.NewString(),
		Controller: s.newController(),
		CreatedAt:  now,
		LastSeen:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)

	// Enforce retention by count, evicting the least recently seen.
	if s.maxSessions > 0 && len(s.data) >= s.maxSessions {
		over := len(s.data) - s.maxSessions + 1
		for _, old := range s.byLastSeenLocked()[:over] {
			delete(s.data, old.ID)
		}
	}

	s.data[sess.ID] = sess
	return sess
}

// Get returns the session for id and marks it as seen.
func (s *MemoryStore) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess, ok := s.data[id]
	if !ok || s.expired(sess, now) {
		delete(s.data, id)
		return nil, ErrNotFound
	}
	sess.LastSeen = now
	return sess, nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return ErrNotFound
	}
	delete(s.data, id)
	return nil
}

// List returns all live sessions, oldest activity first.
func (s *MemoryStore) List() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	return s.byLastSeenLocked()
}

// Len reports the number of stored sessions, including not yet pruned ones.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) expired(sess *Session, now time.Time) bool {
	return s.maxAge > 0 && now.Sub(sess.LastSeen) > s.maxAge
}

// Enforce retention by age.
func (s *MemoryStore) pruneLocked(now time.Time) {
	if s.maxAge <= 0 {
		return
	}
	for id, sess := range s.data {
		if s.expired(sess, now) {
			delete(s.data, id)
		}
	}
}

func (s *MemoryStore) byLastSeenLocked() []*Session {
	out := make([]*Session, 0, len(s.data))
	for _, sess := range s.data {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastSeen.Before(out[j].LastSeen)
	})
	return out
}
