// Package session keeps uploaded documents in memory for the lifetime of
// a user's renaming workflow. Sessions are identified by UUID and expire
// after a configurable idle period; nothing is ever written to disk.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cmespinar/docrename/internal/pdfdoc"
)

var (
	ErrSessionNotFound  = errors.New("session not found or expired")
	ErrDocumentNotFound = errors.New("document not found in session")
)

const (
	// DefaultTTL is how long a session survives without being touched.
	DefaultTTL = 30 * time.Minute

	// defaultRasterSlots bounds the per-session render cache.
	defaultRasterSlots = 16

	sweepInterval = time.Minute
)

// Session holds one upload batch. Documents keep their upload order;
// entries that failed to open are nil so indices stay stable.
type Session struct {
	ID        string
	CreatedAt time.Time

	mutex    sync.RWMutex
	docs     []*pdfdoc.Document
	lastSeen time.Time
	rasters  *rasterCache
}

// Document returns the document at index, which must refer to a
// successfully opened upload.
func (s *Session) Document(index int) (*pdfdoc.Document, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if index < 0 || index >= len(s.docs) || s.docs[index] == nil {
		return nil, ErrDocumentNotFound
	}
	return s.docs[index], nil
}

// Documents returns the session's document slice. Failed uploads appear
// as nil entries.
func (s *Session) Documents() []*pdfdoc.Document {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]*pdfdoc.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Raster returns the cached render for key, if any.
func (s *Session) Raster(key RasterKey) (*pdfdoc.RenderedPage, bool) {
	return s.rasters.get(key)
}

// PutRaster caches page under key and returns the winning entry when two
// renders of the same page race.
func (s *Session) PutRaster(key RasterKey, page *pdfdoc.RenderedPage) *pdfdoc.RenderedPage {
	return s.rasters.putIfAbsent(key, page)
}

func (s *Session) touch(now time.Time) {
	s.mutex.Lock()
	s.lastSeen = now
	s.mutex.Unlock()
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return now.Sub(s.lastSeen) > ttl
}

// Store owns all live sessions and sweeps out expired ones in the
// background.
type Store struct {
	mutex     sync.RWMutex
	sessions  map[string]*Session
	ttl       time.Duration
	done      chan struct{}
	closeOnce sync.Once
}

// NewStore starts a store whose sessions expire after ttl of inactivity.
// A ttl of zero means DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	st := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go st.sweep()
	return st
}

// Create registers a new session holding docs and returns it. Nil
// entries in docs are preserved so document indices match upload order.
func (st *Store) Create(docs []*pdfdoc.Document) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		docs:      docs,
		lastSeen:  now,
		rasters:   newRasterCache(defaultRasterSlots),
	}

	st.mutex.Lock()
	st.sessions[s.ID] = s
	st.mutex.Unlock()
	return s
}

// Get returns the session with the given ID and refreshes its expiry.
func (st *Store) Get(id string) (*Session, error) {
	st.mutex.RLock()
	s, ok := st.sessions[id]
	st.mutex.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	now := time.Now()
	if s.expired(now, st.ttl) {
		st.Delete(id)
		return nil, ErrSessionNotFound
	}
	s.touch(now)
	return s, nil
}

// Delete removes a session immediately. Deleting an unknown ID is a
// no-op.
func (st *Store) Delete(id string) {
	st.mutex.Lock()
	delete(st.sessions, id)
	st.mutex.Unlock()
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mutex.RLock()
	defer st.mutex.RUnlock()
	return len(st.sessions)
}

// Close stops the background sweeper. Live sessions remain readable.
func (st *Store) Close() {
	st.closeOnce.Do(func() { close(st.done) })
}

func (st *Store) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-st.done:
			return
		case now := <-ticker.C:
			st.expire(now)
		}
	}
}

func (st *Store) expire(now time.Time) {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	for id, s := range st.sessions {
		if s.expired(now, st.ttl) {
			delete(st.sessions, id)
		}
	}
}
