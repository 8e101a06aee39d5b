package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/email-classifier/internal/form"
	"go.uber.org/zap"
)

type session struct {
	controller *form.Controller
	lastSeen   time.Time
}

// SessionStore keeps one form controller per browser session in memory
type SessionStore struct {
	sessions      map[string]*session
	mu            sync.Mutex
	ttl           time.Duration
	newController func() *form.Controller
	logger        *zap.Logger
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// NewSessionStore creates a new session store. Sessions idle for longer
// than ttl are dropped by a background task running every cleanupFreq.
func NewSessionStore(
	newController func() *form.Controller,
	ttl time.Duration,
	cleanupFreq time.Duration,
	logger *zap.Logger,
) *SessionStore {
	store := &SessionStore{
		sessions:      make(map[string]*session),
		ttl:           ttl,
		newController: newController,
		logger:        logger,
		stopCh:        make(chan struct{}),
	}

	if ttl > 0 && cleanupFreq > 0 {
		go store.startCleanupTask(cleanupFreq)
	}

	return store
}

// Get returns the controller of a live session and refreshes its idle timer
func (s *SessionStore) Get(id string) (*form.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(sess, time.Now()) {
		delete(s.sessions, id)
		return nil, false
	}

	sess.lastSeen = time.Now()
	return sess.controller, true
}

// Create starts a new session with a fresh controller
func (s *SessionStore) Create() (string, *form.Controller) {
	id := uuid.NewString()
	controller := s.newController()

	s.mu.Lock()
	s.sessions[id] = &session{controller: controller, lastSeen: time.Now()}
	s.mu.Unlock()

	s.logger.Debug("Created form session", zap.String("session_id", id))
	return id, controller
}

// Cleanup removes idle sessions
func (s *SessionStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of sessions held
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(sess *session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl
}

func (s *SessionStore) startCleanupTask(freq time.Duration) {
	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.Cleanup(); removed > 0 {
				s.logger.Debug("Removed idle form sessions", zap.Int("count", removed))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the cleanup task
func (s *SessionStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}
