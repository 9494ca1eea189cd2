package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/dupr-insight/internal/metrics"
	"github.com/yourusername/dupr-insight/internal/models"
)

// Session holds the outcome of one analysis run: the normalized observations
// and, once calibration has run, the fitted model. Sessions expire; callers
// must treat a miss as "re-run the analysis", never as silent state.
type Session struct {
	ID           uuid.UUID
	Source       string
	Observations []models.MatchObservation
	Dropped      int
	Model        *models.FittedModel
	CreatedAt    time.Time
}

// SessionStore keeps analysis sessions in memory with a TTL.
type SessionStore struct {
	cache  *gocache.Cache
	logger *logrus.Logger
}

// NewSessionStore creates a session store. Sessions expire after ttl and are
// swept every ttl/2.
func NewSessionStore(ttl time.Duration, logger *logrus.Logger) *SessionStore {
	if logger == nil {
		logger = logrus.New()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{
		cache:  gocache.New(ttl, ttl/2),
		logger: logger,
	}
}

// Put stores a session and returns its ID.
func (s *SessionStore) Put(session *Session) uuid.UUID {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	s.cache.SetDefault(session.ID.String(), session)
	metrics.SetActiveSessions(s.cache.ItemCount())
	s.logger.WithFields(logrus.Fields{
		"session_id":   session.ID,
		"observations": len(session.Observations),
	}).Debug("Session stored")
	return session.ID
}

// Get returns the session for id. A missing session reports
// models.ErrSessionExpired; the store cannot distinguish "never existed"
// from "expired" and callers handle both the same way.
func (s *SessionStore) Get(id uuid.UUID) (*Session, error) {
	v, ok := s.cache.Get(id.String())
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, models.ErrSessionExpired)
	}
	session, ok := v.(*Session)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, models.ErrSessionExpired)
	}
	return session, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(id uuid.UUID) {
	s.cache.Delete(id.String())
	metrics.SetActiveSessions(s.cache.ItemCount())
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	return s.cache.ItemCount()
}
