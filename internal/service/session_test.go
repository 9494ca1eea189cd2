package service

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dupr-insight/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSessionStorePutGet(t *testing.T) {
	store := NewSessionStore(time.Minute, quietLogger())

	session := &Session{
		Source: "test",
		Observations: []models.MatchObservation{
			{RatingBefore: 1400, OpponentRatingBefore: 1350, Result: models.ResultWin},
		},
	}

	id := store.Put(session)
	require.NotEqual(t, uuid.Nil, id)
	assert.False(t, session.CreatedAt.IsZero())
	assert.Equal(t, 1, store.Count())

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestSessionStoreMiss(t *testing.T) {
	store := NewSessionStore(time.Minute, quietLogger())

	_, err := store.Get(uuid.New())
	assert.ErrorIs(t, err, models.ErrSessionExpired)
}

func TestSessionStoreExpiry(t *testing.T) {
	store := NewSessionStore(20*time.Millisecond, quietLogger())

	id := store.Put(&Session{Source: "test"})
	time.Sleep(50 * time.Millisecond)

	_, err := store.Get(id)
	assert.ErrorIs(t, err, models.ErrSessionExpired)
}

func TestSessionStoreDelete(t *testing.T) {
	store := NewSessionStore(time.Minute, quietLogger())

	id := store.Put(&Session{Source: "test"})
	store.Delete(id)

	_, err := store.Get(id)
	assert.ErrorIs(t, err, models.ErrSessionExpired)
	assert.Zero(t, store.Count())
}
