package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/xo-engine/internal/apperror"
	"github.com/rocketscienceinc/xo-engine/internal/entity"
)

type storedSession struct {
	session   entity.Session
	expiresAt time.Time
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]storedSession

	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewMemorySessionRepository keeps sessions in process memory. Stored values
// are copies, so callers can't mutate them behind the repository's back.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return &memoryStore{
		sessions: make(map[string]storedSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (that *memoryStore) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sweep()

	stored := storedSession{session: copySession(session)}
	if that.ttl > 0 {
		stored.expiresAt = that.now().Add(that.ttl)
	}

	that.sessions[session.ID] = stored

	return nil
}

func (that *memoryStore) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.RLock()
	stored, ok := that.sessions[id]
	that.mu.RUnlock()

	if ok && that.expired(stored) {
		that.mu.Lock()
		// a concurrent write may have refreshed it
		if current, found := that.sessions[id]; found && that.expired(current) {
			delete(that.sessions, id)
		}
		that.mu.Unlock()

		ok = false
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	session := copySession(&stored.session)

	return &session, nil
}

func (that *memoryStore) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored, ok := that.sessions[id]
	if !ok || that.expired(stored) {
		delete(that.sessions, id)
		return fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	delete(that.sessions, id)

	return nil
}

// sweep drops expired sessions at most once per ttl. The caller holds the
// write lock.
func (that *memoryStore) sweep() {
	if that.ttl <= 0 {
		return
	}

	now := that.now()
	if now.Sub(that.lastSweep) < that.ttl {
		return
	}

	for id, stored := range that.sessions {
		if that.expired(stored) {
			delete(that.sessions, id)
		}
	}

	that.lastSweep = now
}

func (that *memoryStore) expired(stored storedSession) bool {
	return !stored.expiresAt.IsZero() && !that.now().Before(stored.expiresAt)
}

func copySession(session *entity.Session) entity.Session {
	clone := *session
	clone.State = session.State.Clone()

	return clone
}
