package memory

import (
	"time"

	"itinvent-bot/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps conversation sessions keyed by user. A session not saved
// for idleTimeout expires, which silently resets that user's workflow.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(idleTimeout time.Duration) *SessionRepository {
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}
	// Expired sessions are purged twice per idle window
	c := cache.New(idleTimeout, idleTimeout/2)
	return &SessionRepository{
		cache: c,
	}
}

// Save stores the session and restarts its idle timer.
func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.UserID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(userID string) (*store.Session, bool) {
	if x, found := r.cache.Get(userID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(userID string) {
	r.cache.Delete(userID)
}

// Count returns the number of live sessions.
func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
