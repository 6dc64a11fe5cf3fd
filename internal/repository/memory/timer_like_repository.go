package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// TimerLikeRepository holds the per-user timer like toggles. One cache entry
// per session so ClearSession is a single delete when the timer stops.
type TimerLikeRepository struct {
	cache *cache.Cache
	mu    sync.Mutex
}

func NewTimerLikeRepository() *TimerLikeRepository {
	return &TimerLikeRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *TimerLikeRepository) Set(sessionID, userID uuid.UUID, liked bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var likes map[uuid.UUID]bool
	if x, found := r.cache.Get(sessionID.String()); found {
		likes = x.(map[uuid.UUID]bool)
	} else {
		likes = make(map[uuid.UUID]bool)
	}
	likes[userID] = liked
	r.cache.Set(sessionID.String(), likes, cache.NoExpiration)
}

func (r *TimerLikeRepository) ListSession(sessionID uuid.UUID) map[uuid.UUID]bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[uuid.UUID]bool)
	if x, found := r.cache.Get(sessionID.String()); found {
		for k, v := range x.(map[uuid.UUID]bool) {
			out[k] = v
		}
	}
	return out
}

// ClearSession drops every like of the session, the stop-timer side effect.
func (r *TimerLikeRepository) ClearSession(sessionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(sessionID.String())
}
