package memory

import (
	"sort"
	"sync"
	"time"

	"retroboard-be/pkg/store"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DefaultPresenceTTL is deliberately generous so a laptop waking up from
// suspend is still "connected" instead of flapping in and out of the list.
const DefaultPresenceTTL = 3 * time.Hour

// PresenceRepository tracks connected users per session, keyed
// (session, user), with TTL eviction measured from the last heartbeat.
type PresenceRepository struct {
	cache *cache.Cache
	ttl   time.Duration
	mu    sync.Mutex
}

func NewPresenceRepository(ttl time.Duration) *PresenceRepository {
	if ttl <= 0 {
		ttl = DefaultPresenceTTL
	}
	// Purge interval is coarse; List filters by lastSeen anyway.
	c := cache.New(ttl, 10*time.Minute)
	return &PresenceRepository{cache: c, ttl: ttl}
}

func presenceKey(sessionID, userID uuid.UUID) string {
	return sessionID.String() + ":" + userID.String()
}

// Upsert refreshes (or creates) the presence record with lastSeen = now.
// JoinedAt is preserved across heartbeats so arrival order stays stable.
func (r *PresenceRepository) Upsert(sessionID uuid.UUID, user store.UserSnapshot, now time.Time) *store.Presence {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := presenceKey(sessionID, user.Id)
	record := &store.Presence{
		SessionId: sessionID,
		User:      user,
		JoinedAt:  now,
		LastSeen:  now,
	}
	if x, found := r.cache.Get(key); found {
		record.JoinedAt = x.(*store.Presence).JoinedAt
	}
	r.cache.Set(key, record, r.ttl)
	return record
}

// List returns the session's live records sorted by arrival order. Records
// whose lastSeen is older than the TTL are excluded even if the cache has not
// purged them yet.
func (r *PresenceRepository) List(sessionID uuid.UUID, now time.Time) []store.Presence {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := sessionID.String() + ":"
	var result []store.Presence
	for key, entry := range r.cache.Items() {
		if len(key) < len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		record := entry.Object.(*store.Presence)
		if now.Sub(record.LastSeen) > r.ttl {
			continue
		}
		result = append(result, *record)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].JoinedAt.Equal(result[j].JoinedAt) {
			return result[i].User.Id.String() < result[j].User.Id.String()
		}
		return result[i].JoinedAt.Before(result[j].JoinedAt)
	})
	return result
}

// Delete removes the record, e.g. on explicit leave or page unload.
func (r *PresenceRepository) Delete(sessionID, userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(presenceKey(sessionID, userID))
}
