package cart

import (
	"log"
	"sync"
	"time"

	"cartsync/internal/gueststore"
	"cartsync/internal/session"
)

// Registry hands out one Controller per session id, created lazily and
// evicted after sitting idle. Evicting a controller discards its
// in-memory cart, which matches the session lifecycle: the next request
// for the same session rebuilds it empty and reloads from the
// authoritative store.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	idleTTL time.Duration
	guests  gueststore.Store
	gateway remoteGateway
	logger  *log.Logger
}

type registryEntry struct {
	controller *Controller
	lastSeen   time.Time
}

func NewRegistry(guests gueststore.Store, gw remoteGateway, idleTTL time.Duration, logger *log.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
		idleTTL: idleTTL,
		guests:  guests,
		gateway: gw,
		logger:  logger,
	}
}

// ControllerFor returns the controller bound to the session, creating it
// on first use. Stale entries are swept opportunistically.
func (r *Registry) ControllerFor(sess session.Session) *Controller {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictLocked(now)

	entry, ok := r.entries[sess.ID]
	if !ok {
		entry = &registryEntry{
			controller: NewController(sess, r.guests, r.gateway, r.logger),
		}
		r.entries[sess.ID] = entry
	}
	entry.lastSeen = now
	return entry.controller
}

// Drop discards the controller for a session, used on logout.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	delete(r.entries, sessionID)
	r.mu.Unlock()
}

func (r *Registry) evictLocked(now time.Time) {
	if r.idleTTL <= 0 {
		return
	}
	for id, entry := range r.entries {
		if now.Sub(entry.lastSeen) > r.idleTTL {
			delete(r.entries, id)
		}
	}
}
