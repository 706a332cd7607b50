package relay

import (
	"sync"
	"time"

	"github.com/Srinivas-559/chat-app/internal/domain"
)

// Session is one live transport connection bound to an identity. ID must be
// unique per connection (not per identity) so that a stale disconnect can be
// told apart from the connection that superseded it.
type Session interface {
	ID() string
	Deliver(ev Event) error
}

type entry struct {
	session     Session
	connectedAt time.Time
}

// Registry maps identities to their single live session. It is the only
// authority on "is this identity reachable on this instance". All access
// goes through the mutex; the map is never exposed.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]entry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]entry)}
}

// Register binds the session to identity. A prior session for the same
// identity is silently superseded (last registration wins); closing the old
// transport is the transport layer's concern.
func (r *Registry) Register(identity string, s Session) error {
	if identity == "" {
		return domain.ErrEmptyIdentity
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[identity] = entry{session: s, connectedAt: time.Now()}
	return nil
}

// Unregister removes the session and reports the identity it was bound to.
// The stored handle must still equal the disconnecting one: a disconnect of
// a superseded connection must not clobber the newer registration.
func (r *Registry) Unregister(s Session) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for identity, e := range r.sessions {
		if e.session.ID() == s.ID() {
			delete(r.sessions, identity)
			return identity, true
		}
	}
	return "", false
}

func (r *Registry) Lookup(identity string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[identity]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// BatchStatus reports local reachability for each requested identity.
func (r *Registry) BatchStatus(identities []string) map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make(map[string]bool, len(identities))
	for _, id := range identities {
		_, ok := r.sessions[id]
		statuses[id] = ok
	}
	return statuses
}

// Online returns a snapshot of identities with a live session.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.sessions))
	for identity := range r.sessions {
		out = append(out, identity)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
