// Package session resolves the active user identity, choosing between a
// remote session lookup and the local store's persisted "current user"
// record. Once the local fallback is taken the resolver stays in local
// mode until the process restarts.
package session

import (
	"errors"
	"sync"

	"rigtally/internal/logger"
)

// ErrNotAuthenticated is the only error the data-access layer lets
// propagate to callers.
var ErrNotAuthenticated = errors.New("user not authenticated")

// Mode selects which storage backend serves a resolved identity.
type Mode int

const (
	ModeRemote Mode = iota
	ModeLocal
)

func (m Mode) String() string {
	if m == ModeLocal {
		return "local"
	}
	return "remote"
}

// RemoteSource looks up the current remote session's user id.
type RemoteSource interface {
	CurrentUserID() (string, error)
}

// LocalSource reads the local store's persisted identity.
type LocalSource interface {
	CurrentUserID() (string, bool)
}

// Resolver memoizes the active identity. Safe for concurrent use;
// resolution is idempotent.
type Resolver struct {
	mu       sync.Mutex
	userID   string
	mode     Mode
	resolved bool
	sticky   bool

	remote RemoteSource
	local  LocalSource
}

// NewResolver constructs a resolver and fires the initial remote session
// query asynchronously, mirroring the construction-time refresh of the
// session state.
func NewResolver(remote RemoteSource, local LocalSource) *Resolver {
	r := &Resolver{
		remote: remote,
		local:  local,
	}

	go r.refreshRemote()

	return r
}

func (r *Resolver) refreshRemote() {
	userID, err := r.remote.CurrentUserID()
	if err != nil || userID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sticky {
		return
	}
	r.userID = userID
	r.mode = ModeRemote
	r.resolved = true
}

// Resolve returns the active user id and backend mode, falling back to
// the local store identity when no remote session is cached. Fails with
// ErrNotAuthenticated when neither source yields an identity.
func (r *Resolver) Resolve() (string, Mode, error) {
	r.mu.Lock()
	if r.resolved {
		userID, mode := r.userID, r.mode
		r.mu.Unlock()
		return userID, mode, nil
	}
	r.mu.Unlock()

	// Try the remote session once more before falling back.
	if userID, err := r.remote.CurrentUserID(); err == nil && userID != "" {
		r.mu.Lock()
		defer r.mu.Unlock()
		if !r.sticky {
			r.userID = userID
			r.mode = ModeRemote
			r.resolved = true
		}
		return r.userID, r.mode, nil
	}

	if userID, ok := r.local.CurrentUserID(); ok {
		r.mu.Lock()
		defer r.mu.Unlock()
		// Local mode is sticky for the rest of the process lifetime.
		r.userID = userID
		r.mode = ModeLocal
		r.resolved = true
		r.sticky = true
		logger.Info("Switched to local store mode", "user_id", userID)
		return r.userID, r.mode, nil
	}

	return "", ModeRemote, ErrNotAuthenticated
}

// Mode reports the currently resolved backend mode.
func (r *Resolver) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// SessionStarted updates the cached identity from a session-change
// notification (login or restored session). Ignored in sticky local mode.
func (r *Resolver) SessionStarted(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sticky {
		return
	}
	r.userID = userID
	r.mode = ModeRemote
	r.resolved = true
}

// SessionEnded clears the cached remote identity. A later Resolve may
// still recover a local identity.
func (r *Resolver) SessionEnded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sticky {
		return
	}
	r.userID = ""
	r.resolved = false
}
