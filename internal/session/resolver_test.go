package session

import (
	"errors"
	"testing"
)

type fakeRemote struct {
	userID string
	err    error
}

func (f *fakeRemote) CurrentUserID() (string, error) {
	return f.userID, f.err
}

type fakeLocal struct {
	userID string
	ok     bool
}

func (f *fakeLocal) CurrentUserID() (string, bool) {
	return f.userID, f.ok
}

func TestResolveRemoteSession(t *testing.T) {
	r := NewResolver(&fakeRemote{userID: "remote-user"}, &fakeLocal{})

	userID, mode, err := r.Resolve()
	if err != nil {
		t.Fatal("Failed to resolve:", err)
	}
	if userID != "remote-user" {
		t.Errorf("Expected remote-user, got %s", userID)
	}
	if mode != ModeRemote {
		t.Errorf("Expected remote mode, got %s", mode)
	}
}

func TestResolveFallsBackToLocal(t *testing.T) {
	remote := &fakeRemote{err: errors.New("connection refused")}
	r := NewResolver(remote, &fakeLocal{userID: "local-user", ok: true})

	userID, mode, err := r.Resolve()
	if err != nil {
		t.Fatal("Failed to resolve:", err)
	}
	if userID != "local-user" {
		t.Errorf("Expected local-user, got %s", userID)
	}
	if mode != ModeLocal {
		t.Errorf("Expected local mode, got %s", mode)
	}

	// Local mode is sticky: a recovered remote session does not flip the
	// resolver back.
	r.SessionStarted("remote-user")

	userID, mode, err = r.Resolve()
	if err != nil {
		t.Fatal("Failed to resolve after remote recovery:", err)
	}
	if userID != "local-user" || mode != ModeLocal {
		t.Errorf("Expected sticky local identity, got %s in %s mode", userID, mode)
	}
}

func TestResolveNotAuthenticated(t *testing.T) {
	r := NewResolver(&fakeRemote{}, &fakeLocal{})

	_, _, err := r.Resolve()
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSessionLifecycleNotifications(t *testing.T) {
	remote := &fakeRemote{}
	r := NewResolver(remote, &fakeLocal{})

	r.SessionStarted("user-1")

	userID, mode, err := r.Resolve()
	if err != nil {
		t.Fatal("Failed to resolve:", err)
	}
	if userID != "user-1" || mode != ModeRemote {
		t.Errorf("Expected user-1 in remote mode, got %s in %s mode", userID, mode)
	}

	r.SessionEnded()

	if _, _, err := r.Resolve(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated after session end, got %v", err)
	}

	// A new session replaces the cleared identity.
	r.SessionStarted("user-2")
	userID, _, err = r.Resolve()
	if err != nil {
		t.Fatal("Failed to resolve new session:", err)
	}
	if userID != "user-2" {
		t.Errorf("Expected user-2, got %s", userID)
	}
}

func TestSessionEndedIgnoredInLocalMode(t *testing.T) {
	r := NewResolver(&fakeRemote{err: errors.New("connection refused")}, &fakeLocal{userID: "local-user", ok: true})

	if _, _, err := r.Resolve(); err != nil {
		t.Fatal("Failed to resolve:", err)
	}

	r.SessionEnded()

	userID, mode, err := r.Resolve()
	if err != nil {
		t.Fatal("Failed to resolve after session end:", err)
	}
	if userID != "local-user" || mode != ModeLocal {
		t.Errorf("Expected local identity to survive session end, got %s in %s mode", userID, mode)
	}
}
