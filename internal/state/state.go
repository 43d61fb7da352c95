// Package state is the console's explicit application state: one store per
// operator session, changed only by dispatching actions.
package state

import (
	"sync"

	"tokoadmin/internal/models"
	"tokoadmin/internal/session"
)

// Phase of the authentication state machine.
type Phase string

const (
	Anonymous      Phase = "anonymous"
	Authenticating Phase = "authenticating"
	Authenticated  Phase = "authenticated"
)

// Session is the auth slice of the state.
type Session struct {
	Phase    Phase             `json:"phase"`
	Identity *session.Identity `json:"identity,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// State is everything the console knows about one operator.
type State struct {
	Session       Session `json:"session"`
	Notifications Feed    `json:"notifications"`
}

// Action is anything Dispatch accepts.
type Action interface{ isAction() }

// Actions. SessionInvalidated is dispatched when the stored token no longer derives.
type (
	LoginStarted         struct{}
	LoginSucceeded       struct{ Identity session.Identity }
	LoginFailed          struct{ Message string }
	LoggedOut            struct{}
	SessionInvalidated   struct{ Message string }
	NotificationReceived struct{ Notification models.Notification }
	NotificationsRead    struct{}
)

func (LoginStarted) isAction()         {}
func (LoginSucceeded) isAction()       {}
func (LoginFailed) isAction()          {}
func (LoggedOut) isAction()            {}
func (SessionInvalidated) isAction()   {}
func (NotificationReceived) isAction() {}
func (NotificationsRead) isAction()    {}

// Store holds a State and applies actions to it under a lock.
type Store struct {
	mu    sync.RWMutex
	state State
}

// NewStore returns an anonymous store with an empty feed.
func NewStore() *Store {
	return &Store{state: State{Session: Session{Phase: Anonymous}, Notifications: NewFeed()}}
}

// Dispatch applies a to the state and returns the new state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Session = reduceSession(s.state.Session, a)
	s.state.Notifications = reduceNotifications(s.state.Notifications, a)
	return s.state.clone()
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (st State) clone() State {
	out := st
	out.Notifications.Items = append([]models.Notification(nil), st.Notifications.Items...)
	if st.Session.Identity != nil {
		id := *st.Session.Identity
		out.Session.Identity = &id
	}
	return out
}

func reduceSession(s Session, a Action) Session {
	switch a := a.(type) {
	case LoginStarted:
		if s.Phase == Anonymous {
			return Session{Phase: Authenticating}
		}
	case LoginSucceeded:
		id := a.Identity
		return Session{Phase: Authenticated, Identity: &id}
	case LoginFailed:
		if s.Phase == Authenticating {
			return Session{Phase: Anonymous, Message: a.Message}
		}
	case LoggedOut:
		return Session{Phase: Anonymous}
	case SessionInvalidated:
		if s.Phase == Authenticated {
			return Session{Phase: Anonymous, Message: a.Message}
		}
	}
	return s
}
