// Package appstate holds the state shared across the app: the signed in
// identity, the user profile and the date being viewed. Each one notifies
// its subscribers explicitly.
package appstate

import (
	"context"
	"fmt"
	"sync"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/sdk"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=session_mocks_test.go -package=appstate_test

type authClient interface {
	GetSession(ctx context.Context) (*auth.Session, error)
	SignUp(ctx context.Context, email, password, fullName string) (*auth.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context) error
	OnAuthStateChange(l sdk.AuthChangeListener) func()
}

type SessionChange struct {
	Event auth.Event
	// Identity is nil after sign out.
	Identity *auth.Identity
}

type Session struct {
	client authClient

	mu          sync.Mutex
	identity    *auth.Identity
	unsubscribe func()

	listeners listeners[SessionChange]
}

func NewSession(client authClient) *Session {
	return &Session{client: client}
}

// Mount starts following auth state changes and restores the identity of an
// existing session.
func (s *Session) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.unsubscribe == nil {
		s.unsubscribe = s.client.OnAuthStateChange(s.handleAuthChange)
	}
	s.mu.Unlock()

	session, err := s.client.GetSession(ctx)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if session != nil {
		s.setIdentity(&session.User)
	}
	return nil
}

// Unmount stops following auth state changes.
func (s *Session) Unmount() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Identity returns a copy of the signed in identity, nil when signed out.
func (s *Session) Identity() *auth.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	identity := *s.identity
	return &identity
}

func (s *Session) SignedIn() bool {
	return s.Identity() != nil
}

// Subscribe registers fn for sign in, sign out and token refresh and returns the func that removes it.
func (s *Session) Subscribe(fn func(SessionChange)) func() {
	return s.listeners.add(fn)
}

func (s *Session) SignIn(ctx context.Context, email, password string) error {
	session, err := s.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return err
	}
	s.setIdentity(&session.User)
	return nil
}

func (s *Session) SignUp(ctx context.Context, email, password, fullName string) error {
	session, err := s.client.SignUp(ctx, email, password, fullName)
	if err != nil {
		return err
	}
	s.setIdentity(&session.User)
	return nil
}

func (s *Session) SignOut(ctx context.Context) error {
	if err := s.client.SignOut(ctx); err != nil {
		return err
	}
	s.setIdentity(nil)
	return nil
}

func (s *Session) handleAuthChange(event auth.Event, session *auth.Session) {
	switch event {
	case auth.EventSignedIn, auth.EventTokenRefreshed:
		if session == nil {
			log.Warnf("auth event %s without a session", event)
			return
		}
		s.setIdentity(&session.User)
	case auth.EventSignedOut:
		s.setIdentity(nil)
	default:
		log.Debugf("ignoring auth event [%s]", event)
		return
	}
	s.listeners.notify(SessionChange{Event: event, Identity: s.Identity()})
}

func (s *Session) setIdentity(identity *auth.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if identity == nil {
		s.identity = nil
		return
	}
	copied := *identity
	s.identity = &copied
}
