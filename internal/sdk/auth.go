package sdk

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/auth"
)

// sessions this close to expiry are refreshed before use
const expiryLeeway = 10 * time.Second

type AuthChangeListener func(event auth.Event, session *auth.Session)

type AuthClient struct {
	c *Client

	mu        sync.RWMutex
	session   *auth.Session
	refreshMu sync.Mutex

	listenersMu    sync.RWMutex
	listeners      map[int]AuthChangeListener
	nextListenerID int
}

func newAuthClient(c *Client) *AuthClient {
	return &AuthClient{
		c:         c,
		listeners: map[int]AuthChangeListener{},
	}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type tokenRequest struct {
	Email        string `json:"email,omitempty"`
	Password     string `json:"password,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type authorizeResponse struct {
	URL string `json:"url"`
}

func (a *AuthClient) SignUp(ctx context.Context, email, password, fullName string) (*auth.Session, error) {
	var session auth.Session
	if err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/signup",
		body:   signUpRequest{Email: email, Password: password, FullName: fullName},
	}, &session); err != nil {
		return nil, err
	}
	a.signedIn(&session)
	return &session, nil
}

func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error) {
	var session auth.Session
	if err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   tokenRequest{Email: email, Password: password},
	}, &session); err != nil {
		return nil, err
	}
	a.signedIn(&session)
	return &session, nil
}

// SignInWithOAuth returns the provider URL the user has to visit.
func (a *AuthClient) SignInWithOAuth(ctx context.Context, provider string) (string, error) {
	var resp authorizeResponse
	if err := a.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/authorize",
		query:  url.Values{"provider": {provider}},
	}, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// ExchangeOAuthCode completes the OAuth redirect and caches the provider token pair locally.
func (a *AuthClient) ExchangeOAuthCode(ctx context.Context, state, code string) (*auth.Session, error) {
	var session auth.Session
	if err := a.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/callback",
		query:  url.Values{"state": {state}, "code": {code}},
	}, &session); err != nil {
		return nil, err
	}

	if session.ProviderToken != "" {
		a.c.store.Set(KeyProviderToken, session.ProviderToken)
	}
	if session.ProviderRefreshToken != "" {
		a.c.store.Set(KeyProviderRefreshToken, session.ProviderRefreshToken)
	}

	a.signedIn(&session)
	return &session, nil
}

func (a *AuthClient) GetUser(ctx context.Context) (*auth.Identity, error) {
	var identity auth.Identity
	if err := a.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/user",
		authed: true,
	}, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// GetSession returns nil when signed out. An expired session is refreshed first.
func (a *AuthClient) GetSession(ctx context.Context) (*auth.Session, error) {
	session := a.currentSession()
	if session == nil {
		return nil, nil
	}
	if a.c.now().Before(session.ExpiresAt.Add(-expiryLeeway)) {
		return session, nil
	}
	return a.refresh(ctx, session)
}

func (a *AuthClient) RefreshSession(ctx context.Context) (*auth.Session, error) {
	session := a.currentSession()
	if session == nil {
		return nil, ErrNotSignedIn
	}
	return a.refresh(ctx, nil)
}

func (a *AuthClient) refresh(ctx context.Context, expired *auth.Session) (*auth.Session, error) {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	current := a.currentSession()
	if current == nil {
		return nil, ErrNotSignedIn
	}
	// someone else refreshed while we waited
	if expired != nil && current.AccessToken != expired.AccessToken {
		return current, nil
	}

	var session auth.Session
	if err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/token",
		query:  url.Values{"grant_type": {"refresh_token"}},
		body:   tokenRequest{RefreshToken: current.RefreshToken},
	}, &session); err != nil {
		return nil, err
	}

	a.setSession(&session)
	a.emit(auth.EventTokenRefreshed, &session)
	return &session, nil
}

// SignOut revokes the refresh session and clears the cached provider tokens.
// A session the backend no longer accepts is cleared locally as well.
func (a *AuthClient) SignOut(ctx context.Context) error {
	session, err := a.GetSession(ctx)
	if err != nil && !IsUnauthorized(err) {
		return err
	}

	if session != nil {
		err := a.c.do(ctx, request{
			method: http.MethodPost,
			path:   "/auth/logout",
			body:   tokenRequest{RefreshToken: session.RefreshToken},
			authed: true,
		}, nil)
		if err != nil && !IsUnauthorized(err) {
			return err
		}
	}

	a.setSession(nil)
	a.c.store.Delete(KeyProviderToken)
	a.c.store.Delete(KeyProviderRefreshToken)
	a.emit(auth.EventSignedOut, nil)
	return nil
}

// SetSession restores a previously obtained session without emitting an event.
func (a *AuthClient) SetSession(session *auth.Session) {
	a.setSession(session)
}

// OnAuthStateChange registers l and returns the func that removes it.
func (a *AuthClient) OnAuthStateChange(l AuthChangeListener) func() {
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	id := a.nextListenerID
	a.nextListenerID++
	a.listeners[id] = l
	return func() {
		a.listenersMu.Lock()
		defer a.listenersMu.Unlock()
		delete(a.listeners, id)
	}
}

func (a *AuthClient) signedIn(session *auth.Session) {
	a.setSession(session)
	a.emit(auth.EventSignedIn, session)
}

func (a *AuthClient) currentSession() *auth.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return nil
	}
	s := *a.session
	return &s
}

func (a *AuthClient) setSession(session *auth.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if session == nil {
		a.session = nil
		return
	}
	s := *session
	a.session = &s
}

func (a *AuthClient) emit(event auth.Event, session *auth.Session) {
	a.listenersMu.RLock()
	listeners := make([]AuthChangeListener, 0, len(a.listeners))
	for _, l := range a.listeners {
		listeners = append(listeners, l)
	}
	a.listenersMu.RUnlock()

	for _, l := range listeners {
		l(event, session)
	}
}
