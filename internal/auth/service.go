package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const minPasswordLength = 6

var (
	ErrWrongCredentials = errors.New("wrong credentials")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrWeakPassword     = fmt.Errorf("password must have at least %d characters", minPasswordLength)
)

type usersRepo interface {
	Create(ctx context.Context, email, fullName, passwordHash string) (*User, error)
	Get(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpsertOAuthUser(ctx context.Context, email, fullName string) (*User, error)
	TouchLastLogon(ctx context.Context, id int64, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
}

// Listener is notified about every auth state change.
type Listener func(userID int64, event Event)

type Service struct {
	users     usersRepo
	tokens    *TokenIssuer
	sessions  *SessionStore
	providers map[string]*OAuthProvider
	now       func() time.Time

	listenersMu    sync.RWMutex
	listeners      map[int]Listener
	nextListenerID int
}

func NewService(
	users usersRepo,
	tokens *TokenIssuer,
	sessions *SessionStore,
	providers map[string]*OAuthProvider,
) *Service {
	if providers == nil {
		providers = map[string]*OAuthProvider{}
	}
	return &Service{
		users:     users,
		tokens:    tokens,
		sessions:  sessions,
		providers: providers,
		now:       time.Now,
		listeners: map[int]Listener{},
	}
}

// Subscribe registers l for auth state changes and returns the func that removes it.
func (s *Service) Subscribe(l Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = l
	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Service) emit(userID int64, event Event) {
	s.listenersMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.RUnlock()

	log.Debugf("auth event %s for user %d", event, userID)
	for _, l := range listeners {
		l(userID, event)
	}
}

func (s *Service) SignUp(ctx context.Context, email, password, fullName string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.signup")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := pkg.HashPassword(password)
	if errors.Is(err, pkg.ErrPasswordTooLong) {
		return nil, err
	} else if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, email, strings.TrimSpace(fullName), hash)
	if err != nil {
		return nil, err
	}

	return s.signIn(ctx, user, "", "")
}

func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.signinpassword")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrWrongCredentials
	} else if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	// users created through OAuth have no password
	if user.PasswordHash == "" || !pkg.CheckPasswordHash(password, user.PasswordHash) {
		log.Tracef("failed sign in attempt for user: %d", user.ID)
		return nil, ErrWrongCredentials
	}

	if pkg.PasswordHashOutdated(user.PasswordHash) {
		if hash, err := pkg.HashPassword(password); err == nil {
			if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
				log.Warnf("rehash password for user %d: %s", user.ID, err)
			}
		}
	}

	return s.signIn(ctx, user, "", "")
}

// RefreshSession rotates the refresh token and issues a new access token.
func (s *Service) RefreshSession(ctx context.Context, refreshToken string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.refresh")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	userID, err := s.sessions.ConsumeRefreshSession(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	session, err := s.newSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.emit(user.ID, EventTokenRefreshed)
	return session, nil
}

// SignOut revokes the refresh session (if given) and drops cached provider tokens.
func (s *Service) SignOut(ctx context.Context, userID int64, refreshToken string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.signout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("user.id", userID))

	if refreshToken != "" {
		if err := s.sessions.RevokeRefreshSession(ctx, refreshToken); err != nil {
			return err
		}
	}
	if err := s.sessions.ClearProviderTokens(ctx, userID); err != nil {
		return fmt.Errorf("clear provider tokens: %w", err)
	}

	s.emit(userID, EventSignedOut)
	return nil
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*Identity, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user.Identity, nil
}

// AuthorizeURL returns the provider consent page URL the client should be sent to.
func (s *Service) AuthorizeURL(ctx context.Context, provider string) (string, error) {
	p, ok := s.providers[strings.ToLower(provider)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	state, err := s.sessions.RandStringFunc(24)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	if err := s.sessions.SaveOAuthState(ctx, state, p.Name); err != nil {
		return "", fmt.Errorf("save oauth state: %w", err)
	}

	return p.AuthCodeURL(state), nil
}

// CompleteOAuth finishes the OAuth code flow and signs the user in.
// The returned session carries the provider token pair.
func (s *Service) CompleteOAuth(ctx context.Context, state, code string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.auth.completeoauth")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	providerName, err := s.sessions.ConsumeOAuthState(ctx, state)
	if err != nil {
		return nil, err
	}
	p, ok := s.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, providerName)
	}
	span.SetAttributes(attribute.String("oauth.provider", providerName))

	token, providerUser, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpsertOAuthUser(ctx, providerUser.Email, providerUser.Name)
	if err != nil {
		return nil, fmt.Errorf("upsert oauth user: %w", err)
	}

	if err := s.sessions.SaveProviderTokens(ctx, user.ID, token.AccessToken, token.RefreshToken); err != nil {
		return nil, fmt.Errorf("save provider tokens: %w", err)
	}

	return s.signIn(ctx, user, token.AccessToken, token.RefreshToken)
}

func (s *Service) VerifyAccessToken(token string) (int64, error) {
	return s.tokens.VerifyAccessToken(token)
}

func (s *Service) ScanAndClean(ctx context.Context) {
	s.sessions.ScanAndClean(ctx)
}

func (s *Service) signIn(ctx context.Context, user *User, providerToken, providerRefreshToken string) (*Session, error) {
	now := s.now()
	if err := s.users.TouchLastLogon(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("touch last logon: %w", err)
	}
	user.LastLogonTime = &now

	session, err := s.newSession(ctx, user)
	if err != nil {
		return nil, err
	}
	session.ProviderToken = providerToken
	session.ProviderRefreshToken = providerRefreshToken

	s.emit(user.ID, EventSignedIn)
	return session, nil
}

func (s *Service) newSession(ctx context.Context, user *User) (*Session, error) {
	accessToken, expiresAt, err := s.tokens.Issue(user.Identity)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.sessions.CreateRefreshSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("create refresh session: %w", err)
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         user.Identity,
	}, nil
}
