package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/2beens/fittrack/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	refreshKeyPrefix        = "fittrack-refresh||"
	refreshTokensSetKey     = "fittrack-refresh-sessions"
	providerTokensKeyPrefix = "fittrack-provider-tokens||"
	oauthStateKeyPrefix     = "fittrack-oauth-state||"

	providerTokenField        = "provider_token"
	providerRefreshTokenField = "provider_refresh_token"

	oauthStateTTL = 10 * time.Minute
)

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidOAuthState   = errors.New("invalid oauth state")
)

// SessionStore keeps refresh sessions, OAuth states and provider tokens in redis.
type SessionStore struct {
	redisClient *redis.Client
	refreshTTL  time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewSessionStore(redisClient *redis.Client, refreshTTL time.Duration) *SessionStore {
	return &SessionStore{
		redisClient:    redisClient,
		refreshTTL:     refreshTTL,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (s *SessionStore) CreateRefreshSession(ctx context.Context, userID int64) (string, error) {
	token, err := s.RandStringFunc(35)
	if err != nil {
		return "", err
	}

	if err := s.redisClient.Set(ctx, refreshKeyPrefix+token, userID, s.refreshTTL).Err(); err != nil {
		return "", fmt.Errorf("set refresh session: %w", err)
	}
	if err := s.redisClient.SAdd(ctx, refreshTokensSetKey, token).Err(); err != nil {
		return "", fmt.Errorf("add refresh session to set: %w", err)
	}

	return token, nil
}

// ConsumeRefreshSession returns the owner of the refresh token and revokes it.
// Refresh tokens are single use, a new one is issued with every refresh.
func (s *SessionStore) ConsumeRefreshSession(ctx context.Context, token string) (int64, error) {
	userIDStr, err := s.redisClient.Get(ctx, refreshKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrInvalidRefreshToken
	} else if err != nil {
		return 0, fmt.Errorf("get refresh session: %w", err)
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse refresh session owner: %w", err)
	}

	if err := s.RevokeRefreshSession(ctx, token); err != nil {
		return 0, err
	}
	return userID, nil
}

func (s *SessionStore) RevokeRefreshSession(ctx context.Context, token string) error {
	if err := s.redisClient.Del(ctx, refreshKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete refresh session: %w", err)
	}
	if err := s.redisClient.SRem(ctx, refreshTokensSetKey, token).Err(); err != nil {
		return fmt.Errorf("remove refresh session from set: %w", err)
	}
	return nil
}

func (s *SessionStore) SaveOAuthState(ctx context.Context, state, provider string) error {
	return s.redisClient.Set(ctx, oauthStateKeyPrefix+state, provider, oauthStateTTL).Err()
}

// ConsumeOAuthState returns the provider the state was issued for. A state can be used once.
func (s *SessionStore) ConsumeOAuthState(ctx context.Context, state string) (string, error) {
	provider, err := s.redisClient.Get(ctx, oauthStateKeyPrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidOAuthState
	} else if err != nil {
		return "", fmt.Errorf("get oauth state: %w", err)
	}
	if err := s.redisClient.Del(ctx, oauthStateKeyPrefix+state).Err(); err != nil {
		return "", fmt.Errorf("delete oauth state: %w", err)
	}
	return provider, nil
}

func (s *SessionStore) SaveProviderTokens(ctx context.Context, userID int64, token, refreshToken string) error {
	key := providerTokensKeyPrefix + strconv.FormatInt(userID, 10)
	return s.redisClient.HSet(ctx, key,
		providerTokenField, token,
		providerRefreshTokenField, refreshToken,
	).Err()
}

func (s *SessionStore) ClearProviderTokens(ctx context.Context, userID int64) error {
	return s.redisClient.Del(ctx, providerTokensKeyPrefix+strconv.FormatInt(userID, 10)).Err()
}

// ScanAndClean drops tokens from the sessions set whose refresh key already expired.
func (s *SessionStore) ScanAndClean(ctx context.Context) {
	tokens, err := s.redisClient.SMembers(ctx, refreshTokensSetKey).Result()
	if err != nil {
		log.Errorf("!!! session store, scan and clean, get sessions: %s", err)
		return
	}
	if len(tokens) == 0 {
		log.Debugln("=> session store, scan and clean abort, no sessions")
		return
	}

	log.Debugf("=> session store, scan and clean [%d sessions] start ...", len(tokens))
	removed := 0
	for _, token := range tokens {
		exists, err := s.redisClient.Exists(ctx, refreshKeyPrefix+token).Result()
		if err != nil {
			log.Errorf("=> session store, scan and clean token check: %s", err)
			continue
		}
		if exists > 0 {
			continue
		}
		if err := s.redisClient.SRem(ctx, refreshTokensSetKey, token).Err(); err != nil {
			log.Errorf("=> session store, clean token: %s", err)
			continue
		}
		removed++
	}
	log.Debugf("=> session store, scan and clean done, removed %d expired sessions", removed)
}
