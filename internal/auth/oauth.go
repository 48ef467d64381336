package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

var ErrUnknownProvider = errors.New("unknown oauth provider")

const (
	ProviderGitHub = "github"
	ProviderGoogle = "google"
)

// OAuthProvider is an external identity provider users can sign in with.
type OAuthProvider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
	httpClient  *http.Client
}

// ProviderUser is the identity the provider returns for the signed in user.
type ProviderUser struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Login    string `json:"login"`
	Verified *bool  `json:"verified_email,omitempty"`
}

func NewOAuthProvider(name string, cfg *oauth2.Config, userInfoURL string, httpClient *http.Client) *OAuthProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OAuthProvider{
		Name:        name,
		Config:      cfg,
		UserInfoURL: userInfoURL,
		httpClient:  httpClient,
	}
}

// ProvidersFromEnv builds the named providers, reading client credentials from
// FITTRACK_OAUTH_<NAME>_CLIENT_ID and FITTRACK_OAUTH_<NAME>_CLIENT_SECRET.
func ProvidersFromEnv(names []string, redirectURL string, httpClient *http.Client) (map[string]*OAuthProvider, error) {
	providers := make(map[string]*OAuthProvider, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		envPrefix := "FITTRACK_OAUTH_" + strings.ToUpper(name)
		cfg := &oauth2.Config{
			ClientID:     os.Getenv(envPrefix + "_CLIENT_ID"),
			ClientSecret: os.Getenv(envPrefix + "_CLIENT_SECRET"),
			RedirectURL:  redirectURL,
		}
		if cfg.ClientID == "" {
			return nil, fmt.Errorf("%s_CLIENT_ID not set", envPrefix)
		}

		var userInfoURL string
		switch name {
		case ProviderGitHub:
			cfg.Endpoint = github.Endpoint
			cfg.Scopes = []string{"read:user", "user:email"}
			userInfoURL = "https://api.github.com/user"
		case ProviderGoogle:
			cfg.Endpoint = google.Endpoint
			cfg.Scopes = []string{"openid", "email", "profile"}
			userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
		}

		providers[name] = NewOAuthProvider(name, cfg, userInfoURL, httpClient)
	}
	return providers, nil
}

func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the authorization code for the provider token pair and fetches the user info.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (_ *oauth2.Token, _ *ProviderUser, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "oauth."+p.Name+".exchange")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := p.Config.Client(ctx, token).Get(p.UserInfoURL)
	if err != nil {
		return nil, nil, fmt.Errorf("get user info: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("get user info: status %d", resp.StatusCode)
	}

	var user ProviderUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, nil, fmt.Errorf("decode user info: %w", err)
	}
	if user.Email == "" {
		return nil, nil, errors.New("provider did not return an email")
	}
	if user.Verified != nil && !*user.Verified {
		return nil, nil, errors.New("provider email not verified")
	}
	if user.Name == "" {
		user.Name = user.Login
	}

	return token, &user, nil
}
