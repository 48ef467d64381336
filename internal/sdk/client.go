package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	Version   = "0.3.0"
	userAgent = "fittrack-sdk/" + Version
)

type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	store      LocalStore
	now        func() time.Time

	auth *AuthClient
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLocalStore(store LocalStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithClock replaces time.Now, used to decide when the access token is expired.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.ServiceURL, "/"),
		anonKey: cfg.AnonKey,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
		store: NewMemoryStore(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.auth = newAuthClient(c)
	return c
}

func (c *Client) Auth() *AuthClient {
	return c.auth
}

func (c *Client) LocalStore() LocalStore {
	return c.store
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// authed requests carry the current access token
	authed bool
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	var bodyReader io.Reader
	if r.body != nil {
		bodyBytes, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	reqURL := c.baseURL + r.path
	if len(r.query) > 0 {
		reqURL += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("apikey", c.anonKey)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if r.authed {
		session, err := c.auth.GetSession(ctx)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrNotSignedIn
		}
		req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Tracef("fittrack api %s %s: %d", r.method, r.path, resp.StatusCode)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBytes)),
		}
	}

	if out == nil || len(respBytes) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("unmarshal response of %s %s: %w", r.method, r.path, err)
	}
	return nil
}
