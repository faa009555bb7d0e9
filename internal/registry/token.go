package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"talentgate/pkg/platform/upstream"
)

// expiryLeeway refreshes tokens slightly before they expire.
const expiryLeeway = 30 * time.Second

// TokenSource supplies registry bearer tokens.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	// Refresh discards the cached token and fetches a new one.
	Refresh(ctx context.Context) (string, error)
}

// ClientCredentials fetches tokens with the OAuth2 client credentials grant
// and caches them until shortly before expiry.
type ClientCredentials struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   HTTPDoer
	now          func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewClientCredentials(tokenURL, clientID, clientSecret string, httpClient HTTPDoer) *ClientCredentials {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ClientCredentials{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Add(expiryLeeway).Before(c.expires) {
		return c.token, nil
	}
	return c.fetch(ctx)
}

func (c *ClientCredentials) Refresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	return c.fetch(ctx)
}

func (c *ClientCredentials) fetch(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", upstream.New(upstream.CategoryInternal, "registry", "create token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", upstream.FromTransport(ctx, "registry", err)
	}
	defer resp.Body.Close()
	if ue := upstream.FromStatus("registry", resp.StatusCode); ue != nil {
		return "", ue
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.AccessToken == "" {
		return "", upstream.New(upstream.CategoryBadData, "registry", "invalid token response", err)
	}
	c.token = body.AccessToken
	c.expires = tokenExpiry(body.AccessToken, c.now(), body.ExpiresIn)
	return c.token, nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// registry verifies its own tokens. Opaque tokens fall back to expires_in.
func tokenExpiry(token string, now time.Time, expiresIn int) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	if expiresIn > 0 {
		return now.Add(time.Duration(expiresIn) * time.Second)
	}
	return now.Add(5 * time.Minute)
}

// StaticToken is a fixed token, for registries configured with an API token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", fmt.Errorf("registry token not configured")
	}
	return string(t), nil
}

func (t StaticToken) Refresh(ctx context.Context) (string, error) {
	return t.Token(ctx)
}
