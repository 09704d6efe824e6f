package gmail

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// DefaultTokenURL is Google's OAuth2 token endpoint.
const DefaultTokenURL = "https://oauth2.googleapis.com/token"

// DefaultExpiryMargin is how long before the real expiry a cached token is considered stale.
const DefaultExpiryMargin = 60 * time.Second

// Credentials identifies one mailbox account. It is the cache key.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

type cachedToken struct {
	accessToken string
	expiry      time.Time // zero means no expiry was reported
}

// TokenCache holds access tokens per credential set and refreshes them lazily.
type TokenCache struct {
	mu         sync.Mutex
	entries    map[Credentials]cachedToken
	tokenURL   string
	margin     time.Duration
	httpClient *http.Client
	now        func() time.Time
}

// NewTokenCache returns a cache that refreshes against tokenURL.
func NewTokenCache(httpClient *http.Client, tokenURL string, margin time.Duration) *TokenCache {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &TokenCache{
		entries:    make(map[Credentials]cachedToken),
		tokenURL:   tokenURL,
		margin:     margin,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Token returns a valid access token for creds, refreshing it when it is missing or
// within the safety margin of its expiry.
func (c *TokenCache) Token(ctx context.Context, creds Credentials) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[creds]; ok && c.fresh(e) {
		return e.accessToken, nil
	}

	tok, err := c.refresh(ctx, creds)
	if err != nil {
		delete(c.entries, creds)
		return "", err
	}
	c.entries[creds] = cachedToken{accessToken: tok.AccessToken, expiry: tok.Expiry}
	return tok.AccessToken, nil
}

// Invalidate drops the cached token for creds, forcing a refresh on next use.
func (c *TokenCache) Invalidate(creds Credentials) {
	c.mu.Lock()
	delete(c.entries, creds)
	c.mu.Unlock()
}

func (c *TokenCache) fresh(e cachedToken) bool {
	if e.accessToken == "" {
		return false
	}
	if e.expiry.IsZero() {
		return true
	}
	return c.now().Before(e.expiry.Add(-c.margin))
}

func (c *TokenCache) refresh(ctx context.Context, creds Credentials) (*oauth2.Token, error) {
	if creds.RefreshToken == "" {
		return nil, fmt.Errorf("gmail: refresh token not configured")
	}
	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh access token: %w", err)
	}
	return tok, nil
}
