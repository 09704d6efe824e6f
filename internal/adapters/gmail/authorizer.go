package gmail

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"lumaregistrar/internal/domain"
)

// DefaultAuthURL is Google's OAuth2 consent endpoint.
const DefaultAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"

// ReadonlyScope is the only scope the registrar needs.
const ReadonlyScope = "https://www.googleapis.com/auth/gmail.readonly"

type authorizer struct {
	cfg        *oauth2.Config
	httpClient *http.Client
}

// NewAuthorizer returns a domain.MailboxAuthorizer for the one-time consent flow that yields a refresh token.
// Empty authURL/tokenURL fall back to Google's endpoints.
func NewAuthorizer(httpClient *http.Client, clientID, clientSecret, redirectURI, authURL, tokenURL string) domain.MailboxAuthorizer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &authorizer{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{ReadonlyScope},
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
	}
}

// AuthURL asks for offline access and forces the consent screen so Google always returns a refresh token.
func (a *authorizer) AuthURL(state string) string {
	return a.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

func (a *authorizer) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	tok, err := a.cfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange code for tokens: %w", err)
	}
	if tok.RefreshToken == "" {
		return "", fmt.Errorf("token response did not include a refresh token")
	}
	return tok.RefreshToken, nil
}
