package domain

import (
	"context"
	"time"
)

// TokenIssuer issues bearer tokens for API operators.
type TokenIssuer interface {
	Issue(subject string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}

// MailboxAuthorizer drives the one-time OAuth consent for the mailbox account.
type MailboxAuthorizer interface {
	AuthURL(state string) string
	// Exchange trades an authorization code for a long-lived refresh token.
	Exchange(ctx context.Context, code string) (refreshToken string, err error)
}
