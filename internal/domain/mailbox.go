package domain

import (
	"context"
	"time"
)

// MailboxQuery filters mailbox messages.
type MailboxQuery struct {
	From            string
	To              string
	SubjectContains string
	NewerThan       time.Duration
}

// MessagePart is one node of a message body tree. Data is base64url encoded as delivered by the provider.
type MessagePart struct {
	MimeType string
	Data     string
	Parts    []MessagePart
}

// MailMessage is a fetched mailbox message.
type MailMessage struct {
	ID      string
	Payload MessagePart
}

// Mailbox is the mailbox provider boundary.
type Mailbox interface {
	// Search returns matching message ids, newest first.
	Search(ctx context.Context, q MailboxQuery) ([]string, error)
	Fetch(ctx context.Context, id string) (*MailMessage, error)
}

// CodeRetriever polls a mailbox for a verification code sent to address.
type CodeRetriever interface {
	RetrieveCode(ctx context.Context, address string, maxAttempts int, interval time.Duration) (string, error)
}
