package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"lumaregistrar/internal/domain"
)

// Defaults for the verification email search.
const (
	DefaultCodeSender   = "noreply@luma.co"
	DefaultCodeSubject  = "verification"
	DefaultSearchWindow = 5 * time.Minute
	DefaultPollAttempts = 10
	DefaultPollInterval = 5 * time.Second
)

// verificationCodeRegex matches six digits not adjacent to other digits.
var verificationCodeRegex = regexp.MustCompile(`(?:^|\D)(\d{6})(?:\D|$)`)

// CodePollerConfig controls which mailbox messages count as verification emails.
type CodePollerConfig struct {
	Sender       string
	Subject      string
	SearchWindow time.Duration
}

type codePoller struct {
	mailbox domain.Mailbox
	cfg     CodePollerConfig
	logger  *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewCodePoller returns a CodeRetriever that polls mailbox for verification emails.
func NewCodePoller(mailbox domain.Mailbox, cfg CodePollerConfig, logger *slog.Logger) domain.CodeRetriever {
	if cfg.Sender == "" {
		cfg.Sender = DefaultCodeSender
	}
	if cfg.Subject == "" {
		cfg.Subject = DefaultCodeSubject
	}
	if cfg.SearchWindow <= 0 {
		cfg.SearchWindow = DefaultSearchWindow
	}
	return &codePoller{mailbox: mailbox, cfg: cfg, logger: logger, sleep: sleepContext}
}

// RetrieveCode queries the mailbox up to maxAttempts times, waiting interval between
// attempts, and returns the first code found. Search and fetch errors only cost the attempt.
func (p *codePoller) RetrieveCode(ctx context.Context, address string, maxAttempts int, interval time.Duration) (string, error) {
	if maxAttempts < 1 {
		return "", fmt.Errorf("%w: maxAttempts must be at least 1", domain.ErrInvalidInput)
	}
	if interval < 0 {
		return "", fmt.Errorf("%w: interval must not be negative", domain.ErrInvalidInput)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := p.attempt(ctx, address)
		switch {
		case err != nil && ctx.Err() != nil:
			return "", ctx.Err()
		case err != nil:
			p.logger.WarnContext(ctx, "verification code attempt failed",
				"email", address, "attempt", attempt+1, "max_attempts", maxAttempts, "err", err)
		case code != "":
			p.logger.DebugContext(ctx, "verification code found", "email", address, "attempt", attempt+1)
			return code, nil
		}
		if attempt < maxAttempts-1 {
			if err := p.sleep(ctx, interval); err != nil {
				return "", err
			}
		}
	}
	return "", domain.ErrCodeNotFound
}

// attempt runs one search. An empty code with nil error means "nothing yet".
func (p *codePoller) attempt(ctx context.Context, address string) (string, error) {
	ids, err := p.mailbox.Search(ctx, domain.MailboxQuery{
		From:            p.cfg.Sender,
		To:              address,
		SubjectContains: p.cfg.Subject,
		NewerThan:       p.cfg.SearchWindow,
	})
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}
	msg, err := p.mailbox.Fetch(ctx, ids[0])
	if err != nil {
		return "", err
	}
	text, err := messageText(msg.Payload)
	if err != nil {
		p.logger.DebugContext(ctx, "verification email body could not be decoded", "email", address, "message_id", msg.ID, "err", err)
		return "", nil
	}
	return extractCode(text), nil
}

// messageText decodes a single-body payload, or concatenates every text part of a multipart one.
// Parts are newline-separated so digits at a part boundary never join into one token.
func messageText(part domain.MessagePart) (string, error) {
	if part.Data != "" {
		return decodeBody(part.Data)
	}
	var sb strings.Builder
	if err := appendTextParts(&sb, part.Parts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func appendTextParts(sb *strings.Builder, parts []domain.MessagePart) error {
	for _, part := range parts {
		switch {
		case len(part.Parts) > 0:
			if err := appendTextParts(sb, part.Parts); err != nil {
				return err
			}
		case part.MimeType == "text/plain" || part.MimeType == "text/html":
			text, err := decodeBody(part.Data)
			if err != nil {
				return err
			}
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(text)
		}
	}
	return nil
}

// decodeBody accepts base64url with or without padding, and tolerates the standard alphabet.
func decodeBody(data string) (string, error) {
	data = strings.Map(func(r rune) rune {
		switch r {
		case '+':
			return '-'
		case '/':
			return '_'
		case '=', '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, data)
	raw, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("decode message body: %w", err)
	}
	return string(raw), nil
}

func extractCode(text string) string {
	m := verificationCodeRegex.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
