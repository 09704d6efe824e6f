package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lumaregistrar/internal/domain"
)

// DefaultAPIBaseURL is the Gmail REST API host.
const DefaultAPIBaseURL = "https://gmail.googleapis.com"

type gmailHTTPClient struct {
	client  *http.Client
	baseURL string
	tokens  *TokenCache
	creds   Credentials
	now     func() time.Time
}

// NewClient returns a domain.Mailbox backed by the Gmail API for the account identified by creds.
func NewClient(client *http.Client, baseURL string, tokens *TokenCache, creds Credentials) domain.Mailbox {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &gmailHTTPClient{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tokens:  tokens,
		creds:   creds,
		now:     time.Now,
	}
}

type listMessagesResponse struct {
	Messages []struct {
		ID       string `json:"id"`
		ThreadID string `json:"threadId"`
	} `json:"messages"`
	ResultSizeEstimate int `json:"resultSizeEstimate"`
}

type messageBody struct {
	Size int    `json:"size"`
	Data string `json:"data"`
}

type messagePart struct {
	MimeType string        `json:"mimeType"`
	Body     messageBody   `json:"body"`
	Parts    []messagePart `json:"parts"`
}

type messageResponse struct {
	ID      string      `json:"id"`
	Payload messagePart `json:"payload"`
}

// Search lists message ids matching q. Gmail returns them newest first.
func (c *gmailHTTPClient) Search(ctx context.Context, q domain.MailboxQuery) ([]string, error) {
	params := url.Values{}
	params.Set("q", c.buildQuery(q))
	var data listMessagesResponse
	if err := c.get(ctx, "/gmail/v1/users/me/messages?"+params.Encode(), &data); err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	ids := make([]string, 0, len(data.Messages))
	for _, m := range data.Messages {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// Fetch returns the full message; part bodies stay base64url encoded.
func (c *gmailHTTPClient) Fetch(ctx context.Context, id string) (*domain.MailMessage, error) {
	var data messageResponse
	path := "/gmail/v1/users/me/messages/" + url.PathEscape(id) + "?format=full"
	if err := c.get(ctx, path, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch message details: %w", err)
	}
	return &domain.MailMessage{ID: data.ID, Payload: toDomainPart(data.Payload)}, nil
}

// buildQuery renders q in Gmail search syntax. The recency window uses after:<unix>,
// which has second precision.
func (c *gmailHTTPClient) buildQuery(q domain.MailboxQuery) string {
	var terms []string
	if q.From != "" {
		terms = append(terms, "from:"+q.From)
	}
	if q.To != "" {
		terms = append(terms, "to:"+q.To)
	}
	if q.SubjectContains != "" {
		terms = append(terms, "subject:"+q.SubjectContains)
	}
	if q.NewerThan > 0 {
		terms = append(terms, "after:"+strconv.FormatInt(c.now().Add(-q.NewerThan).Unix(), 10))
	}
	return strings.Join(terms, " ")
}

func (c *gmailHTTPClient) get(ctx context.Context, path string, dest any) error {
	token, err := c.tokens.Token(ctx, c.creds)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate(c.creds)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gmail api returned status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode gmail response: %w", err)
	}
	return nil
}

func toDomainPart(p messagePart) domain.MessagePart {
	out := domain.MessagePart{MimeType: p.MimeType, Data: p.Body.Data}
	for _, child := range p.Parts {
		out.Parts = append(out.Parts, toDomainPart(child))
	}
	return out
}
