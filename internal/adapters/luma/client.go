package luma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"lumaregistrar/internal/domain"
)

// DefaultBaseURL is the public Luma API host.
const DefaultBaseURL = "https://api2.luma.com"

const maxErrorBody = 4096

type lumaHTTPClient struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// Option configures the Luma client.
type Option func(*lumaHTTPClient)

// WithRateLimit paces outbound requests to rps requests per second with the given burst.
// rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *lumaHTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient returns a RegistrationProvider that calls the Luma API at baseURL.
func NewClient(client *http.Client, baseURL string, opts ...Option) domain.RegistrationProvider {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &lumaHTTPClient{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendCodeRequest struct {
	Email string `json:"email"`
}

type signInRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (c *lumaHTTPClient) Register(ctx context.Context, req domain.RegisterRequest) (json.RawMessage, error) {
	return c.post(ctx, "/event/register", req, domain.ErrRegistrationRejected)
}

func (c *lumaHTTPClient) SendVerificationCode(ctx context.Context, email string) error {
	_, err := c.post(ctx, "/auth/email/send-sign-in-code", sendCodeRequest{Email: email}, domain.ErrCodeDispatchFailed)
	return err
}

func (c *lumaHTTPClient) SignIn(ctx context.Context, email, code string) (json.RawMessage, error) {
	return c.post(ctx, "/auth/email/sign-in-with-code", signInRequest{Email: email, Code: code}, domain.ErrSignInRejected)
}

// post sends body as JSON and returns the raw JSON response. Non-2xx answers become a
// *domain.ProviderError of the given kind carrying the remote body.
func (c *lumaHTTPClient) post(ctx context.Context, path string, body any, kind error) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("luma rate limiter: %w", err)
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call luma %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.ProviderError{
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read luma response: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("luma %s returned invalid JSON", path)
	}
	return json.RawMessage(raw), nil
}
