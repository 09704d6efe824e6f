package domain

import (
	"context"
	"encoding/json"
)

// RegisterRequest is the payload sent to the provider's register endpoint.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	EventID   string `json:"event_api_id"`
}

// RegistrationProvider wraps the ticketing platform's register / send-code / sign-in endpoints.
// Implementations do not retry; non-2xx answers are returned as *ProviderError.
type RegistrationProvider interface {
	Register(ctx context.Context, req RegisterRequest) (json.RawMessage, error)
	SendVerificationCode(ctx context.Context, email string) error
	SignIn(ctx context.Context, email, code string) (json.RawMessage, error)
}
