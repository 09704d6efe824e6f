package domain

import (
	"context"
	"encoding/json"
	"time"
)

// RegistrationStatus is the lifecycle state of a registration record.
type RegistrationStatus string

const (
	StatusPending  RegistrationStatus = "pending"
	StatusCodeSent RegistrationStatus = "code_sent"
	// StatusSignedIn is a valid stored value but the orchestrator never writes it:
	// a successful sign-in moves the record from code_sent straight to completed.
	StatusSignedIn  RegistrationStatus = "signed_in"
	StatusCompleted RegistrationStatus = "completed"
	StatusFailed    RegistrationStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s RegistrationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s is one of the known statuses.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCodeSent, StatusSignedIn, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// EmailEntry is one registrant awaiting processing. Email is compared case-sensitively.
type EmailEntry struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Registration is the persisted state of one entry's registration attempt.
// swagger:model Registration
type Registration struct {
	ID               string             `json:"id"`
	Email            string             `json:"email"`
	FirstName        string             `json:"first_name"`
	LastName         string             `json:"last_name"`
	EventID          string             `json:"event_api_id"`
	Status           RegistrationStatus `json:"status"`
	VerificationCode *string            `json:"verification_code"`
	ProviderResponse json.RawMessage    `json:"luma_response" swaggertype:"object"`
	ErrorMessage     *string            `json:"error_message"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// NewRegistration returns a pending Registration for entry. ID and timestamps are set by the repository on create.
func NewRegistration(entry EmailEntry, eventID string) *Registration {
	return &Registration{
		Email:     entry.Email,
		FirstName: entry.FirstName,
		LastName:  entry.LastName,
		EventID:   eventID,
		Status:    StatusPending,
	}
}

// RegistrationUpdate carries the fields to merge into a stored record. Nil fields are left untouched.
type RegistrationUpdate struct {
	Status           *RegistrationStatus
	VerificationCode *string
	ProviderResponse json.RawMessage
	ErrorMessage     *string
}

// Empty reports whether the update would change nothing.
func (u RegistrationUpdate) Empty() bool {
	return u.Status == nil && u.VerificationCode == nil && u.ProviderResponse == nil && u.ErrorMessage == nil
}

// BulkFailure is one failed entry of a bulk run.
type BulkFailure struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// BulkResult aggregates a bulk run. It is never persisted.
type BulkResult struct {
	RunID      string          `json:"run_id"`
	Successful []*Registration `json:"successful"`
	Failed     []BulkFailure   `json:"failed"`
}

// ProgressFunc receives a phase label for a single entry.
type ProgressFunc func(phase string)

// BulkProgressFunc receives a phase label tagged with the entry's email.
type BulkProgressFunc func(email, phase string)

// RegistrationRepository defines storage operations for registration records.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	Update(ctx context.Context, id string, upd RegistrationUpdate) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	// List returns all records, most recently created first.
	List(ctx context.Context) ([]*Registration, error)
	Delete(ctx context.Context, id string) error
}

// RegistrationService is the caller-facing orchestration API.
type RegistrationService interface {
	// ProcessOne drives a single entry through every phase and returns the stored record.
	ProcessOne(ctx context.Context, entry EmailEntry, eventID string, onProgress ProgressFunc) (*Registration, error)
	// ProcessMany runs entries sequentially in input order. It never fails as a whole.
	ProcessMany(ctx context.Context, entries []EmailEntry, eventID string, onProgress BulkProgressFunc) *BulkResult
	List(ctx context.Context) ([]*Registration, error)
	GetByID(ctx context.Context, id string) (*Registration, error)
	Delete(ctx context.Context, id string) error
}
