package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"lumaregistrar/internal/domain"
	"lumaregistrar/internal/pkg/validate"

	"github.com/google/uuid"
)

// Progress labels, emitted in this order on the happy path.
const (
	PhaseStarting     = "Starting..."
	PhaseCreating     = "Creating registration record..."
	PhaseRegistering  = "Registering to event..."
	PhaseSendingCode  = "Sending verification code..."
	PhaseWaitingCode  = "Waiting for verification code..."
	PhaseSigningIn    = "Signing in with verification code..."
	PhaseCompleted    = "Registration completed successfully!"
	phaseFailedPrefix = "Failed: "
)

// FailedPhase is the label reported for an entry that did not complete.
func FailedPhase(err error) string {
	return phaseFailedPrefix + err.Error()
}

// RegistrationConfig tunes the orchestration. Zero values fall back to the package defaults.
type RegistrationConfig struct {
	MaxAttempts      int
	PollInterval     time.Duration
	DefaultEventID   string
	SummaryRecipient string
	// StoreTimeout bounds List, GetByID and Delete. Zero means no extra bound.
	StoreTimeout time.Duration
}

type registrationService struct {
	repo         domain.RegistrationRepository
	provider     domain.RegistrationProvider
	codes        domain.CodeRetriever
	emailService domain.EmailService
	cfg          RegistrationConfig
	logger       *slog.Logger
	newRunID     func() string
}

// NewRegistrationService wires the orchestration engine. emailService may be nil, in which
// case no bulk summary is sent.
func NewRegistrationService(
	repo domain.RegistrationRepository,
	provider domain.RegistrationProvider,
	codes domain.CodeRetriever,
	emailService domain.EmailService,
	cfg RegistrationConfig,
	logger *slog.Logger,
) domain.RegistrationService {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultPollAttempts
	}
	if cfg.PollInterval < 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &registrationService{
		repo:         repo,
		provider:     provider,
		codes:        codes,
		emailService: emailService,
		cfg:          cfg,
		logger:       logger,
		newRunID:     uuid.NewString,
	}
}

func (s *registrationService) ProcessOne(ctx context.Context, entry domain.EmailEntry, eventID string, onProgress domain.ProgressFunc) (*domain.Registration, error) {
	if eventID == "" {
		eventID = s.cfg.DefaultEventID
	}
	if err := validate.Struct(entry); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", domain.ErrInvalidInput)
	}
	progress := s.reporter(ctx, entry.Email, onProgress)
	logger := s.logger.With("email", entry.Email, "event_api_id", eventID)

	progress(PhaseCreating)
	reg := domain.NewRegistration(entry, eventID)
	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, fmt.Errorf("failed to create registration record: %w", err)
	}
	logger = logger.With("registration_id", reg.ID)

	progress(PhaseRegistering)
	registered, err := s.provider.Register(ctx, domain.RegisterRequest{
		FirstName: entry.FirstName,
		LastName:  entry.LastName,
		Email:     entry.Email,
		EventID:   eventID,
	})
	if err != nil {
		return nil, s.fail(ctx, logger, reg.ID, err)
	}
	if len(registered) == 0 {
		registered = json.RawMessage(`{}`)
	}
	if err := s.repo.Update(ctx, reg.ID, domain.RegistrationUpdate{ProviderResponse: registered}); err != nil {
		return nil, s.fail(ctx, logger, reg.ID, err)
	}

	progress(PhaseSendingCode)
	if err := s.provider.SendVerificationCode(ctx, entry.Email); err != nil {
		return nil, s.fail(ctx, logger, reg.ID, err)
	}
	if err := s.repo.Update(ctx, reg.ID, domain.RegistrationUpdate{Status: statusPtr(domain.StatusCodeSent)}); err != nil {
		return nil, s.fail(ctx, logger, reg.ID, err)
	}

	progress(PhaseWaitingCode)
	code, err := s.codes.RetrieveCode(ctx, entry.Email, s.cfg.MaxAttempts, s.cfg.PollInterval)
	if err != nil {
		return nil, s.fail(ctx, logger, reg.ID, err)
	}
	if err := s.repo.Update(ctx, reg.ID, domain.RegistrationUpdate{VerificationCode: &code}); err != nil {
		return nil, s.fail(ctx, logger, reg.ID, err)
	}

	progress(PhaseSigningIn)
	signedIn, err := s.provider.SignIn(ctx, entry.Email, code)
	if err != nil {
		return nil, s.fail(ctx, logger, reg.ID, err)
	}
	merged, err := mergeSignIn(registered, signedIn)
	if err != nil {
		return nil, s.fail(ctx, logger, reg.ID, err)
	}
	if err := s.repo.Update(ctx, reg.ID, domain.RegistrationUpdate{
		Status:           statusPtr(domain.StatusCompleted),
		ProviderResponse: merged,
	}); err != nil {
		return nil, s.fail(ctx, logger, reg.ID, err)
	}

	// The record is terminal from here on; a failed read must not flip it to failed.
	stored, err := s.repo.GetByID(ctx, reg.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read completed registration: %w", err)
	}
	progress(PhaseCompleted)
	logger.InfoContext(ctx, "registration completed")
	return stored, nil
}

func (s *registrationService) ProcessMany(ctx context.Context, entries []domain.EmailEntry, eventID string, onProgress domain.BulkProgressFunc) *domain.BulkResult {
	if eventID == "" {
		eventID = s.cfg.DefaultEventID
	}
	result := &domain.BulkResult{
		RunID:      s.newRunID(),
		Successful: make([]*domain.Registration, 0, len(entries)),
		Failed:     []domain.BulkFailure{},
	}
	logger := s.logger.With("run_id", result.RunID, "event_api_id", eventID)
	logger.InfoContext(ctx, "bulk registration started", "entries", len(entries))

	for i, entry := range entries {
		var entryProgress domain.ProgressFunc
		if onProgress != nil {
			email := entry.Email
			entryProgress = func(phase string) { onProgress(email, phase) }
		}
		report := s.reporter(ctx, entry.Email, entryProgress)

		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, domain.BulkFailure{Email: entry.Email, Error: err.Error()})
			report(FailedPhase(err))
			continue
		}

		report(PhaseStarting)
		reg, err := s.ProcessOne(ctx, entry, eventID, entryProgress)
		if err != nil {
			logger.WarnContext(ctx, "bulk entry failed", "index", i, "email", entry.Email, "err", err)
			result.Failed = append(result.Failed, domain.BulkFailure{Email: entry.Email, Error: err.Error()})
			report(FailedPhase(err))
			continue
		}
		result.Successful = append(result.Successful, reg)
	}

	logger.InfoContext(ctx, "bulk registration finished",
		"total", len(entries), "successful", len(result.Successful), "failed", len(result.Failed))
	s.sendSummary(ctx, logger, eventID, len(entries), result)
	return result
}

func (s *registrationService) List(ctx context.Context) ([]*domain.Registration, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.repo.List(ctx)
}

func (s *registrationService) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.repo.GetByID(ctx, id)
}

func (s *registrationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.repo.Delete(ctx, id)
}

func (s *registrationService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// fail records cause on the registration and returns cause unchanged. The write survives
// cancellation of ctx so an aborted run still leaves a failed record behind.
func (s *registrationService) fail(ctx context.Context, logger *slog.Logger, id string, cause error) error {
	msg := cause.Error()
	upd := domain.RegistrationUpdate{Status: statusPtr(domain.StatusFailed), ErrorMessage: &msg}
	if err := s.repo.Update(context.WithoutCancel(ctx), id, upd); err != nil {
		logger.ErrorContext(ctx, "failed to record registration failure", "cause", cause, "err", err)
	}
	logger.WarnContext(ctx, "registration failed", "err", cause)
	return cause
}

// reporter wraps fn so a panicking callback is logged instead of aborting the run.
func (s *registrationService) reporter(ctx context.Context, email string, fn domain.ProgressFunc) domain.ProgressFunc {
	return func(phase string) {
		if fn == nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				s.logger.WarnContext(ctx, "progress callback panicked", "email", email, "phase", phase, "panic", r)
			}
		}()
		fn(phase)
	}
}

func (s *registrationService) sendSummary(ctx context.Context, logger *slog.Logger, eventID string, total int, result *domain.BulkResult) {
	if s.emailService == nil || s.cfg.SummaryRecipient == "" {
		return
	}
	err := s.emailService.SendBulkSummary(context.WithoutCancel(ctx), &domain.BulkSummaryEmailData{
		Email:      s.cfg.SummaryRecipient,
		RunID:      result.RunID,
		EventID:    eventID,
		Total:      total,
		Successful: result.Successful,
		Failed:     result.Failed,
	})
	if err != nil {
		logger.WarnContext(ctx, "bulk summary email failed", "err", err)
	}
}

// mergeSignIn adds the sign-in payload under "signIn" without touching the registration keys.
// A registration payload that is not a JSON object is kept under "register".
func mergeSignIn(registered, signedIn json.RawMessage) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(registered, &obj); err != nil || obj == nil {
		obj = map[string]json.RawMessage{"register": registered}
	}
	if len(signedIn) == 0 {
		signedIn = json.RawMessage(`{}`)
	}
	obj["signIn"] = signedIn
	merged, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to merge sign in response: %w", err)
	}
	return merged, nil
}

func statusPtr(s domain.RegistrationStatus) *domain.RegistrationStatus {
	return &s
}
