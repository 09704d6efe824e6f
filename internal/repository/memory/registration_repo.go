// Package memory holds process-local repositories used by the CLI and tests.
// Nothing here survives a restart.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"lumaregistrar/internal/domain"
)

type registrationRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.Registration
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewRegistrationRepository returns an in-memory domain.RegistrationRepository.
// IDs are ULIDs, so they sort by creation time.
func NewRegistrationRepository() domain.RegistrationRepository {
	return newRegistrationRepository(time.Now)
}

func newRegistrationRepository(now func() time.Time) *registrationRepository {
	return &registrationRepository{
		records: make(map[string]*domain.Registration),
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     now,
	}
}

func (r *registrationRepository) Create(_ context.Context, reg *domain.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	id, err := ulid.New(ulid.Timestamp(now), r.entropy)
	if err != nil {
		return err
	}
	reg.ID = id.String()
	if reg.Status == "" {
		reg.Status = domain.StatusPending
	}
	reg.CreatedAt = now
	reg.UpdatedAt = now
	r.records[reg.ID] = clone(reg)
	return nil
}

func (r *registrationRepository) Update(_ context.Context, id string, upd domain.RegistrationUpdate) error {
	if upd.ProviderResponse != nil && !json.Valid(upd.ProviderResponse) {
		return fmt.Errorf("%w: provider response is not valid JSON", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	if upd.Status != nil {
		reg.Status = *upd.Status
	}
	if upd.VerificationCode != nil {
		code := *upd.VerificationCode
		reg.VerificationCode = &code
	}
	if upd.ProviderResponse != nil {
		reg.ProviderResponse = append([]byte(nil), upd.ProviderResponse...)
	}
	if upd.ErrorMessage != nil {
		msg := *upd.ErrorMessage
		reg.ErrorMessage = &msg
	}
	reg.UpdatedAt = r.now().UTC()
	return nil
}

func (r *registrationRepository) GetByID(_ context.Context, id string) (*domain.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(reg), nil
}

func (r *registrationRepository) List(_ context.Context) ([]*domain.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := make([]*domain.Registration, 0, len(r.records))
	for _, reg := range r.records {
		regs = append(regs, clone(reg))
	}
	// Newest first; the ULID breaks ties within the same instant.
	slices.SortFunc(regs, func(a, b *domain.Registration) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	return regs, nil
}

func (r *registrationRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func clone(reg *domain.Registration) *domain.Registration {
	cp := *reg
	if reg.VerificationCode != nil {
		code := *reg.VerificationCode
		cp.VerificationCode = &code
	}
	if reg.ErrorMessage != nil {
		msg := *reg.ErrorMessage
		cp.ErrorMessage = &msg
	}
	if reg.ProviderResponse != nil {
		cp.ProviderResponse = append([]byte(nil), reg.ProviderResponse...)
	}
	return &cp
}
