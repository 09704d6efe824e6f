package memory

import (
	"context"
	"testing"
	"time"

	"lumaregistrar/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func TestRegistrationRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewRegistrationRepository()

	reg := domain.NewRegistration(domain.EmailEntry{Email: "a@x.com", FirstName: "A"}, "evt-1")
	require.NoError(t, repo.Create(ctx, reg))
	require.Len(t, reg.ID, 26)
	require.False(t, reg.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, "a@x.com", got.Email)

	// Returned records are copies.
	got.Status = domain.StatusFailed
	again, err := repo.GetByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, again.Status)
}

func TestRegistrationRepository_UpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	clk := &stepClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	repo := newRegistrationRepository(clk.now)

	reg := domain.NewRegistration(domain.EmailEntry{Email: "a@x.com"}, "evt-1")
	require.NoError(t, repo.Create(ctx, reg))

	require.NoError(t, repo.Update(ctx, reg.ID, domain.RegistrationUpdate{ProviderResponse: []byte(`{"ok":true}`)}))
	code := "123456"
	require.NoError(t, repo.Update(ctx, reg.ID, domain.RegistrationUpdate{VerificationCode: &code}))

	got, err := repo.GetByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(got.ProviderResponse))
	assert.Equal(t, "123456", *got.VerificationCode)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestRegistrationRepository_UpdateMissing(t *testing.T) {
	s := domain.StatusFailed
	err := NewRegistrationRepository().Update(context.Background(), "nope", domain.RegistrationUpdate{Status: &s})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistrationRepository_UpdateRejectsInvalidPayload(t *testing.T) {
	ctx := context.Background()
	repo := NewRegistrationRepository()
	reg := domain.NewRegistration(domain.EmailEntry{Email: "a@x.com"}, "evt-1")
	require.NoError(t, repo.Create(ctx, reg))

	err := repo.Update(ctx, reg.ID, domain.RegistrationUpdate{ProviderResponse: []byte(`not json`)})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := repo.GetByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProviderResponse)
}

func TestRegistrationRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	clk := &stepClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	repo := newRegistrationRepository(clk.now)

	var ids []string
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		reg := domain.NewRegistration(domain.EmailEntry{Email: email}, "evt-1")
		require.NoError(t, repo.Create(ctx, reg))
		ids = append(ids, reg.ID)
	}

	regs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, regs, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{regs[0].ID, regs[1].ID, regs[2].ID})
}

func TestRegistrationRepository_ListSameInstantUsesID(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newRegistrationRepository(func() time.Time { return fixed })

	first := domain.NewRegistration(domain.EmailEntry{Email: "a@x.com"}, "evt-1")
	second := domain.NewRegistration(domain.EmailEntry{Email: "b@x.com"}, "evt-1")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	regs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, regs[0].ID)
	assert.Equal(t, first.ID, regs[1].ID)
}

func TestRegistrationRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewRegistrationRepository()

	require.ErrorIs(t, repo.Delete(ctx, "missing"), domain.ErrNotFound)

	reg := domain.NewRegistration(domain.EmailEntry{Email: "a@x.com"}, "evt-1")
	require.NoError(t, repo.Create(ctx, reg))
	require.NoError(t, repo.Delete(ctx, reg.ID))

	_, err := repo.GetByID(ctx, reg.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, reg.ID), domain.ErrNotFound)
}
