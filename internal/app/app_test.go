package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"lumaregistrar/config"
	"lumaregistrar/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Store:          StoreMemory,
		DefaultEventID: config.DefaultEventID,
		HTTPTimeout:    time.Second,
		Luma:           config.LumaConfig{BaseURL: "http://luma.invalid", RateLimit: 2, Burst: 1},
		Gmail: config.GmailConfig{
			APIBaseURL:   "http://gmail.invalid",
			TokenURL:     "http://oauth.invalid/token",
			MaxAttempts:  1,
			PollInterval: time.Millisecond,
		},
		Mailer: config.MailerConfig{Provider: "noop"},
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_MemoryStoreMinimal(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), discard())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Service)
	assert.Nil(t, a.DB)
	assert.Nil(t, a.Authorizer)
	assert.Nil(t, a.Issuer)
	assert.Nil(t, a.Verifier)

	list, err := a.Service.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNew_OptionalParts(t *testing.T) {
	cfg := memoryConfig()
	cfg.JWTSecret = "secret"
	cfg.Gmail.ClientID = "cid"
	cfg.SummaryRecipient = "ops@x.com"

	a, err := New(context.Background(), cfg, discard())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Authorizer)
	require.NotNil(t, a.Issuer)
	require.NotNil(t, a.Verifier)

	token, err := a.Issuer.Issue("ops", time.Minute)
	require.NoError(t, err)
	subject, err := a.Verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", subject)
}

func TestNew_Errors(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store = "redis"
	_, err := New(context.Background(), cfg, discard())
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	cfg = memoryConfig()
	cfg.SummaryRecipient = "ops@x.com"
	cfg.Mailer = config.MailerConfig{Provider: "ses", SESRegion: "eu-west-1"}
	_, err = New(context.Background(), cfg, discard())
	require.Error(t, err)
}
