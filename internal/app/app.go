// Package app wires configuration into the registration engine and its adapters.
// Both the HTTP server and the CLI build their dependencies through New.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"lumaregistrar/config"
	"lumaregistrar/internal/adapters/auth"
	"lumaregistrar/internal/adapters/email"
	"lumaregistrar/internal/adapters/gmail"
	"lumaregistrar/internal/adapters/luma"
	"lumaregistrar/internal/domain"
	"lumaregistrar/internal/repository/memory"
	"lumaregistrar/internal/repository/postgres"
	"lumaregistrar/internal/services"
)

// Store names accepted in config.Config.Store.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// App holds the wired dependencies. Optional parts are nil when not configured.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Service    domain.RegistrationService
	Authorizer domain.MailboxAuthorizer
	Issuer     domain.TokenIssuer
	Verifier   domain.TokenVerifier
	// DB is nil for the memory store.
	DB *sql.DB
}

// New builds the application from cfg. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	repo, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var lumaOpts []luma.Option
	if cfg.Luma.RateLimit > 0 {
		lumaOpts = append(lumaOpts, luma.WithRateLimit(cfg.Luma.RateLimit, cfg.Luma.Burst))
	}
	provider := luma.NewClient(httpClient, cfg.Luma.BaseURL, lumaOpts...)

	if cfg.Gmail.RefreshToken == "" {
		logger.Warn("GMAIL_REFRESH_TOKEN is not set; verification codes cannot be read until it is configured")
	}
	tokens := gmail.NewTokenCache(httpClient, cfg.Gmail.TokenURL, gmail.DefaultExpiryMargin)
	mailbox := gmail.NewClient(httpClient, cfg.Gmail.APIBaseURL, tokens, gmail.Credentials{
		ClientID:     cfg.Gmail.ClientID,
		ClientSecret: cfg.Gmail.ClientSecret,
		RefreshToken: cfg.Gmail.RefreshToken,
	})
	poller := services.NewCodePoller(mailbox, services.CodePollerConfig{
		Sender:       cfg.Gmail.Sender,
		SearchWindow: cfg.Gmail.SearchWindow,
	}, logger)

	if cfg.Gmail.ClientID != "" {
		a.Authorizer = gmail.NewAuthorizer(httpClient, cfg.Gmail.ClientID, cfg.Gmail.ClientSecret,
			cfg.Gmail.RedirectURI, "", cfg.Gmail.TokenURL)
	}

	var emailService domain.EmailService
	if cfg.SummaryRecipient != "" {
		mailer, err := email.NewMailer(email.MailerConfig{
			Provider:    cfg.Mailer.Provider,
			FromAddress: cfg.Mailer.FromAddress,
			FromName:    cfg.Mailer.FromName,
			SES: email.SESConfig{
				Region:             cfg.Mailer.SESRegion,
				AccessKeyID:        cfg.Mailer.SESAccessKeyID,
				SecretAccessKey:    cfg.Mailer.SESSecretKey,
				InsecureSkipVerify: cfg.Mailer.SESInsecureTLS,
			},
		})
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to create mailer: %w", err)
		}
		emailService = services.NewEmailService(mailer, email.NewTemplateRenderer())
	}

	if cfg.JWTSecret != "" {
		a.Issuer = auth.NewJWTIssuer(cfg.JWTSecret)
		a.Verifier = auth.NewJWTVerifier(cfg.JWTSecret)
	}

	a.Service = services.NewRegistrationService(repo, provider, poller, emailService, services.RegistrationConfig{
		MaxAttempts:      cfg.Gmail.MaxAttempts,
		PollInterval:     cfg.Gmail.PollInterval,
		DefaultEventID:   cfg.DefaultEventID,
		SummaryRecipient: cfg.SummaryRecipient,
		StoreTimeout:     cfg.HTTPTimeout,
	}, logger)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (domain.RegistrationRepository, error) {
	switch a.Config.Store {
	case StoreMemory:
		a.Logger.Info("using in-memory registration store; records are lost on exit")
		return memory.NewRegistrationRepository(), nil
	case StorePostgres, "":
		db, err := postgres.Open(ctx, a.Config.DBUrl)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, db, a.Logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.DB = db
		return postgres.NewRegistrationRepository(db), nil
	default:
		return nil, fmt.Errorf("%w: unknown store %q", domain.ErrInvalidInput, a.Config.Store)
	}
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
