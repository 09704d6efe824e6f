// @title Event Registrar API
// @version 1.0
// @description Registers attendees to Luma events: register, send code, read the code from Gmail, sign in.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the operator token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lumaregistrar/config"
	_ "lumaregistrar/docs"
	"lumaregistrar/internal/app"
	deliveryhttp "lumaregistrar/internal/delivery/http"
	"lumaregistrar/internal/delivery/http/controllers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise application", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	if a.Verifier == nil {
		logger.Warn("JWT_SECRET is not set; API routes are unauthenticated")
	}

	var store controllers.Pinger
	if a.DB != nil {
		store = a.DB
	}
	handler := deliveryhttp.NewHandler(deliveryhttp.Controllers{
		Registrations: controllers.NewRegistrationController(logger, a.Service),
		Gmail:         controllers.NewGmailController(logger, a.Authorizer),
		Health:        controllers.NewHealthController(logger, store),
	}, a.Verifier, cfg.AllowedOrigins, logger)

	// No WriteTimeout: bulk runs stream progress for as long as the batch takes.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "err", err)
	}
	logger.Info("server stopped")
}
