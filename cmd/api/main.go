package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ainager-onboarding/internal/application/artifact"
	"github.com/ainager-onboarding/internal/application/onboarding"
	"github.com/ainager-onboarding/internal/application/otp"
	"github.com/ainager-onboarding/internal/application/website"
	"github.com/ainager-onboarding/internal/config"
	jwtinfra "github.com/ainager-onboarding/internal/infrastructure/jwt"
	"github.com/ainager-onboarding/internal/infrastructure/pdf"
	"github.com/ainager-onboarding/internal/infrastructure/postgres"
	s3infra "github.com/ainager-onboarding/internal/infrastructure/s3"
	"github.com/ainager-onboarding/internal/infrastructure/smtp"
	"github.com/ainager-onboarding/internal/infrastructure/sns"
	"github.com/ainager-onboarding/internal/infrastructure/telemetry"
	"github.com/ainager-onboarding/internal/infrastructure/web"
	"github.com/ainager-onboarding/internal/logger"
	"github.com/ainager-onboarding/internal/pkg/clock"
	transporthttp "github.com/ainager-onboarding/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel, "onboarding-api"))

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()
	clk := clock.System{}

	store, closeStore, err := newStateStore(ctx, cfg, clk)
	if err != nil {
		return fmt.Errorf("state store: %w", err)
	}
	defer closeStore()

	if err := postgres.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	tenants := postgres.NewTenantRepo(pool, clk)

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	var mirror artifact.Mirror
	if cfg.S3BucketName != "" {
		s3Client, err := s3infra.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		mirror = s3infra.NewStore(s3Client, cfg.S3BucketName, "artifacts")
	}

	opts := []onboarding.Option{
		onboarding.WithMetrics(metrics),
		onboarding.WithAnalysisTTL(cfg.AnalysisTTL),
		onboarding.WithServiceDomain(cfg.ServiceDomain),
	}

	if cfg.SNSTopicARN != "" {
		snsClient, err := sns.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		opts = append(opts, onboarding.WithPublisher(sns.NewPublisher(snsClient, cfg.SNSTopicARN)))
	}

	// Onboarding tickets are optional; without keys tenant creation is unauthenticated.
	var tickets *jwtinfra.Provider
	if cfg.JWTPrivateKeyPath != "" && cfg.JWTPublicKeyPath != "" {
		if tickets, err = jwtinfra.LoadProvider(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.TicketTTL, clk); err != nil {
			return fmt.Errorf("ticket provider: %w", err)
		}
		opts = append(opts, onboarding.WithTicketSigner(tickets))
	}

	svc := onboarding.NewService(
		otp.NewService(store, clk, otp.WithTTL(cfg.OTPTTL)),
		smtp.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword, cfg.OTPTTL),
		website.NewAnalyzer(web.NewFetcher(cfg.FetchTimeout, cfg.FetchMaxBytes), metrics),
		artifact.NewService(pdf.NewRenderer(cfg.ArtifactDir, clk), mirror),
		tenants,
		store,
		clk,
		opts...,
	)

	deps := &transporthttp.Deps{Onboarding: svc, DB: tenants}
	if tickets != nil {
		deps.Tickets = tickets
	}
	router := transporthttp.NewRouter(cfg, deps)
	defer router.Close()

	// verify-otp includes the website fetch, so the write timeout tracks FETCH_TIMEOUT.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.FetchTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "state_backend", cfg.StateBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
