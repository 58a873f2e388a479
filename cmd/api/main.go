package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/campus-market-auth/internal/application/otp"
	"github.com/campus-market-auth/internal/config"
	"github.com/campus-market-auth/internal/infrastructure/dynamo"
	"github.com/campus-market-auth/internal/infrastructure/google"
	jwtinfra "github.com/campus-market-auth/internal/infrastructure/jwt"
	"github.com/campus-market-auth/internal/infrastructure/smtp"
	"github.com/campus-market-auth/internal/infrastructure/sns"
	transporthttp "github.com/campus-market-auth/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	if err := run(cfg); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	// Creates the tables if they don't exist.
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	sender, err := newCodeSender(ctx, cfg)
	if err != nil {
		return err
	}

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		SessionRepo: dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		CodeRepo:    dynamo.NewCodeRepo(dynamoClient, cfg.DynamoTables.OneTimeCodes),
		CodeSender:  sender,
		Tokens:      jwtProvider,
	}
	if cfg.GoogleClientID != "" {
		deps.Google = google.NewVerifier(cfg.GoogleClientID)
	} else {
		slog.Warn("GOOGLE_CLIENT_ID not set, google sign-in disabled")
	}

	router := transporthttp.NewRouter(cfg, deps)
	defer router.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "otp_delivery", cfg.OTP.Delivery)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
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

func newCodeSender(ctx context.Context, cfg *config.Config) (otp.CodeSender, error) {
	switch strings.ToLower(cfg.OTP.Delivery) {
	case "sns":
		if cfg.SNSTopicARN == "" {
			return nil, errors.New("OTP_DELIVERY=sns requires SNS_TOPIC_ARN")
		}
		client, err := sns.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return sns.NewPublisher(client, cfg.SNSTopicARN), nil
	case "smtp", "":
		return smtp.NewMailer(cfg), nil
	default:
		return nil, fmt.Errorf("unknown OTP_DELIVERY %q", cfg.OTP.Delivery)
	}
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
