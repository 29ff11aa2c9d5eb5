package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peachlease/edu-verify/internal/application/verification"
	"github.com/peachlease/edu-verify/internal/config"
	"github.com/peachlease/edu-verify/internal/domain"
	"github.com/peachlease/edu-verify/internal/infrastructure/dynamo"
	jwtinfra "github.com/peachlease/edu-verify/internal/infrastructure/jwt"
	"github.com/peachlease/edu-verify/internal/infrastructure/memory"
	mongoinfra "github.com/peachlease/edu-verify/internal/infrastructure/mongo"
	s3infra "github.com/peachlease/edu-verify/internal/infrastructure/s3"
	"github.com/peachlease/edu-verify/internal/infrastructure/smtp"
	"github.com/peachlease/edu-verify/internal/infrastructure/sns"
	transporthttp "github.com/peachlease/edu-verify/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := newLogger(cfg.Mode)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("verification store: %v", err)
	}
	defer closeStore()

	notifier, err := buildNotifier(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("email delivery: %v", err)
	}

	// JWT provider (optional: validate still succeeds without a proof token).
	var signer verification.TokenSigner
	deps := &transporthttp.Deps{}
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		signer = p
		deps.ProofVerifier = p
	} else {
		logger.Warn("proof token signing disabled", "err", err)
	}

	svc := verification.NewService(verification.ServiceDeps{
		Store:           store,
		Notifier:        notifier,
		Channel:         cfg.EmailDelivery,
		Renderer:        loadRenderer(ctx, cfg, logger),
		Signer:          signer,
		Mode:            cfg.Mode,
		EmailSuffix:     cfg.EmailSuffix,
		DeliveryTimeout: cfg.DeliveryTimeout,
		Logger:          logger,
	})

	deps.Verification = svc
	router := transporthttp.NewRouter(ctx, cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.AppPort, "env", cfg.Mode.String(),
			"store", cfg.StoreBackend, "delivery", cfg.EmailDelivery)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "err", err)
	}
	svc.Wait()
	logger.Info("server stopped")
}

func newLogger(mode domain.DeploymentMode) *slog.Logger {
	if mode == domain.Development {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// buildStore connects the configured backend. The returned func releases it.
func buildStore(ctx context.Context, cfg *config.Config) (verification.Store, func(), error) {
	noop := func() {}
	switch cfg.StoreBackend {
	case config.StoreDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		// Creates the table if it doesn't exist.
		dynamo.Bootstrap(ctx, client, cfg.DynamoTable)
		return dynamo.NewVerificationRepo(client, cfg.DynamoTable), noop, nil

	case config.StoreMongo:
		client, err := mongoinfra.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				slog.Warn("mongo disconnect", "err", err)
			}
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongoinfra.EnsureIndexes(ctx, db); err != nil {
			closeFn()
			return nil, noop, err
		}
		return mongoinfra.NewVerificationRepo(db), closeFn, nil

	case config.StoreMemory:
		return memory.NewVerificationRepo(), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown store backend %q: %w", cfg.StoreBackend, domain.ErrConfiguration)
}

func buildNotifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (verification.Notifier, error) {
	switch cfg.EmailDelivery {
	case config.DeliverySMTP:
		return smtp.NewMailer(cfg), nil
	case config.DeliverySNS:
		p, err := sns.NewEmailPublisher(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.DeliveryLog:
		return verification.NewLogNotifier(logger, cfg.Mode), nil
	}
	return nil, fmt.Errorf("unknown delivery channel %q: %w", cfg.EmailDelivery, domain.ErrConfiguration)
}

// loadRenderer fetches a body template from S3 when one is configured and
// falls back to the built-in template on any failure.
func loadRenderer(ctx context.Context, cfg *config.Config, logger *slog.Logger) *verification.Renderer {
	if cfg.TemplateS3Bucket == "" || cfg.TemplateS3Key == "" {
		return verification.MustDefaultRenderer()
	}
	client, err := s3infra.NewClient(ctx, cfg)
	if err != nil {
		logger.Warn("email template: s3 client unavailable, using default", "err", err)
		return verification.MustDefaultRenderer()
	}
	body, err := s3infra.NewTemplateStore(client, cfg.TemplateS3Bucket).Load(ctx, cfg.TemplateS3Key)
	if err != nil {
		logger.Warn("email template: load failed, using default", "key", cfg.TemplateS3Key, "err", err)
		return verification.MustDefaultRenderer()
	}
	r, err := verification.NewRenderer(body)
	if err != nil {
		logger.Warn("email template: rejected, using default", "key", cfg.TemplateS3Key, "err", err)
		return verification.MustDefaultRenderer()
	}
	logger.Info("email template loaded", "bucket", cfg.TemplateS3Bucket, "key", cfg.TemplateS3Key)
	return r
}
