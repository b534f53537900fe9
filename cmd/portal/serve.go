package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/brandpreneur/client-portal/internal/api"
	"github.com/brandpreneur/client-portal/internal/api/handler"
	"github.com/brandpreneur/client-portal/internal/api/metrics"
	"github.com/brandpreneur/client-portal/internal/core/access"
	"github.com/brandpreneur/client-portal/internal/core/portal"
	"github.com/brandpreneur/client-portal/internal/core/ports"
	"github.com/brandpreneur/client-portal/internal/core/service"
	"github.com/brandpreneur/client-portal/internal/infrastructure/config"
	"github.com/brandpreneur/client-portal/internal/infrastructure/db/memory"
	mongodb "github.com/brandpreneur/client-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/brandpreneur/client-portal/internal/infrastructure/db/redis"
	"github.com/brandpreneur/client-portal/internal/infrastructure/email"
	"github.com/brandpreneur/client-portal/internal/infrastructure/oauth"
	"github.com/brandpreneur/client-portal/internal/infrastructure/queue"
	"github.com/brandpreneur/client-portal/internal/infrastructure/storage/gcs"
	"github.com/brandpreneur/client-portal/internal/infrastructure/telemetry"
	"github.com/brandpreneur/client-portal/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

var inMemory bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portal HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&inMemory, "memory", false, "keep all state in process memory instead of MongoDB, Redis and GCS (development only)")
	rootCmd.AddCommand(serveCmd)
}

// backend is the set of stores the portal runs on.
type backend struct {
	identities ports.IdentityRepository
	clients    ports.ClientStore
	contacts   ports.ContactRepository
	tokens     ports.TokenStore
	prefs      ports.PreferenceStore
	guard      ports.SubmissionGuard
	blobs      ports.BlobStore
	health     map[string]handler.HealthCheck
	close      func(ctx context.Context)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: cfg.OTel.ServiceName,
		Version: version,
	})

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.OTel.Enabled,
		Endpoint:    cfg.OTel.Endpoint,
		ServiceName: cfg.OTel.ServiceName,
		Version:     version,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	var b *backend
	if inMemory {
		b = memoryBackend(log)
	} else if b, err = connectBackend(ctx, cfg, log); err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		b.close(sctx)
	}()

	// --- Services ---
	authSvc := service.NewAuthService(b.identities, cfg.JWTSecret, cfg.TokenTTL)
	clientSvc := service.NewClientService(b.clients, log)

	var exchanger ports.FederatedExchanger
	var flow handler.FederatedStarter
	if cfg.Google.Enabled() {
		exchanger = oauth.NewGoogleExchanger(oauth.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
		})
		flow = service.NewFederatedFlow(exchanger, b.tokens)
	} else {
		log.Info().Msg("federated sign-in disabled: GOOGLE_OAUTH_CLIENT_ID not set")
	}

	var notifier ports.ContactNotifier
	if cfg.Resend.APIKey != "" {
		notifier = email.NewResendNotifier(email.Config{
			APIKey: cfg.Resend.APIKey,
			From:   cfg.Resend.From,
			To:     cfg.Resend.To,
		}, log)
	} else {
		log.Warn().Msg("contact notifications disabled: RESEND_API_KEY not set")
	}
	contactSvc := service.NewContactService(b.contacts, b.blobs, b.guard, notifier, log)

	dispatcher := queue.NewDispatcher(cfg.Queue.Workers, contactSvc, log)
	dispatcher.OnDelivered(func(err error) {
		metrics.ContactNotificationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	})
	contactSvc.SetQueue(dispatcher)
	dispatcher.Start(ctx)

	// --- Sessions ---
	registry := portal.NewRegistry(portal.Deps{
		NewAuth: func(sessionID string) ports.AuthProvider {
			return service.NewAuthClient(sessionID, authSvc, b.tokens, exchanger, log)
		},
		Router:      access.NewRouter(access.AdminEmail(cfg.AdminEmail)),
		Provisioner: clientSvc,
		Clients:     clientSvc,
		Store:       b.clients,
		Blobs:       b.blobs,
		Prefs:       b.prefs,
		Contacts:    contactSvc,
	}, cfg.SessionIdleTTL, log)
	metrics.RegisterSessionGauge(registry.Len)

	reaperDone := make(chan struct{})
	go func() {
		defer close(reaperDone)
		registry.Run(ctx)
	}()

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Sessions:       registry,
		Flow:           flow,
		Contacts:       contactSvc,
		Health:         b.health,
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookie:   !cfg.IsDevelopment(),
		Log:            log,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serverErr:
		stop()
		return fmt.Errorf("http server: %w", err)
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	<-reaperDone
	dispatcher.Wait()
	return nil
}

func connectBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, err
	}
	sessions := redisdb.NewSessionStore(rdb)

	var blobs ports.BlobStore
	if cfg.GCS.Bucket != "" {
		bucket, err := gcs.New(ctx, gcs.Config{
			Bucket:          cfg.GCS.Bucket,
			CredentialsFile: cfg.GCS.CredentialsFile,
			PublicBaseURL:   cfg.GCS.PublicBaseURL,
		})
		if err != nil {
			_ = rdb.Close()
			_ = mongoClient.Disconnect(ctx)
			return nil, err
		}
		blobs = bucket
	} else {
		log.Warn().Msg("GCS_BUCKET not set, uploads are kept in memory")
		blobs = memory.NewBlobStore("memory://uploads")
	}

	return &backend{
		identities: mongodb.NewIdentityRepository(db),
		clients:    mongodb.NewClientRepository(db),
		contacts:   mongodb.NewContactRepository(db),
		tokens:     sessions,
		prefs:      sessions,
		guard:      redisdb.NewSubmissionGuard(rdb),
		blobs:      blobs,
		health: map[string]handler.HealthCheck{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		close: func(ctx context.Context) {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close failed")
			}
			if err := mongoClient.Disconnect(ctx); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		},
	}, nil
}

func memoryBackend(log zerolog.Logger) *backend {
	log.Warn().Msg("running on in-memory stores, nothing survives a restart")
	sessions := memory.NewSessionStore()
	return &backend{
		identities: memory.NewIdentityRepository(),
		clients:    memory.NewClientStore(),
		contacts:   memory.NewContactRepository(),
		tokens:     sessions,
		prefs:      sessions,
		guard:      sessions,
		blobs:      memory.NewBlobStore("memory://uploads"),
		close:      func(context.Context) {},
	}
}
