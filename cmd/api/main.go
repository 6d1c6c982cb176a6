// Command api runs the chat widget backend.
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

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"roofchat_backend/internal/archive"
	"roofchat_backend/internal/chat"
	chathandler "roofchat_backend/internal/chat/handler"
	"roofchat_backend/internal/chat/repository"
	"roofchat_backend/internal/chat/responder"
	"roofchat_backend/internal/chat/scoring"
	chatservice "roofchat_backend/internal/chat/service"
	"roofchat_backend/internal/chat/tasks"
	"roofchat_backend/internal/chat/uploads"
	"roofchat_backend/internal/events"
	"roofchat_backend/internal/http/router"
	"roofchat_backend/internal/notification"
	"roofchat_backend/platform/config"
	"roofchat_backend/platform/db"
	"roofchat_backend/platform/httpkit"
	"roofchat_backend/platform/logger"
)

const migrationsDir = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	// Conversation store.
	redisOpts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := withRetry(ctx, "redis", 5, 2*time.Second, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return redisClient.Ping(pingCtx).Err()
	}); err != nil {
		return err
	}
	store := repository.NewRedisStore(redisClient, cfg.GetConversationTTL(), log)

	bus := events.NewInMemoryBus(log)

	// Lead archive, optional.
	var checkers []router.HealthChecker
	checkers = append(checkers, namedChecker{"redis", store.Ping})
	if cfg.IsArchiveEnabled() {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect archive database: %w", err)
		}
		defer pool.Close()

		if err := db.RunMigrations(ctx, cfg, migrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		archive.NewArchiver(archive.NewRepository(pool), log).Register(bus)
		checkers = append(checkers, namedChecker{"postgres", db.NewPoolAdapter(pool).Ping})
		log.Info("lead archive enabled")
	}

	// Operator alerts, optional.
	if cfg.GetEmailEnabled() {
		sender, err := notification.NewSMTPSender(cfg)
		if err != nil {
			return fmt.Errorf("create smtp sender: %w", err)
		}
		notification.NewNotifier(sender, log).Register(bus)
		log.Info("handoff email alerts enabled")
	}

	// Responders. The rule engine answers directly when no webhook is
	// configured, and serves as the fallback otherwise.
	ruleBased := responder.NewRuleResponder()
	var primary responder.Responder = ruleBased
	if cfg.GetResponderWebhookURL() != "" {
		primary = responder.NewWebhookResponder(cfg.GetResponderWebhookURL(), cfg.GetResponderTimeout())
	}
	var fallback responder.Responder = ruleBased
	if cfg.GetResponderWebhookURL() != "" && cfg.GetLocalResponderURL() != "" {
		fallback = responder.NewLocalHTTPResponder(cfg.GetLocalResponderURL(), cfg.GetResponderTimeout())
	}

	// Uploads, optional.
	var uploadSvc *uploads.Service
	if cfg.IsMinIOEnabled() {
		objectStore, err := uploads.NewMinIOStore(cfg)
		if err != nil {
			return fmt.Errorf("create object store: %w", err)
		}
		if err := withRetry(ctx, "minio", 5, 2*time.Second, func() error {
			bucketCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return objectStore.EnsureBucket(bucketCtx)
		}); err != nil {
			return err
		}

		taskClient := tasks.NewClient(asynqRedis(redisOpts), cfg.GetTaskQueueName(), log)
		defer taskClient.Close()

		uploadSvc = uploads.NewService(objectStore, taskClient, bus, cfg.GetMinIOMaxFileSize(), log)
		log.Info("file uploads enabled", "bucket", cfg.GetMinioBucketChatUploads())
	}

	chatSvc := chatservice.NewService(store, primary, fallback, scoring.NewService(log), bus, log)
	chatHandler := chathandler.New(chatSvc, uploadSvc, ruleBased, log)
	chatModule := chat.NewModule(chatHandler, httpkit.NewUploadRateLimiter(log))

	engine := router.New(router.Options{
		Config:   cfg,
		Logger:   log,
		Checkers: checkers,
	}, chatModule)

	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.GetHTTPAddr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// withRetry calls fn up to attempts times, waiting delay between tries.
// Startup dependencies often race the service in container environments.
func withRetry(ctx context.Context, name string, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("connect %s after %d attempts: %w", name, attempts, err)
}

func asynqRedis(opts *redis.Options) asynq.RedisConnOpt {
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

// namedChecker adapts a ping func to the router's health interface.
type namedChecker struct {
	name string
	ping func(context.Context) error
}

func (n namedChecker) Name() string                   { return n.name }
func (n namedChecker) Ping(ctx context.Context) error { return n.ping(ctx) }
