// Command worker processes background tasks, currently file analysis jobs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"roofchat_backend/internal/chat/tasks"
	"roofchat_backend/platform/config"
	"roofchat_backend/platform/logger"
)

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
	redisOpts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisOpts.Addr,
			Username: redisOpts.Username,
			Password: redisOpts.Password,
			DB:       redisOpts.DB,
		},
		asynq.Config{
			Concurrency: 5,
			Queues:      map[string]int{cfg.GetTaskQueueName(): 1},
		},
	)

	mux := asynq.NewServeMux()
	tasks.NewAnalysisHandler(cfg.GetFileAnalysisWebhookURL(), log).Register(mux)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("worker started", "queue", cfg.GetTaskQueueName())
		return srv.Run(mux)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("worker shutting down")
		srv.Shutdown()
		return nil
	})
	return g.Wait()
}
