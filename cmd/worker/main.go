package main

import (
	"context"
	"time"

	"custemoapi/config"
	"custemoapi/logging"
	"custemoapi/metrics"
	"custemoapi/services"
	"custemoapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logging.Setup(cfg.Env)

	if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Env, Release: "custemoworker@1.0.0"}); err != nil {
		log.Fatal().Err(err).Msg("sentry.Init")
	}
	defer sentry.Flush(2 * time.Second)

	ctx := context.Background()
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.BrokerAddress},
		asynq.Config{Concurrency: 4, Queues: map[string]int{
			tasks.QueueGenerate: 7,
		}},
	)

	awsService, err := services.NewAWSService(ctx, cfg.R2)
	if err != nil {
		log.Fatal().Err(err).Msg("[Queue] failed to initialize AWS provider: S3")
	}
	renderer, err := services.NewGoogleGenAIService(ctx, cfg.GoogleAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("[Queue] failed to initialize GenAI client")
	}
	reg := metrics.NewRegistry()

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeGenerateVideo, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleVideoGenerationTask(ctx, t, renderer, awsService, reg)
	})

	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}
