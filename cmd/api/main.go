package main

import (
	"context"
	"time"

	"custemoapi/config"
	"custemoapi/controllers"
	"custemoapi/dbhelper"
	"custemoapi/logging"
	"custemoapi/metrics"
	"custemoapi/services"
	"custemoapi/store"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logging.Setup(cfg.Env)

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Env,
		Release:          "custemoapi@1.0.0",
		Debug:            false,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("sentry.Init")
	}
	defer sentry.Recover()
	defer sentry.Flush(2 * time.Second)

	ctx := context.Background()

	var records store.RecordStore
	if cfg.RecordStore == config.StoreSQL {
		records = store.NewSQLStore(dbhelper.SetupDB(cfg.DB))
	} else {
		records, err = store.Open(cfg)
		if err != nil {
			log.Fatal().Err(err).Str("store", string(cfg.RecordStore)).Msg("failed to open record store")
		}
	}
	defer records.Close()
	if err := store.Seed(ctx, records); err != nil {
		log.Fatal().Err(err).Msg("failed to seed default users")
	}

	deps := controllers.Dependencies{Store: records, Metrics: metrics.NewRegistry()}

	if cfg.GoogleAPIKey != "" {
		genai, err := services.NewGoogleGenAIService(ctx, cfg.GoogleAPIKey)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize GenAI client")
		}
		deps.Chat = genai
		deps.Previews = genai
		deps.Images = genai
	} else {
		log.Warn().Msg("GOOGLE_API_KEY is not set, generation routes are disabled")
	}

	if cfg.R2.BucketName != "" {
		awsService, err := services.NewAWSService(ctx, cfg.R2)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize R2 client")
		}
		urlCache, err := services.NewURLCacheService(awsService)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize URL cache service")
		}
		redis := asynq.RedisClientOpt{Addr: cfg.BrokerAddress}
		asynqClient := asynq.NewClient(redis)
		defer asynqClient.Close()
		asynqInspector := asynq.NewInspector(redis)
		defer asynqInspector.Close()

		deps.Storage = awsService
		deps.URLs = urlCache
		deps.Queue = asynqClient
		deps.Inspector = asynqInspector
	} else {
		log.Warn().Msg("R2_BUCKET_NAME is not set, campaign video is disabled")
	}

	e := controllers.SetupServer(cfg, deps)
	e.Debug = cfg.IsLocal()
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	e.Use(middleware.Recover())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))

	log.Info().Str("address", cfg.Address).Str("store", string(cfg.RecordStore)).Msg("starting custemo api")
	if err := e.Start(cfg.Address); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
