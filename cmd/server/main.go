package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/cache"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/config"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/database"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/feedback"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/handler"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/logger"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/middleware"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/repository"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/router"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/scoring"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/service"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/validator"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("time_policy", cfg.TimePolicy).
		Str("scoring_policy", cfg.ScoringPolicy).
		Msg("Starting Gate Compass session engine")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	// ─── Resolve Policies ──────────────────────────────────────────────
	timePolicy, err := repository.ParseTimePolicy(cfg.TimePolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid TIME_POLICY")
	}
	scoringPolicy, err := scoring.PolicyFromName(cfg.ScoringPolicy, cfg.NegativeMark)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid SCORING_POLICY")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	testRepo := repository.NewTestRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	timeRepo := repository.NewTimeRepository(pool, timePolicy)
	resultRepo := repository.NewResultRepository(pool)

	// ─── Initialize Caches & Queues ────────────────────────────────────
	stateCache := cache.NewSessionStates(rdb, cfg.StateCacheTTL)
	resultMirror := cache.NewResults(rdb, cfg.ResultCacheTTL)
	scoringQueue := cache.NewScoringQueue(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	sessionService := service.NewSessionService(testRepo, sessionRepo, answerRepo, timeRepo, stateCache, log)
	resultService := service.NewResultService(
		sessionRepo, answerRepo, timeRepo, resultRepo, resultMirror,
		scoring.NewEngine(scoringPolicy),
		feedback.NewGenerator(feedback.ThresholdsFromConfig(cfg), feedback.NewStaticContent()),
		log,
	)
	submissionService := service.NewSubmissionService(sessionRepo, resultService, scoringQueue, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	probes := map[string]handler.Probe{
		"postgres": pool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}
	handlers := &router.Handlers{
		Session: handler.NewSessionHandler(sessionService, submissionService, log),
		Result:  handler.NewResultHandler(resultService, log),
		WS:      handler.NewWSHandler(sessionService, submissionService, log, cfg.AllowedOrigins),
		System:  handler.NewSystemHandler(probes, scoringQueue.Len, log),
	}

	counter := middleware.NewRedisCounter(rdb)
	limiters := &router.Limiters{
		API:    middleware.NewRateLimiter(counter, cfg.APIRateLimit, time.Minute, middleware.ClientIPKey, log),
		Submit: middleware.NewRateLimiter(counter, cfg.SubmitRateLimit, time.Minute, middleware.SubmitKey, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	scoringWorker := worker.NewScoringWorker(resultService, scoringQueue, cfg.ScoringWorkers, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		scoringWorker.Start(workerCtx)
	}()

	if cfg.ExpirySweepInterval > 0 {
		expiryWorker := worker.NewExpiryWorker(sessionRepo, submissionService, scoringQueue, cfg.ExpirySweepInterval, log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			expiryWorker.Start(workerCtx)
		}()
	} else {
		log.Info().Msg("Expiry sweeper disabled; auto-submit is client driven")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, limiters, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for in-flight items.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
