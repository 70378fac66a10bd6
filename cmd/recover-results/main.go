package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/cache"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/config"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/database"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/feedback"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/logger"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/repository"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/scoring"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/service"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/worker"
)

func main() {
	var (
		limit   int
		enqueue bool
		expire  bool
	)
	flag.IntVar(&limit, "limit", 1000, "Maximum sessions to recover")
	flag.BoolVar(&enqueue, "enqueue", false, "Push to the scoring queue instead of computing inline")
	flag.BoolVar(&expire, "expire", false, "Also auto-submit sessions whose time ran out")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	timePolicy, err := repository.ParseTimePolicy(cfg.TimePolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid TIME_POLICY")
	}
	scoringPolicy, err := scoring.PolicyFromName(cfg.ScoringPolicy, cfg.NegativeMark)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid SCORING_POLICY")
	}

	sessionRepo := repository.NewSessionRepository(pool)
	resultService := service.NewResultService(
		sessionRepo,
		repository.NewAnswerRepository(pool),
		repository.NewTimeRepository(pool, timePolicy),
		repository.NewResultRepository(pool),
		nil,
		scoring.NewEngine(scoringPolicy),
		feedback.NewGenerator(feedback.ThresholdsFromConfig(cfg), feedback.NewStaticContent()),
		log,
	)

	fmt.Println("=== Recover Unscored Sessions ===")

	// ─── Optional Redis (queue mode and expiry sweep) ──────────────────
	if enqueue || expire {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		queue := cache.NewScoringQueue(rdb)

		if expire {
			submissions := service.NewSubmissionService(sessionRepo, resultService, queue, log)
			worker.NewExpiryWorker(sessionRepo, submissions, queue, time.Minute, log).Sweep(ctx)
			fmt.Println("Expiry sweep finished.")
		}

		if enqueue {
			ids, err := sessionRepo.ListUnscored(ctx, limit)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to list unscored sessions")
			}
			queued, err := queue.EnqueueMany(ctx, ids)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to enqueue sessions")
			}
			fmt.Printf("\nQueued %d of %d sessions for the scoring worker (the rest are already pending).\n", queued, len(ids))
			return
		}
	}

	// ─── Inline Recovery ───────────────────────────────────────────────
	ids, err := sessionRepo.ListUnscored(ctx, limit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list unscored sessions")
	}
	fmt.Printf("Found %d finalized sessions without a result.\n", len(ids))

	recovered := 0
	for _, id := range ids {
		res, err := resultService.GetOrCompute(ctx, id)
		if err != nil {
			if errors.Is(err, service.ErrResultNotReady) {
				continue
			}
			fmt.Printf("Error scoring session %s: %v\n", id, err)
			continue
		}
		recovered++
		fmt.Printf("Session %s: score %.2f (%.2f%%)\n", id, res.Score, res.Percentage)
	}

	fmt.Printf("\nRecovery completed! %d/%d sessions scored.\n", recovered, len(ids))
}
