package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/config"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/database"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/logger"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/repository"
)

type seedConcept struct {
	name     string
	category string
	// correct answers, one question each
	answers []string
}

func main() {
	var (
		title    string
		duration int
	)
	flag.StringVar(&title, "title", "GATE CS Mock Test", "Title of the seeded test")
	flag.IntVar(&duration, "duration", 3*60*60, "Test duration in seconds")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)
	testRepo := repository.NewTestRepository(pool)

	concepts := []seedConcept{
		{"Graphs", "Algorithms", []string{"A", "C", "B", "D"}},
		{"Dynamic Programming", "Algorithms", []string{"B", "B", "A"}},
		{"Process Scheduling", "Operating Systems", []string{"C", "A", "D"}},
		{"Normalization", "Databases", []string{"D", "A"}},
		{"TCP/IP", "Computer Networks", []string{"A", "B", "C"}},
		{"Finite Automata", "Theory of Computation", []string{"B", "D"}},
	}
	options, _ := json.Marshal([]string{"A", "B", "C", "D"})

	fmt.Printf("=== Seeding test %q ===\n", title)

	test := &model.Test{Title: title, DurationSeconds: duration}
	for _, sc := range concepts {
		concept := &model.Concept{Name: sc.name, Category: sc.category}
		if err := questionRepo.UpsertConcept(ctx, concept); err != nil {
			log.Fatal().Err(err).Str("concept", sc.name).Msg("Failed to upsert concept")
		}

		for i, ans := range sc.answers {
			q := &model.Question{
				Content:       fmt.Sprintf("%s question %d", sc.name, i+1),
				Options:       options,
				CorrectAnswer: ans,
				Explanation:   fmt.Sprintf("Worked solution for %s question %d.", sc.name, i+1),
				ConceptID:     concept.ID,
				Difficulty:    "medium",
			}
			if err := questionRepo.Create(ctx, q); err != nil {
				log.Fatal().Err(err).Str("concept", sc.name).Msg("Failed to create question")
			}
			test.QuestionIDs = append(test.QuestionIDs, q.ID)
		}
		fmt.Printf("Seeded %d questions for %s\n", len(sc.answers), sc.name)
	}

	if err := testRepo.Create(ctx, test); err != nil {
		log.Fatal().Err(err).Msg("Failed to create test")
	}

	fmt.Printf("\nSeed completed! Test %s has %d questions.\n", test.ID, len(test.QuestionIDs))
}
