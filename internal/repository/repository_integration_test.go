//go:build integration

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		fmt.Println("DATABASE_URL not set, skipping repository integration tests")
		os.Exit(0)
	}

	mig, err := migrate.New("file://../../migrations", dbURL)
	if err != nil {
		fmt.Printf("migrate init: %v\n", err)
		os.Exit(1)
	}
	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		fmt.Printf("migrate up: %v\n", err)
		os.Exit(1)
	}
	mig.Close()

	testPool, err = pgxpool.New(context.Background(), dbURL)
	if err != nil {
		fmt.Printf("db connect: %v\n", err)
		os.Exit(1)
	}
	code := m.Run()
	testPool.Close()
	os.Exit(code)
}

// seedSession creates a two-question test under a fresh concept and starts a session on it.
func seedSession(t *testing.T) (*model.TestSession, []uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	questions := NewQuestionRepository(testPool)

	concept := &model.Concept{Name: "it-" + uuid.NewString(), Category: "Integration"}
	if err := questions.UpsertConcept(ctx, concept); err != nil {
		t.Fatalf("UpsertConcept: %v", err)
	}

	test := &model.Test{Title: "integration", DurationSeconds: 600}
	for i, ans := range []string{"A", "B"} {
		q := &model.Question{
			Content:       fmt.Sprintf("q%d", i),
			Options:       json.RawMessage(`["A","B","C","D"]`),
			CorrectAnswer: ans,
			ConceptID:     concept.ID,
			Difficulty:    "easy",
		}
		if err := questions.Create(ctx, q); err != nil {
			t.Fatalf("Create question: %v", err)
		}
		test.QuestionIDs = append(test.QuestionIDs, q.ID)
	}
	if err := NewTestRepository(testPool).Create(ctx, test); err != nil {
		t.Fatalf("Create test: %v", err)
	}

	session, err := NewSessionRepository(testPool).Create(ctx, uuid.New(), test, time.Now())
	if err != nil {
		t.Fatalf("Create session: %v", err)
	}
	return session, test.QuestionIDs
}

func sumTimes(t *testing.T, sessionID uuid.UUID) int {
	t.Helper()
	var sum int
	err := testPool.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(time_spent), 0) FROM question_times WHERE session_id = $1`, sessionID,
	).Scan(&sum)
	if err != nil {
		t.Fatalf("sum times: %v", err)
	}
	return sum
}

func TestFinalizeConcurrentExactlyOnce(t *testing.T) {
	session, _ := seedSession(t)
	sessions := NewSessionRepository(testPool)

	const n = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []*model.TestSession
		losers  int
	)
	for i := 0; i < n; i++ {
		status := model.SessionStatusCompleted
		if i%2 == 1 {
			status = model.SessionStatusAutoSubmitted
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := sessions.Finalize(context.Background(), session.ID, status, time.Now())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, s)
			case errors.Is(err, ErrNotInProgress):
				losers++
			default:
				t.Errorf("Finalize: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(winners) != 1 || losers != n-1 {
		t.Fatalf("winners = %d, losers = %d, want 1 and %d", len(winners), losers, n-1)
	}
	stored, err := sessions.GetByID(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != winners[0].Status || stored.EndTime == nil {
		t.Fatalf("stored = (%s, %v), want (%s, end time set)", stored.Status, stored.EndTime, winners[0].Status)
	}
}

func TestFinalizeCountsTimeWriteCommittedWhileWaiting(t *testing.T) {
	session, qids := seedSession(t)
	ctx := context.Background()
	sessions := NewSessionRepository(testPool)
	times := NewTimeRepository(testPool, TimePolicyOverwrite)

	if err := times.Upsert(ctx, &model.QuestionTime{SessionID: session.ID, QuestionID: qids[0], TimeSpent: 40, UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// An accepted time write still in flight: same guarded statement, left uncommitted.
	tx, err := testPool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback(ctx)
	tag, err := tx.Exec(ctx,
		`INSERT INTO question_times (session_id, question_id, time_spent, updated_at)
		 SELECT s.id, $2, $3, NOW()
		 FROM test_sessions s
		 WHERE s.id = $1 AND s.status = $4
		 FOR SHARE OF s
		 ON CONFLICT (session_id, question_id) DO UPDATE SET time_spent = EXCLUDED.time_spent`,
		session.ID, qids[1], 25, model.SessionStatusInProgress,
	)
	if err != nil || tag.RowsAffected() != 1 {
		t.Fatalf("in-flight write = (%v, %v), want one row", tag, err)
	}

	type outcome struct {
		s   *model.TestSession
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		s, err := sessions.Finalize(ctx, session.ID, model.SessionStatusCompleted, time.Now())
		done <- outcome{s, err}
	}()

	waitForLockWait(t)
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	var got outcome
	select {
	case got = <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("Finalize never returned")
	}
	if got.err != nil {
		t.Fatalf("Finalize: %v", got.err)
	}
	if got.s.TotalTimeSpent != 65 {
		t.Fatalf("total_time_spent = %d, want 65", got.s.TotalTimeSpent)
	}
	if sum := sumTimes(t, session.ID); sum != got.s.TotalTimeSpent {
		t.Fatalf("total_time_spent = %d, stored rows sum to %d", got.s.TotalTimeSpent, sum)
	}
}

// waitForLockWait blocks until some backend is waiting on a row lock.
func waitForLockWait(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var waiting int
		err := testPool.QueryRow(context.Background(),
			`SELECT COUNT(*) FROM pg_stat_activity
			 WHERE wait_event_type = 'Lock' AND query ILIKE '%UPDATE test_sessions%'`,
		).Scan(&waiting)
		if err != nil {
			t.Fatalf("pg_stat_activity: %v", err)
		}
		if waiting > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("finalize never blocked on the session row")
}

func TestUpsertRacingFinalizeIsPersistedOrRejected(t *testing.T) {
	session, qids := seedSession(t)
	ctx := context.Background()
	sessions := NewSessionRepository(testPool)
	times := NewTimeRepository(testPool, TimePolicyOverwrite)
	answers := NewAnswerRepository(testPool)

	const writers = 24
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted = map[int]bool{}
	)
	start := make(chan struct{})
	for i := 1; i <= writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := times.Upsert(ctx, &model.QuestionTime{SessionID: session.ID, QuestionID: qids[0], TimeSpent: i, UpdatedAt: time.Now()})
			aerr := answers.Upsert(ctx, &model.SessionAnswer{SessionID: session.ID, QuestionID: qids[1], SelectedAnswer: "C", AnsweredAt: time.Now()})
			for _, e := range []error{err, aerr} {
				if e != nil && !errors.Is(e, ErrWriteRejected) {
					t.Errorf("Upsert: %v", e)
				}
			}
			if err == nil {
				mu.Lock()
				accepted[i] = true
				mu.Unlock()
			}
		}()
	}

	var final *model.TestSession
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		time.Sleep(time.Millisecond)
		s, err := sessions.Finalize(ctx, session.ID, model.SessionStatusAutoSubmitted, time.Now())
		if err != nil {
			t.Errorf("Finalize: %v", err)
			return
		}
		final = s
	}()
	close(start)
	wg.Wait()
	if final == nil {
		t.FailNow()
	}

	var stored int
	err := testPool.QueryRow(ctx,
		`SELECT time_spent FROM question_times WHERE session_id = $1 AND question_id = $2`,
		session.ID, qids[0],
	).Scan(&stored)
	if len(accepted) == 0 {
		if err == nil {
			t.Fatalf("a rejected write was stored: %d", stored)
		}
	} else {
		if err != nil {
			t.Fatalf("read stored time: %v", err)
		}
		if !accepted[stored] {
			t.Fatalf("stored time %d came from a rejected write", stored)
		}
	}
	if sum := sumTimes(t, session.ID); sum != final.TotalTimeSpent {
		t.Fatalf("total_time_spent = %d, stored rows sum to %d", final.TotalTimeSpent, sum)
	}

	// Nothing lands after the finalize.
	if err := times.Upsert(ctx, &model.QuestionTime{SessionID: session.ID, QuestionID: qids[0], TimeSpent: 999, UpdatedAt: time.Now()}); !errors.Is(err, ErrWriteRejected) {
		t.Fatalf("post-finalize Upsert = %v, want ErrWriteRejected", err)
	}
}

func TestResultInsertExactlyOnce(t *testing.T) {
	session, _ := seedSession(t)
	ctx := context.Background()
	if _, err := NewSessionRepository(testPool).Finalize(ctx, session.ID, model.SessionStatusCompleted, time.Now()); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	results := NewResultRepository(testPool)

	const n = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted []uuid.UUID
		dupes    int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := &model.TestResult{
				SessionID:          session.ID,
				UserID:             session.UserID,
				TestID:             session.TestID,
				Score:              float64(i),
				TotalQuestions:     2,
				Percentage:         50,
				ConceptPerformance: []model.ConceptPerformance{},
			}
			err := results.Insert(ctx, res)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				inserted = append(inserted, res.ID)
			case errors.Is(err, ErrDuplicate):
				dupes++
			default:
				t.Errorf("Insert: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(inserted) != 1 || dupes != n-1 {
		t.Fatalf("inserted = %d, duplicates = %d, want 1 and %d", len(inserted), dupes, n-1)
	}
	stored, err := results.GetBySession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetBySession: %v", err)
	}
	if stored.ID != inserted[0] {
		t.Fatalf("stored result %s, winner %s", stored.ID, inserted[0])
	}
}
