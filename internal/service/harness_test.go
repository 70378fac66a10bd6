package service

import (
	"context"
	"testing"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/feedback"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/scoring"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type harness struct {
	store       *memStore
	queue       *memQueue
	sessions    *SessionService
	submissions *SubmissionService
	results     *ResultService
	clock       time.Time
	user        uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := newMemStore()
	queue := &memQueue{}
	log := zerolog.Nop()
	h := &harness{
		store: store,
		queue: queue,
		clock: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		user:  uuid.New(),
	}
	clock := func() time.Time { return h.clock }

	h.sessions = NewSessionService(memTests{store}, memSessions{store}, memAnswers{store}, memTimes{store}, nil, log).
		WithClock(clock)
	h.results = NewResultService(memSessions{store}, memAnswers{store}, memTimes{store}, memResults{store}, nil,
		scoring.NewEngine(scoring.OnePoint{}), feedback.NewGenerator(feedback.DefaultThresholds(), nil), log)
	h.submissions = NewSubmissionService(memSessions{store}, h.results, queue, log).WithClock(clock)
	return h
}

func (h *harness) advance(d time.Duration) {
	h.clock = h.clock.Add(d)
}

// start creates a test with the given correct answers under one concept and
// opens a session on it for the harness user.
func (h *harness) start(t *testing.T, concept string, correct ...string) (*model.Test, *model.TestSession) {
	t.Helper()
	test := h.store.addTest(3600, model.Concept{ID: uuid.New(), Name: concept, Category: "Algorithms"}, correct...)
	session, err := h.sessions.CreateSession(context.Background(), h.user, test.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return test, session
}
