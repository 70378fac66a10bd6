package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/repository"
	"github.com/google/uuid"
)

type bankQuestion struct {
	correct string
	concept model.Concept
	content string
}

// memStore is an in-memory stand-in for the PostgreSQL repositories. One
// mutex gives it the same atomicity the SQL statements have: the finalize
// compare-and-swap, the status-guarded upserts and the unique result slot.
type memStore struct {
	mu sync.Mutex

	bank     map[uuid.UUID]*bankQuestion
	tests    map[uuid.UUID]*model.Test
	sessions map[uuid.UUID]*model.TestSession
	keys     map[uuid.UUID][]model.AnswerKeyEntry
	answers  map[uuid.UUID]map[uuid.UUID]model.SessionAnswer
	times    map[uuid.UUID]map[uuid.UUID]model.QuestionTime
	results  map[uuid.UUID]*model.TestResult

	timePolicy    repository.TimePolicy
	inserts       int
	failListTimes int
}

func newMemStore() *memStore {
	return &memStore{
		bank:       make(map[uuid.UUID]*bankQuestion),
		tests:      make(map[uuid.UUID]*model.Test),
		sessions:   make(map[uuid.UUID]*model.TestSession),
		keys:       make(map[uuid.UUID][]model.AnswerKeyEntry),
		answers:    make(map[uuid.UUID]map[uuid.UUID]model.SessionAnswer),
		times:      make(map[uuid.UUID]map[uuid.UUID]model.QuestionTime),
		results:    make(map[uuid.UUID]*model.TestResult),
		timePolicy: repository.TimePolicyOverwrite,
	}
}

// addTest registers a test whose questions have the given correct answers,
// all tagged with concept.
func (m *memStore) addTest(duration int, concept model.Concept, correct ...string) *model.Test {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &model.Test{ID: uuid.New(), DurationSeconds: duration, CreatedAt: time.Now()}
	for _, c := range correct {
		id := uuid.New()
		m.bank[id] = &bankQuestion{correct: c, concept: concept, content: "original"}
		t.QuestionIDs = append(t.QuestionIDs, id)
	}
	t.TotalQuestions = len(t.QuestionIDs)
	m.tests[t.ID] = t
	return t
}

func (m *memStore) editBank(questionID uuid.UUID, correct, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.bank[questionID]
	q.correct = correct
	q.content = content
}

// TestStore

type memTests struct{ *memStore }

func (m memTests) GetByID(_ context.Context, id uuid.UUID) (*model.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

// SessionStore

type memSessions struct{ *memStore }

func (m memSessions) Create(_ context.Context, userID uuid.UUID, test *model.Test, now time.Time) (*model.TestSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var key []model.AnswerKeyEntry
	for i, qid := range test.QuestionIDs {
		q, ok := m.bank[qid]
		if !ok {
			return nil, repository.ErrIncompleteKey
		}
		key = append(key, model.AnswerKeyEntry{
			QuestionID:      qid,
			Position:        i,
			CorrectAnswer:   q.correct,
			ConceptID:       q.concept.ID,
			ConceptName:     q.concept.Name,
			ConceptCategory: q.concept.Category,
		})
	}

	s := &model.TestSession{
		ID:        uuid.New(),
		UserID:    userID,
		TestID:    test.ID,
		StartTime: now,
		Status:    model.SessionStatusInProgress,
	}
	m.sessions[s.ID] = s
	m.keys[s.ID] = key
	cp := *s
	return &cp, nil
}

func (m memSessions) GetByID(_ context.Context, id uuid.UUID) (*model.TestSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m memSessions) Finalize(_ context.Context, id uuid.UUID, status model.SessionStatus, now time.Time) (*model.TestSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Status != model.SessionStatusInProgress {
		return nil, repository.ErrNotInProgress
	}
	total := 0
	for _, t := range m.times[id] {
		total += t.TimeSpent
	}
	end := now
	s.Status = status
	s.EndTime = &end
	s.TotalTimeSpent = total
	cp := *s
	return &cp, nil
}

func (m memSessions) AnswerKey(_ context.Context, id uuid.UUID) ([]model.AnswerKeyEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.AnswerKeyEntry(nil), m.keys[id]...), nil
}

func (m memSessions) HasQuestion(_ context.Context, sid, qid uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inKey(sid, qid), nil
}

func (m memSessions) ListExpired(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for id, s := range m.sessions {
		t := m.tests[s.TestID]
		if s.Status == model.SessionStatusInProgress && !s.StartTime.Add(t.Duration()).After(now) {
			ids = append(ids, id)
		}
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (m memSessions) ListUnscored(_ context.Context, limit int) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for id, s := range m.sessions {
		if _, scored := m.results[id]; s.Status.IsTerminal() && !scored {
			ids = append(ids, id)
		}
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (m *memStore) inKey(sid, qid uuid.UUID) bool {
	for _, k := range m.keys[sid] {
		if k.QuestionID == qid {
			return true
		}
	}
	return false
}

func (m *memStore) writable(sid, qid uuid.UUID) bool {
	s, ok := m.sessions[sid]
	return ok && s.Status == model.SessionStatusInProgress && m.inKey(sid, qid)
}

// AnswerStore

type memAnswers struct{ *memStore }

func (m memAnswers) Upsert(_ context.Context, a *model.SessionAnswer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.writable(a.SessionID, a.QuestionID) {
		return repository.ErrWriteRejected
	}
	rows := m.answers[a.SessionID]
	if rows == nil {
		rows = make(map[uuid.UUID]model.SessionAnswer)
		m.answers[a.SessionID] = rows
	}
	if old, ok := rows[a.QuestionID]; ok && old.AnsweredAt.After(a.AnsweredAt) {
		return repository.ErrWriteRejected
	}
	rows[a.QuestionID] = *a
	return nil
}

func (m memAnswers) ListBySession(_ context.Context, sid uuid.UUID) ([]model.SessionAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SessionAnswer
	for _, a := range m.answers[sid] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AnsweredAt.Before(out[j].AnsweredAt) })
	return out, nil
}

// TimeStore

type memTimes struct{ *memStore }

func (m memTimes) Upsert(_ context.Context, t *model.QuestionTime) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.writable(t.SessionID, t.QuestionID) {
		return repository.ErrWriteRejected
	}
	rows := m.times[t.SessionID]
	if rows == nil {
		rows = make(map[uuid.UUID]model.QuestionTime)
		m.times[t.SessionID] = rows
	}
	next := *t
	if old, ok := rows[t.QuestionID]; ok && m.timePolicy == repository.TimePolicyMonotonic && old.TimeSpent > next.TimeSpent {
		next.TimeSpent = old.TimeSpent
	}
	rows[t.QuestionID] = next
	return nil
}

func (m memTimes) ListBySession(_ context.Context, sid uuid.UUID) ([]model.QuestionTime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failListTimes > 0 {
		m.failListTimes--
		return nil, errors.New("connection reset")
	}
	var out []model.QuestionTime
	for _, t := range m.times[sid] {
		out = append(out, t)
	}
	return out, nil
}

// ResultStore

type memResults struct{ *memStore }

func (m memResults) Insert(_ context.Context, res *model.TestResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.results[res.SessionID]; exists {
		return repository.ErrDuplicate
	}
	m.inserts++
	res.ID = uuid.New()
	res.CreatedAt = time.Now()
	cp := *res
	m.results[res.SessionID] = &cp
	return nil
}

func (m memResults) GetBySession(_ context.Context, sid uuid.UUID) (*model.TestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.results[sid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (m memResults) ListByUser(_ context.Context, userID uuid.UUID, page, perPage int) ([]model.TestResult, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.TestResult
	for _, r := range m.results {
		if r.UserID == userID {
			all = append(all, *r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	start := (page - 1) * perPage
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

type memQueue struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (q *memQueue) Enqueue(_ context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, id)
	return nil
}
