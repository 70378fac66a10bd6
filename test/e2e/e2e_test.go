//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/config"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

const (
	defaultBaseURL = "http://localhost:8080/api/v1"
	e2eConcept     = "E2E Graph Theory"
	e2eCategory    = "E2E Algorithms"
)

var (
	baseURL     string
	userToken   string
	otherToken  string
	testID      uuid.UUID
	questionIDs []uuid.UUID
	sessionID   string
)

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cfg := config.Load()

	// 1. Seed question bank
	if err := seedTest(cfg.DatabaseURL); err != nil {
		fmt.Printf("Setup failed: %v\n", err)
		os.Exit(1)
	}

	// 2. Tokens signed with the server's secret
	auth := service.NewAuthService(cfg)
	var err error
	if userToken, err = auth.IssueToken(uuid.New(), "E2E Candidate"); err != nil {
		fmt.Printf("Issue token failed: %v\n", err)
		os.Exit(1)
	}
	if otherToken, err = auth.IssueToken(uuid.New(), "E2E Intruder"); err != nil {
		fmt.Printf("Issue token failed: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func seedTest(dbURL string) error {
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer conn.Close(ctx)

	var conceptID uuid.UUID
	err = conn.QueryRow(ctx,
		`INSERT INTO concepts (name, category) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET category = EXCLUDED.category
		 RETURNING id`, e2eConcept, e2eCategory).Scan(&conceptID)
	if err != nil {
		return fmt.Errorf("insert concept: %w", err)
	}

	questionIDs = nil
	for i, ans := range []string{"A", "B", "C"} {
		var id uuid.UUID
		err := conn.QueryRow(ctx,
			`INSERT INTO questions (content, options, correct_answer, explanation, concept_id)
			 VALUES ($1, '["A","B","C","D"]'::jsonb, $2, 'e2e', $3)
			 RETURNING id`, fmt.Sprintf("E2E question %d", i+1), ans, conceptID).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		questionIDs = append(questionIDs, id)
	}

	err = conn.QueryRow(ctx,
		`INSERT INTO tests (title, question_ids, total_questions, duration)
		 VALUES ('E2E Test', $1, $2, 3600) RETURNING id`,
		questionIDs, len(questionIDs)).Scan(&testID)
	if err != nil {
		return fmt.Errorf("insert test: %w", err)
	}
	return nil
}

func TestE2EFlow(t *testing.T) {
	// Step 1: Start a session
	t.Run("CreateSession", func(t *testing.T) {
		resp, err := post(fmt.Sprintf("/tests/%s/sessions", testID), nil, userToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data struct {
				Session model.TestSession `json:"session"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		if body.Data.Session.Status != model.SessionStatusInProgress {
			t.Fatalf("status = %q, want in_progress", body.Data.Session.Status)
		}
		sessionID = body.Data.Session.ID.String()
	})

	if sessionID == "" {
		t.Fatal("no session created")
	}

	// Step 2: Answer two questions, change one answer
	t.Run("RecordAnswers", func(t *testing.T) {
		answers := []model.RecordAnswerRequest{
			{QuestionID: questionIDs[0].String(), SelectedAnswer: "D"},
			{QuestionID: questionIDs[0].String(), SelectedAnswer: "A"},
			{QuestionID: questionIDs[1].String(), SelectedAnswer: "C", MarkedForReview: true},
		}
		for _, a := range answers {
			resp, err := post("/sessions/"+sessionID+"/answer", a, userToken)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
			}
			resp.Body.Close()
		}
	})

	t.Run("RecordTime", func(t *testing.T) {
		for i, secs := range []int{40, 90, 0} {
			s := secs
			resp, err := put("/sessions/"+sessionID+"/time",
				model.RecordTimeRequest{QuestionID: questionIDs[i].String(), CumulativeSeconds: &s}, userToken)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
			}
			resp.Body.Close()
		}
	})

	t.Run("ForeignUserCannotSeeSession", func(t *testing.T) {
		resp, err := get("/sessions/"+sessionID+"/state", otherToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status %d, want 404: %s", resp.StatusCode, readBody(resp))
		}
	})

	t.Run("ResultNotReadyBeforeSubmit", func(t *testing.T) {
		resp, err := get("/results/"+sessionID, userToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status %d, want 404: %s", resp.StatusCode, readBody(resp))
		}
	})

	// Step 3: Submit, then a racing auto-submit loses
	var submitted model.TestResult
	t.Run("Submit", func(t *testing.T) {
		resp, err := post("/sessions/"+sessionID+"/submit", nil, userToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data model.SubmitSummary `json:"data"`
		}
		decodeJSON(t, resp, &body)
		if body.Data.Session.Status != model.SessionStatusCompleted {
			t.Fatalf("status = %q, want completed", body.Data.Session.Status)
		}
		if body.Data.Result != nil {
			submitted = *body.Data.Result
		}
	})

	t.Run("AutoSubmitAfterSubmitConflicts", func(t *testing.T) {
		resp, err := post("/sessions/"+sessionID+"/auto-submit", nil, userToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("status %d, want 409: %s", resp.StatusCode, readBody(resp))
		}
	})

	t.Run("AnswerAfterSubmitConflicts", func(t *testing.T) {
		resp, err := post("/sessions/"+sessionID+"/answer",
			model.RecordAnswerRequest{QuestionID: questionIDs[2].String(), SelectedAnswer: "C"}, userToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("status %d, want 409: %s", resp.StatusCode, readBody(resp))
		}
	})

	// Step 4: Result is stable across reads
	t.Run("GetResult", func(t *testing.T) {
		resp, err := get("/results/"+sessionID, userToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data model.TestResult `json:"data"`
		}
		decodeJSON(t, resp, &body)
		res := body.Data
		if res.TotalQuestions != 3 || res.CorrectAnswers != 1 || res.IncorrectAnswers != 1 || res.Unanswered != 1 {
			t.Fatalf("counts = %d/%d/%d/%d, want 3/1/1/1",
				res.TotalQuestions, res.CorrectAnswers, res.IncorrectAnswers, res.Unanswered)
		}
		if submitted.ID != uuid.Nil && submitted.ID != res.ID {
			t.Fatalf("result id changed between submit and read: %s vs %s", submitted.ID, res.ID)
		}
		if len(res.ConceptPerformance) != 1 || res.ConceptPerformance[0].ConceptName != e2eConcept {
			t.Fatalf("concept performance = %+v", res.ConceptPerformance)
		}
	})

	t.Run("GetAnalysis", func(t *testing.T) {
		resp, err := get("/results/"+sessionID+"/analysis", userToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data model.ResultAnalysis `json:"data"`
		}
		decodeJSON(t, resp, &body)
		if len(body.Data.Questions) != 3 {
			t.Fatalf("breakdown has %d rows, want 3", len(body.Data.Questions))
		}
		if !body.Data.Questions[1].MarkedForReview {
			t.Error("second question should carry the review mark")
		}
	})

	t.Run("ResultSurvivesQuestionBankEdit", func(t *testing.T) {
		ctx := context.Background()
		conn, err := pgx.Connect(ctx, config.Load().DatabaseURL)
		if err != nil {
			t.Fatalf("db connect: %v", err)
		}
		defer conn.Close(ctx)
		if _, err := conn.Exec(ctx,
			`UPDATE questions SET correct_answer = 'D', content = 'edited' WHERE id = $1`, questionIDs[0]); err != nil {
			t.Fatalf("edit question: %v", err)
		}

		resp, err := get("/results/"+sessionID, userToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		var body struct {
			Data model.TestResult `json:"data"`
		}
		decodeJSON(t, resp, &body)
		if body.Data.CorrectAnswers != 1 {
			t.Fatalf("correct answers = %d after bank edit, want 1", body.Data.CorrectAnswers)
		}
	})

	t.Run("History", func(t *testing.T) {
		resp, err := get("/results/users/me/history?page=1&per_page=5", userToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data struct {
				Results []model.TestResult `json:"results"`
			} `json:"data"`
			Pagination struct {
				TotalItems int64 `json:"total_items"`
			} `json:"pagination"`
		}
		decodeJSON(t, resp, &body)
		if body.Pagination.TotalItems != 1 || len(body.Data.Results) != 1 {
			t.Fatalf("history = %d items (total %d), want 1", len(body.Data.Results), body.Pagination.TotalItems)
		}
	})
}

// Helpers

func send(method, path string, body interface{}, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func post(path string, body interface{}, token string) (*http.Response, error) {
	return send(http.MethodPost, path, body, token)
}

func put(path string, body interface{}, token string) (*http.Response, error) {
	return send(http.MethodPut, path, body, token)
}

func get(path string, token string) (*http.Response, error) {
	return send(http.MethodGet, path, nil, token)
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("json decode: %v", err)
	}
}
