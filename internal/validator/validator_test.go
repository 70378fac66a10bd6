package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type answerBody struct {
	QuestionID     string `json:"question_id" binding:"required,uuid"`
	SelectedAnswer string `json:"selected_answer" binding:"required,notblank,max=10"`
}

type pageQuery struct {
	Page int `form:"page,default=1" binding:"min=1"`
}

func bindBody(t *testing.T, body string) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var dst answerBody
	return Bind(c, &dst)
}

func TestBind(t *testing.T) {
	Setup()

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"valid", `{"question_id":"6f1d7d3e-0b6c-4b8e-9a57-1c5b8d1f2a10","selected_answer":"A"}`, ""},
		{"blank answer", `{"question_id":"6f1d7d3e-0b6c-4b8e-9a57-1c5b8d1f2a10","selected_answer":"   "}`, "selected_answer"},
		{"missing answer", `{"question_id":"6f1d7d3e-0b6c-4b8e-9a57-1c5b8d1f2a10"}`, "selected_answer"},
		{"bad uuid", `{"question_id":"q1","selected_answer":"A"}`, "question_id"},
		{"syntax error", `{`, "detail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := bindBody(t, tt.body)
			if tt.wantField == "" {
				if fields != nil {
					t.Fatalf("Bind = %v, want nil", fields)
				}
				return
			}
			if _, ok := fields[tt.wantField]; !ok {
				t.Fatalf("Bind = %v, want error on %q", fields, tt.wantField)
			}
		})
	}
}

func TestBlankMessageIsTranslated(t *testing.T) {
	Setup()
	fields := bindBody(t, `{"question_id":"6f1d7d3e-0b6c-4b8e-9a57-1c5b8d1f2a10","selected_answer":" "}`)
	if got := fields["selected_answer"]; got != "selected_answer must not be blank" {
		t.Fatalf("message = %q", got)
	}
}

func TestBindQuery(t *testing.T) {
	Setup()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=0", nil)

	var q pageQuery
	fields := BindQuery(c, &q)
	if _, ok := fields["page"]; !ok {
		t.Fatalf("BindQuery = %v, want error on page", fields)
	}
}
