package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/quizchain/chain"
)

type fakeStarter struct {
	reg     *chain.Registry
	started []string
	ids     []chain.Identity
}

func newFakeStarter() *fakeStarter {
	return &fakeStarter{reg: chain.NewRegistry(0)}
}

func (f *fakeStarter) Start(_ context.Context, url string, id chain.Identity) (string, time.Time) {
	f.started = append(f.started, url)
	f.ids = append(f.ids, id)
	deadline := time.Now().Add(3 * time.Minute)
	return f.reg.Create(url, deadline), deadline
}

func (f *fakeStarter) Registry() *chain.Registry { return f.reg }

func newTestServer(starter chainStarter) http.Handler {
	s := &server{
		starter: starter,
		secret:  "hunter2",
		base:    context.Background(),
		logger:  slog.Default(),
	}
	return newRouter(s)
}

func postQuiz(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleQuiz_Accepted(t *testing.T) {
	starter := newFakeStarter()
	h := newTestServer(starter)

	rec := postQuiz(t, h, `{"email":"a@b.c","secret":"hunter2","url":"https://q.test/1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status    string `json:"status"`
		RunID     string `json:"run_id"`
		StartedAt string `json:"started_at"`
		Deadline  string `json:"deadline"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "accepted" {
		t.Errorf("status field: got %q", resp.Status)
	}
	if resp.RunID == "" {
		t.Error("expected a run id")
	}
	if _, err := time.Parse(time.RFC3339, resp.Deadline); err != nil {
		t.Errorf("deadline: %v", err)
	}
	if len(starter.started) != 1 || starter.started[0] != "https://q.test/1" {
		t.Errorf("started: %v", starter.started)
	}
	if starter.ids[0].Email != "a@b.c" {
		t.Errorf("identity email: got %q", starter.ids[0].Email)
	}
}

func TestHandleQuiz_BadJSON(t *testing.T) {
	h := newTestServer(newFakeStarter())
	if rec := postQuiz(t, h, `{not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d", rec.Code)
	}
}

func TestHandleQuiz_MissingFields(t *testing.T) {
	starter := newFakeStarter()
	h := newTestServer(starter)
	for _, body := range []string{
		`{"secret":"hunter2","url":"https://q.test/1"}`,
		`{"email":"a@b.c","url":"https://q.test/1"}`,
		`{"email":"a@b.c","secret":"hunter2"}`,
	} {
		if rec := postQuiz(t, h, body); rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: got %d, want 400", body, rec.Code)
		}
	}
	if len(starter.started) != 0 {
		t.Errorf("no chain must start on invalid input, got %v", starter.started)
	}
}

func TestHandleQuiz_WrongSecret(t *testing.T) {
	starter := newFakeStarter()
	h := newTestServer(starter)

	rec := postQuiz(t, h, `{"email":"a@b.c","secret":"wrong","url":"https://q.test/1"}`)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
	if len(starter.started) != 0 {
		t.Error("no chain must start on wrong secret")
	}
}

func TestHandleHealth(t *testing.T) {
	h := newTestServer(newFakeStarter())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d", rec.Code)
	}
}

func TestHandleRuns(t *testing.T) {
	starter := newFakeStarter()
	h := newTestServer(starter)
	postQuiz(t, h, `{"email":"a@b.c","secret":"hunter2","url":"https://q.test/1"}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var resp struct {
		Runs []chain.RunStatus `json:"runs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Runs) != 1 {
		t.Errorf("runs: got %d", len(resp.Runs))
	}
}

func TestHandleRun_NotFound(t *testing.T) {
	h := newTestServer(newFakeStarter())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d", rec.Code)
	}
}
