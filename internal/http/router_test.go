package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"semantic-ats/internal/contextutil"
	"semantic-ats/internal/search"
	"semantic-ats/internal/vectorstore/mocks"
)

type stubSearcher struct {
	results []search.Result
}

func (s *stubSearcher) Search(ctx context.Context, query string, mode search.Mode) ([]search.Result, error) {
	return s.results, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCandidateStore(ctrl)
	store.EXPECT().EnsureCollection(gomock.Any()).Return(nil).AnyTimes()

	return NewRouter(&Deps{
		Searcher: &stubSearcher{results: []search.Result{{Filename: "alice.txt", Score: 0.9}}},
		Store:    store,
	})
}

func TestRouter_SearchRoute(t *testing.T) {
	router := newTestRouter(t)

	body := bytes.NewBufferString(`{"query": "engineer", "mode": "resume"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/search", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/search status = %d, want 200", rec.Code)
	}

	var resp struct {
		Results []search.Result `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Filename != "alice.txt" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}

func TestRouter_HealthRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/health status = %d, want 200", rec.Code)
	}
}

func TestRouter_MethodMismatch(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/search status = %d, want 405", rec.Code)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /api/unknown status = %d, want 404", rec.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("preflight response should carry Access-Control-Allow-Origin")
	}
}

func TestLoggerMiddleware_InjectsLogger(t *testing.T) {
	var sawLogger bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contextutil.LoggerFromContext(r.Context()) != nil {
			sawLogger = true
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	LoggerMiddleware(inner).ServeHTTP(rec, req)

	if !sawLogger {
		t.Error("handler should receive a logger from the request context")
	}
}
