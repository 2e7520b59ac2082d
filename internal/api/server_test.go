package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vaughn-johnson/talkspace-public-api/internal/engagement"
	"github.com/vaughn-johnson/talkspace-public-api/internal/report"
	"github.com/vaughn-johnson/talkspace-public-api/internal/service"
)

type fakeDaily struct {
	res   *service.Result
	err   error
	calls int
}

func (f *fakeDaily) Daily(ctx context.Context) (*service.Result, error) {
	f.calls++
	return f.res, f.err
}

func sampleResult(cached bool) *service.Result {
	at := time.Date(2020, 11, 3, 9, 0, 0, 0, time.UTC)
	return &service.Result{
		Date:   "2026-10-19",
		Cached: cached,
		Rows: []engagement.Row{{
			Index:             2,
			SenderID:          "vaughn",
			DisplayName:       "Vaughn",
			CreatedAt:         at,
			MessageLength:     26,
			QuestionCount:     0,
			WordCount:         6,
			Readability:       97.02,
			PrevSenderID:      "dallas",
			PrevDisplayName:   "Dallas",
			PrevCreatedAt:     at.Add(-24 * time.Hour),
			PrevMessageLength: 18,
			PrevQuestionCount: 1,
			PrevWordCount:     4,
			PrevReadability:   103.04,
			ResponseTime:      1,
			WordsPerDay:       6,
		}},
	}
}

func newTestServer(daily DailyService) *Server {
	return NewServer(8080, daily, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&fakeDaily{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestEngagementEndpoint_JSON(t *testing.T) {
	for _, path := range []string{"/", "/api/v1/engagement", "/?format=json"} {
		t.Run(path, func(t *testing.T) {
			srv := newTestServer(&fakeDaily{res: sampleResult(false)})

			req := httptest.NewRequest("GET", path, nil)
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %q", ct)
			}
			if got := w.Header().Get("X-Cache"); got != "MISS" {
				t.Errorf("X-Cache = %q, want MISS", got)
			}

			rows, err := report.DecodeJSON(w.Body.Bytes())
			if err != nil {
				t.Fatalf("body is not a JSON result: %v", err)
			}
			if len(rows) != 1 || rows[0].SenderID != "vaughn" || rows[0].PrevSenderID != "dallas" {
				t.Errorf("unexpected rows %+v", rows)
			}
		})
	}
}

func TestEngagementEndpoint_CSV(t *testing.T) {
	srv := newTestServer(&fakeDaily{res: sampleResult(true)})

	req := httptest.NewRequest("GET", "/api/v1/engagement?format=csv", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if got := w.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("X-Cache = %q, want HIT", got)
	}

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("body is not CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus 1 row, got %d records", len(records))
	}
	if records[0][0] != "index" || records[1][0] != "2" {
		t.Errorf("expected index column first, got %v / %v", records[0], records[1])
	}
}

func TestEngagementEndpoint_BadFormat(t *testing.T) {
	daily := &fakeDaily{res: sampleResult(false)}
	srv := newTestServer(daily)

	req := httptest.NewRequest("GET", "/?format=xml", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.Contains(body["error"], "xml") {
		t.Errorf("expected error to name the format, got %q", body["error"])
	}
	if daily.calls != 0 {
		t.Errorf("bad requests must not reach the service, got %d calls", daily.calls)
	}
}

func TestEngagementEndpoint_ServiceError(t *testing.T) {
	srv := newTestServer(&fakeDaily{err: errors.New("mongo unavailable")})

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "mongo") {
		t.Errorf("internal error details leaked: %s", w.Body.String())
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(&fakeDaily{res: sampleResult(false)})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	daily := &fakeDaily{res: sampleResult(false)}
	srv := newTestServer(daily)

	req := httptest.NewRequest("OPTIONS", "/api/v1/engagement", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code >= 300 {
		t.Fatalf("expected 2xx preflight, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty preflight body, got %q", w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "3600" {
		t.Errorf("Access-Control-Max-Age = %q, want 3600", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET" {
		t.Errorf("Access-Control-Allow-Methods = %q, want GET", got)
	}
	if daily.calls != 0 {
		t.Errorf("preflight must not run the service, got %d calls", daily.calls)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&fakeDaily{})

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "talkspace_daily_results_total") &&
		!strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("expected prometheus exposition output")
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := newTestServer(&fakeDaily{})

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestShutdownBeforeStart(t *testing.T) {
	srv := newTestServer(&fakeDaily{})
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
