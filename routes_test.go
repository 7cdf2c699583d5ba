package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewRouter(t *testing.T) {
	router := testRouter(&stubMarket{})

	if router == nil {
		t.Fatal("expected router to be created")
	}
}

func TestMetricsRoute(t *testing.T) {
	router := testRouter(&stubMarket{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", w.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	router := testRouter(&stubMarket{})

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestSummaryRequiresPost(t *testing.T) {
	router := testRouter(&stubMarket{})

	req := httptest.NewRequest(http.MethodGet, "/api/stock/AAPL/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestCorsMiddleware(t *testing.T) {
	allowedOrigins := "http://localhost:3000"
	mw := corsMiddleware(allowedOrigins)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("sets CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != allowedOrigins {
			t.Errorf("expected Access-Control-Allow-Origin %q, got %q", allowedOrigins, got)
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "GET") {
			t.Errorf("expected GET in Access-Control-Allow-Methods, got %q", got)
		}
	})

	t.Run("short-circuits preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200 for OPTIONS, got %d", w.Code)
		}
	})
}
