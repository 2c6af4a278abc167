package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSendAndParseRetriesIdenticalRequest(t *testing.T) {
	type seen struct{ method, query, token string }
	var (
		mu    sync.Mutex
		calls []seen
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, seen{r.Method, r.URL.RawQuery, r.Header.Get("X-Token")})
		first := len(calls) == 1
		mu.Unlock()
		if first {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"s":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(WithRetry(5 * time.Second))
	var out struct {
		S string `json:"s"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		URL:         srv.URL,
		QueryParams: map[string][]string{"symbol": {"AAPL"}},
		Headers:     map[string]string{"X-Token": "k"},
	}, &out)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if out.S != "ok" {
		t.Fatalf("decoded %q", out.S)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 2 {
		t.Fatalf("expected one retry, got %d calls", len(calls))
	}
	want := seen{http.MethodGet, "symbol=AAPL", "k"}
	for i, got := range calls {
		if got != want {
			t.Fatalf("attempt %d sent %+v, want %+v", i+1, got, want)
		}
	}
}

func TestSendAndParseClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewClient(WithRetry(5*time.Second)).SendAndParse(context.Background(), &RequestOptions{URL: srv.URL}, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized || se.Temporary() {
		t.Fatalf("expected permanent 401, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", n)
	}
}
