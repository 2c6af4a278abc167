package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	applogger "ShortScan/pkg/logger"
)

func TestRecoverAndLogging(t *testing.T) {
	var buf bytes.Buffer
	l := applogger.NewWriter(&buf)

	e := echo.New()
	e.Use(Recover(l), Metrics(l, time.Hour), RequestLogging(l))
	e.GET("/boom", func(c echo.Context) error { panic("kaboom") })
	e.GET("/ok/:id", func(c echo.Context) error { return c.String(http.StatusOK, "fine") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("panic should become a 500, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok/42", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	out := buf.String()
	if !strings.Contains(out, "kaboom") {
		t.Fatalf("panic value should be logged: %s", out)
	}
	if !strings.Contains(out, "/ok/:id") {
		t.Fatalf("request log should carry the route template: %s", out)
	}
}
