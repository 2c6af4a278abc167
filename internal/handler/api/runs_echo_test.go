package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"ShortScan/internal/domain/models"
)

type fakePipeline struct {
	latest *models.RunReport
	err    error
	got    models.RunParams
	calls  int
}

func (f *fakePipeline) Run(_ context.Context, p models.RunParams) (*models.RunReport, error) {
	f.calls++
	f.got = p
	if f.err != nil {
		return nil, f.err
	}
	f.latest = &models.RunReport{RunID: "r1", Params: p, BestFold: 1}
	return f.latest, nil
}

func (f *fakePipeline) Latest() (*models.RunReport, bool) { return f.latest, f.latest != nil }

func newEcho(p *fakePipeline, limit RunLimit) *echo.Echo {
	e := echo.New()
	NewRunsEchoHandler(nil, p, models.ModelParams{Seed: 7, Jobs: 2}, limit).RegisterRoutes(e)
	return e
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func do(t *testing.T, e *echo.Echo, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestLatestNotFound(t *testing.T) {
	e := newEcho(&fakePipeline{}, RunLimit{})
	for _, path := range []string{"/api/runs/latest", "/api/runs/latest/importances"} {
		if code, env := do(t, e, http.MethodGet, path, ""); code != http.StatusNotFound || env.Status != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, code)
		}
	}
}

func TestLatestImportances(t *testing.T) {
	p := &fakePipeline{latest: &models.RunReport{
		RunID:       "r0",
		Importances: []models.ImportanceEntry{{Feature: "ma_50", Importance: 0.1}, {Feature: "return_1d", Importance: 0.9}},
	}}
	code, env := do(t, newEcho(p, RunLimit{}), http.MethodGet, "/api/runs/latest/importances", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var got []models.ImportanceEntry
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode importances: %v", err)
	}
	if len(got) != 2 || got[0].Feature != "ma_50" {
		t.Fatalf("unexpected importances %+v", got)
	}
}

func TestCreateRun(t *testing.T) {
	p := &fakePipeline{}
	e := newEcho(p, RunLimit{})
	code, _ := do(t, e, http.MethodPost, "/api/runs", `{"symbols":[" aapl ","msft"],"start":"2020-01-01","end":"2021-01-01","splits":3}`)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if p.got.Symbols[0] != "AAPL" || p.got.Model.Splits != 3 {
		t.Fatalf("unexpected params %+v", p.got)
	}
	if p.got.Model.NEstimators != 400 || p.got.Model.MinSamplesLeaf != 5 {
		t.Fatalf("defaults not applied: %+v", p.got.Model)
	}
	if p.got.Model.Seed != 7 || p.got.Model.Jobs != 2 {
		t.Fatalf("seed and jobs come from configuration: %+v", p.got.Model)
	}
	if !p.got.Start.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", p.got.Start)
	}
	if code, _ := do(t, e, http.MethodGet, "/api/runs/latest", ""); code != http.StatusOK {
		t.Fatalf("latest should exist after a run, got %d", code)
	}
}

func TestCreateRunValidation(t *testing.T) {
	p := &fakePipeline{}
	e := newEcho(p, RunLimit{Burst: 100, RefillPerSec: 1})
	cases := map[string]string{
		"no symbols":  `{"symbols":[]}`,
		"bad date":    `{"symbols":["AAPL"],"start":"2020-13-01"}`,
		"reversed":    `{"symbols":["AAPL"],"start":"2022-01-01","end":"2021-01-01"}`,
		"zero trees":  `{"symbols":["AAPL"],"n_estimators":-1}`,
		"blank names": `{"symbols":["  "]}`,
	}
	for name, body := range cases {
		if code, _ := do(t, e, http.MethodPost, "/api/runs", body); code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, code)
		}
	}
	if p.calls != 0 {
		t.Fatalf("invalid requests must not reach the pipeline")
	}
}

func TestCreateRunErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("assemble panel: %w", models.ErrNoData), http.StatusUnprocessableEntity},
		{fmt.Errorf("walk-forward: %w", models.ErrInsufficientSplits), http.StatusUnprocessableEntity},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		e := newEcho(&fakePipeline{err: tc.err}, RunLimit{})
		if code, _ := do(t, e, http.MethodPost, "/api/runs", `{"symbols":["AAPL"]}`); code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, code)
		}
	}
}

func TestCreateRunRateLimited(t *testing.T) {
	p := &fakePipeline{}
	e := newEcho(p, RunLimit{Burst: 1, RefillPerSec: 0})
	if code, _ := do(t, e, http.MethodPost, "/api/runs", `{"symbols":["AAPL"]}`); code != http.StatusCreated {
		t.Fatalf("first run should pass, got %d", code)
	}
	if code, _ := do(t, e, http.MethodPost, "/api/runs", `{"symbols":["AAPL"]}`); code != http.StatusTooManyRequests {
		t.Fatalf("second run should be limited, got %d", code)
	}
	if p.calls != 1 {
		t.Fatalf("limited request reached the pipeline")
	}
}
