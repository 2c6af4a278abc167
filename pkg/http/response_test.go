package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestAppErrorResponseUsesStatus(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := AppErrorResponse(c, UnprocessableError("not enough rows")); err != nil {
		t.Fatalf("response: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var body APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != http.StatusUnprocessableEntity || body.Message != "Unprocessable Entity" {
		t.Fatalf("unexpected envelope %+v", body)
	}
}

func TestAppErrorResponseHidesUnknownErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = AppErrorResponse(c, errors.New("secret detail"))
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	base := errors.New("base")
	err := InternalError("wrapped").WithError(base)
	if !errors.Is(err, base) {
		t.Fatalf("AppError must unwrap to the cause")
	}
	if err.Error() != "wrapped: base" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

type sample struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" default:"3" validate:"gte=1,lte=5"`
}

func TestReadAndValidateRequest(t *testing.T) {
	e := echo.New()
	newCtx := func(body string) echo.Context {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return e.NewContext(req, httptest.NewRecorder())
	}

	var ok sample
	if verr := ReadAndValidateRequest(newCtx(`{"name":"x"}`), &ok); verr != nil {
		t.Fatalf("unexpected validation error %v", verr)
	}
	if ok.Count != 3 {
		t.Fatalf("default not applied, got %d", ok.Count)
	}

	var bad sample
	verr := ReadAndValidateRequest(newCtx(`{"count":9}`), &bad)
	errs, isList := verr.([]ValidationError)
	if !isList || len(errs) != 2 {
		t.Fatalf("expected two validation errors, got %#v", verr)
	}
	if errs[0].Code != "ERR_REQUIRED" || errs[0].Field != "name" || errs[1].Params["max"] != "5" {
		t.Fatalf("unexpected errors %+v", errs)
	}
}
