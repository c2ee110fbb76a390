package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"FxPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

func TestRecoverTurnsPanicInto500(t *testing.T) {
	e := echo.New()
	e.Use(Recover(logger.Nop()))
	e.GET("/boom", func(c echo.Context) error {
		panic("kaput")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Internal Server Error") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestRecoverPassesThroughNormally(t *testing.T) {
	e := echo.New()
	e.Use(Recover(logger.Nop()))
	e.GET("/ok", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}
