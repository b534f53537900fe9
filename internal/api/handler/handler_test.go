package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestValidator_UsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&fieldRequest{Section: "progress"})
	if err == nil || err.Error() != "keys is required" {
		t.Fatalf("unexpected error %v", err)
	}

	err = v.Validate(&tabRequest{Tab: "Billing"})
	if err == nil || !strings.HasPrefix(err.Error(), "tab must be one of") {
		t.Fatalf("unexpected error %v", err)
	}

	if err := v.Validate(&signUpRequest{Name: "Jane", Email: "jane@x.com", Password: "x"}); err != nil {
		t.Fatalf("password length is left to the auth service, got %v", err)
	}
}

func TestHealth_Readiness(t *testing.T) {
	h := NewHealthHandler(map[string]HealthCheck{
		"mongodb": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return errors.New("connection refused") },
	})
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "degraded" || resp.Dependencies["mongodb"].Status != "ok" || resp.Dependencies["redis"].Error != "connection refused" {
		t.Fatalf("unexpected payload %+v", resp)
	}
}

func TestHealth_NoChecksIsReady(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

	if err := NewHealthHandler(nil).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCallbackPage_EscapesProviderError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/callback", nil), rec)

	if err := renderCallback(c, http.StatusOK, callbackResult{Error: "<script>x</script>"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<script>x</script>") {
		t.Fatal("provider error must be escaped")
	}
	if !strings.Contains(body, "Sign-in failed") {
		t.Errorf("expected the failure text, got %q", body)
	}
}
