package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runWithRole(t *testing.T, mw echo.MiddlewareFunc, role interface{}) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set("role", role)
	}
	h := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole("ADMIN")

	if rec := runWithRole(t, mw, "ADMIN"); rec.Code != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", rec.Code)
	}
	if rec := runWithRole(t, mw, "CLIENT"); rec.Code != http.StatusForbidden {
		t.Fatalf("client: status = %d, want 403", rec.Code)
	}
	if rec := runWithRole(t, mw, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("missing role: status = %d, want 403", rec.Code)
	}
	if rec := runWithRole(t, mw, 42); rec.Code != http.StatusForbidden {
		t.Fatalf("non-string role: status = %d, want 403", rec.Code)
	}
}

func TestRequireRoleMultiple(t *testing.T) {
	mw := RequireRole("ADMIN", "CLIENT")
	if rec := runWithRole(t, mw, "CLIENT"); rec.Code != http.StatusOK {
		t.Fatalf("client: status = %d, want 200", rec.Code)
	}
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTAuth("secret")(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthRejectsGarbageToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTAuth("secret")(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
