package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pharmatrack/pharmacy-api/internal/api/middleware"
	"github.com/pharmatrack/pharmacy-api/internal/core/domain"
)

func TestUserHandler_Me(t *testing.T) {
	stub := &stubAuthService{
		profileFn: func(ctx context.Context, id string) (*domain.PublicUser, error) {
			if id != "USR-1" {
				t.Fatalf("unexpected id: %s", id)
			}
			return &domain.PublicUser{ID: id, Email: "ana@pharmacy.test"}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/users/me", "")
	c.Set(middleware.CtxUserID, "USR-1")

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Me_NoClaims(t *testing.T) {
	handler := NewUserHandler(&stubAuthService{})

	c, _ := newTestContext(t, http.MethodGet, "/users/me", "")
	err := handler.Me(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestUserHandler_UpdateRole(t *testing.T) {
	stub := &stubAuthService{
		updateRoleFn: func(ctx context.Context, id string, role domain.Role) (*domain.PublicUser, error) {
			if id != "USR-1" || role != domain.RolePharmacist {
				t.Fatalf("unexpected args: %s %s", id, role)
			}
			return &domain.PublicUser{ID: id, Role: role}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newTestContext(t, http.MethodPatch, "/users/USR-1/role", `{"role":"pharmacist"}`)
	c.SetParamNames("id")
	c.SetParamValues("USR-1")

	if err := handler.UpdateRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_UpdateRole_RejectsUnknownRole(t *testing.T) {
	handler := NewUserHandler(&stubAuthService{
		updateRoleFn: func(ctx context.Context, id string, role domain.Role) (*domain.PublicUser, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	})

	c, _ := newTestContext(t, http.MethodPatch, "/users/USR-1/role", `{"role":"superuser"}`)
	c.SetParamNames("id")
	c.SetParamValues("USR-1")

	err := handler.UpdateRole(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUserHandler_UpdateAccessLevel(t *testing.T) {
	stub := &stubAuthService{
		updateLevelFn: func(ctx context.Context, id string, level domain.AccessLevel) (*domain.PublicUser, error) {
			if level != domain.LevelDelete {
				t.Fatalf("unexpected level: %d", level)
			}
			return &domain.PublicUser{ID: id, AccessLevel: level}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newTestContext(t, http.MethodPatch, "/users/USR-1/access-level", `{"access_level":3}`)
	c.SetParamNames("id")
	c.SetParamValues("USR-1")

	if err := handler.UpdateAccessLevel(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_UpdateAccessLevel_OutOfRange(t *testing.T) {
	handler := NewUserHandler(&stubAuthService{
		updateLevelFn: func(ctx context.Context, id string, level domain.AccessLevel) (*domain.PublicUser, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	})

	c, _ := newTestContext(t, http.MethodPatch, "/users/USR-1/access-level", `{"access_level":9}`)
	c.SetParamNames("id")
	c.SetParamValues("USR-1")

	err := handler.UpdateAccessLevel(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUserHandler_Get_NotFoundPropagates(t *testing.T) {
	handler := NewUserHandler(&stubAuthService{
		profileFn: func(ctx context.Context, id string) (*domain.PublicUser, error) {
			return nil, domain.ErrUserNotFound
		},
	})

	c, _ := newTestContext(t, http.MethodGet, "/users/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := handler.Get(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound to propagate, got %v", err)
	}
}
