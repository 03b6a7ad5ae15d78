package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"janmitra/internal/domain"
	"janmitra/internal/kv"
	"janmitra/internal/service/auth"
)

type fakeAuth struct {
	auth.Service
	code  string
	login *domain.AuthResponse
	err   error
}

func (f *fakeAuth) StartVerification(context.Context, domain.StartVerificationInput) (string, error) {
	return f.code, f.err
}

func (f *fakeAuth) OfficialLogin(_ context.Context, in domain.OfficialLoginInput) (*domain.AuthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if in.LoginID != "STAFF-001" {
		return nil, domain.ErrInvalidCredentials
	}
	return f.login, nil
}

func TestAuthHandler_StartVerification(t *testing.T) {
	body := map[string]any{"phone": "+919876543210"}

	t.Run("Code echoed outside production", func(t *testing.T) {
		app := newTestApp(nil)
		app.Post("/start", NewAuthHandler(&fakeAuth{code: "123456"}, true).StartVerification)

		resp, out := doJSON(t, app, http.MethodPost, "/start", body, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "123456", out["otp"])
	})

	t.Run("Code hidden in production", func(t *testing.T) {
		app := newTestApp(nil)
		app.Post("/start", NewAuthHandler(&fakeAuth{code: "123456"}, false).StartVerification)

		resp, out := doJSON(t, app, http.MethodPost, "/start", body, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotContains(t, out, "otp")
	})

	t.Run("Invalid phone", func(t *testing.T) {
		app := newTestApp(nil)
		app.Post("/start", NewAuthHandler(&fakeAuth{err: domain.ErrInvalidPhone}, true).StartVerification)

		resp, out := doJSON(t, app, http.MethodPost, "/start", map[string]any{"phone": "12345"}, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "phone", out["field"])
	})
}

func TestAuthHandler_StaffLogin(t *testing.T) {
	sup := supervisorPrincipal()
	app := newTestApp(nil)
	app.Post("/login", NewAuthHandler(&fakeAuth{login: &domain.AuthResponse{Success: true, Token: "tok", User: sup}}, false).StaffLogin)

	resp, out := doJSON(t, app, http.MethodPost, "/login", map[string]any{"staffId": "STAFF-001", "password": "secret"}, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "tok", out["token"])

	resp, out = doJSON(t, app, http.MethodPost, "/login", map[string]any{"staffId": "STAFF-999", "password": "secret"}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, domain.ErrInvalidCredentials.Message, out["error"])

	resp, out = doJSON(t, app, http.MethodPost, "/login", map[string]any{"staffId": "STAFF-001"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "password", out["field"])
}

func TestAuthHandler_Me(t *testing.T) {
	citizen := citizenPrincipal()

	app := newTestApp(citizen)
	app.Get("/me", NewAuthHandler(&fakeAuth{}, false).Me)
	resp, out := doJSON(t, app, http.MethodGet, "/me", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, citizen.ID.String(), out["user"].(map[string]any)["id"])

	guest := newTestApp(nil)
	guest.Get("/me", NewAuthHandler(&fakeAuth{}, false).Me)
	resp, _ = doJSON(t, guest, http.MethodGet, "/me", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	store := kv.NewMemoryStore(time.Minute)

	app := newTestApp(nil)
	app.Get("/health", NewHealthHandler(pingerFunc(func(context.Context) error { return nil }), store).Health)
	resp, out := doJSON(t, app, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, "memory", out["store"])

	down := newTestApp(nil)
	down.Get("/health", NewHealthHandler(pingerFunc(func(context.Context) error { return errors.New("refused") }), store).Health)
	resp, out = doJSON(t, down, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "degraded", out["status"])
	assert.Equal(t, "unavailable", out["database"])
}
