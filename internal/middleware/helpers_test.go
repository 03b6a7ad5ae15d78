package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"janmitra/internal/domain"
	"janmitra/internal/service/auth"
)

// stubAuth resolves tokens from a fixed table.
type stubAuth struct {
	principals map[string]*domain.Principal
	calls      int
}

func (s *stubAuth) StartVerification(context.Context, domain.StartVerificationInput) (string, error) {
	return "", nil
}

func (s *stubAuth) VerifyPhone(context.Context, domain.VerifyPhoneInput) (*domain.AuthResponse, error) {
	return nil, nil
}

func (s *stubAuth) OfficialLogin(context.Context, domain.OfficialLoginInput) (*domain.AuthResponse, error) {
	return nil, nil
}

func (s *stubAuth) GenerateToken(*domain.Principal) (string, error) {
	return "", nil
}

func (s *stubAuth) ValidateToken(string) (*auth.Claims, error) {
	return nil, domain.ErrInvalidToken
}

func (s *stubAuth) ResolvePrincipal(_ context.Context, token string) (*domain.Principal, error) {
	s.calls++
	p, ok := s.principals[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return p, nil
}

var _ auth.Service = (*stubAuth)(nil)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(false),
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
}

func testCitizen() *domain.Principal {
	return &domain.Principal{ID: uuid.New(), Role: domain.RoleCitizen, Active: true}
}

func testStaff(dept uuid.UUID) *domain.Principal {
	return &domain.Principal{ID: uuid.New(), Role: domain.RoleStaff, DepartmentID: &dept, Active: true}
}

func testSupervisor() *domain.Principal {
	return &domain.Principal{ID: uuid.New(), Role: domain.RoleSupervisor, Active: true}
}

// withPrincipal attaches p the way Authenticate would.
func withPrincipal(p *domain.Principal) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p != nil {
			setPrincipal(c, p)
		}
		return c.Next()
	}
}

func doRequest(t *testing.T, app *fiber.App, method, target string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, body
}

func decodeError(t *testing.T, body []byte) ErrorResponse {
	t.Helper()
	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}
