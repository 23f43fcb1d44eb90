package auth_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/school-portal/internal/api/http"
	"github.com/spec-kit/school-portal/internal/auth"
	"github.com/spec-kit/school-portal/internal/domain"
	"github.com/spec-kit/school-portal/internal/observability"
)

// newProtectedApp builds a Fiber app with the real error-mapping
// middleware, the authenticator and two gated routes.
func newProtectedApp(t *testing.T, codec *auth.Codec) *fiber.App {
	t.Helper()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)

	middleware := auth.NewMiddleware(codec)
	app.Get("/protected", middleware.Handle, auth.RequireAuthenticated(), func(c *fiber.Ctx) error {
		identity, _ := auth.IdentityFromContext(c)
		return c.JSON(fiber.Map{"subject": identity.SubjectID, "role": string(identity.Role)})
	})
	app.Get("/admin-only", middleware.Handle, auth.RequireRoles(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)
	return resp.StatusCode, payload.Message
}

func TestMiddleware_NoToken(t *testing.T) {
	t.Parallel()
	app := newProtectedApp(t, newCodec(t))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	status, message := doRequest(t, app, req)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if message != "Authentication required" {
		t.Errorf("message = %q, want %q", message, "Authentication required")
	}
}

func TestMiddleware_MalformedToken(t *testing.T) {
	t.Parallel()
	app := newProtectedApp(t, newCodec(t))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	status, message := doRequest(t, app, req)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if message != "Invalid token" {
		t.Errorf("message = %q, want %q", message, "Invalid token")
	}
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	t.Parallel()
	app := newProtectedApp(t, newCodec(t))

	expired := signedToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub":  "user-42",
		"role": string(domain.RoleStudent),
		"iat":  time.Now().Add(-3 * time.Hour).Unix(),
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	status, message := doRequest(t, app, req)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if message != "Token expired" {
		t.Errorf("message = %q, want %q", message, "Token expired")
	}
}

func TestMiddleware_ValidHeaderToken(t *testing.T) {
	t.Parallel()
	codec := newCodec(t)
	app := newProtectedApp(t, codec)

	token, _, err := codec.Issue("user-42", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	status, _ := doRequest(t, app, req)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
}

func TestMiddleware_ValidCookieToken(t *testing.T) {
	t.Parallel()
	codec := newCodec(t)
	app := newProtectedApp(t, codec)

	token, _, err := codec.Issue("user-42", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	status, _ := doRequest(t, app, req)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
}

func TestMiddleware_CookieTakesPrecedenceOverHeader(t *testing.T) {
	t.Parallel()
	codec := newCodec(t)
	app := newProtectedApp(t, codec)

	token, _, err := codec.Issue("user-42", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// A stale cookie must win over a fresh header: the first extraction
	// strategy that yields a token is used, not the first that verifies.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "stale-garbage"})
	req.Header.Set("Authorization", "Bearer "+token)
	status, message := doRequest(t, app, req)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if message != "Invalid token" {
		t.Errorf("message = %q, want %q", message, "Invalid token")
	}
}

func TestRoleGate_InsufficientRole(t *testing.T) {
	t.Parallel()
	codec := newCodec(t)
	app := newProtectedApp(t, codec)

	token, _, err := codec.Issue("user-42", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	status, message := doRequest(t, app, req)
	if status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
	if message != "Insufficient permissions" {
		t.Errorf("message = %q, want %q", message, "Insufficient permissions")
	}
}

func TestRoleGate_AllowedRole(t *testing.T) {
	t.Parallel()
	codec := newCodec(t)
	app := newProtectedApp(t, codec)

	token, _, err := codec.Issue("admin-1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	status, _ := doRequest(t, app, req)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
}

func TestRoleGate_AnonymousIsUnauthorizedNotForbidden(t *testing.T) {
	t.Parallel()
	app := newProtectedApp(t, newCodec(t))

	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	status, _ := doRequest(t, app, req)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 (never 403 for anonymous)", status)
	}
}
