package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/school-portal/internal/api/http"
	"github.com/spec-kit/school-portal/internal/api/http/handlers"
	"github.com/spec-kit/school-portal/internal/auth"
	"github.com/spec-kit/school-portal/internal/config"
	"github.com/spec-kit/school-portal/internal/domain"
	"github.com/spec-kit/school-portal/internal/observability"
	"github.com/spec-kit/school-portal/internal/ratelimit"
	"github.com/spec-kit/school-portal/internal/service"
)

type memoryUserRepo struct {
	users map[string]*domain.User
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = "user-" + user.Username
	r.users[user.Username] = user
	return nil
}

func (r *memoryUserRepo) Update(_ context.Context, user *domain.User) error {
	for _, stored := range r.users {
		if stored.ID == user.ID {
			*stored = *user
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) List(_ context.Context, _ *domain.Role) ([]domain.User, error) {
	return nil, nil
}

func newTestApp(t *testing.T) (*fiber.App, *auth.Codec) {
	t.Helper()

	codec, err := auth.NewCodec("handler-test-secret", 2*time.Hour)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	hash, err := auth.HashPassword("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	repo := &memoryUserRepo{users: map[string]*domain.User{
		"alice": {ID: "user-alice", Username: "alice", FullName: "Alice A",
			PasswordHash: hash, Role: domain.RoleStudent, Active: true},
	}}

	authService := service.NewAuthService(config.AuthConfig{BcryptCost: bcrypt.MinCost}, service.AuthDependencies{
		UserRepo: repo,
		Codec:    codec,
		Limiter:  ratelimit.NewLoginLimiter(nil, zap.NewNop(), 0, 0),
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Contacts:       handlers.NewContactsHandler(nil),
		Messages:       handlers.NewMessagesHandler(nil),
		AuthMiddleware: auth.NewMiddleware(codec),
	})
	return app, codec
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	return resp
}

func bodyMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(data, &payload)
	return payload.Message
}

func TestLoginEndpoint_Success(t *testing.T) {
	t.Parallel()
	app, codec := newTestApp(t)

	resp := postJSON(t, app, "/auth/login", `{"username":"alice","password":"s3cret"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		Token    string `json:"token"`
		Identity struct {
			SubjectID string `json:"subject_id"`
			Role      string `json:"role"`
		} `json:"identity"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Identity.Role != string(domain.RoleStudent) {
		t.Errorf("role = %q, want STUDENT", out.Identity.Role)
	}

	identity, err := codec.Verify(out.Token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if identity.SubjectID != "user-alice" {
		t.Errorf("subject = %q", identity.SubjectID)
	}

	var sawCookie bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.CookieName && cookie.Value == out.Token && cookie.HttpOnly {
			sawCookie = true
		}
	}
	if !sawCookie {
		t.Error("expected httpOnly auth_token cookie carrying the issued token")
	}
}

func TestLoginEndpoint_UniformRejection(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)

	wrongPassword := postJSON(t, app, "/auth/login", `{"username":"alice","password":"nope"}`)
	defer wrongPassword.Body.Close()
	wrongUsername := postJSON(t, app, "/auth/login", `{"username":"mallory","password":"s3cret"}`)
	defer wrongUsername.Body.Close()

	if wrongPassword.StatusCode != http.StatusUnauthorized || wrongUsername.StatusCode != http.StatusUnauthorized {
		t.Fatalf("statuses = %d/%d, want 401/401", wrongPassword.StatusCode, wrongUsername.StatusCode)
	}

	msgPassword := bodyMessage(t, wrongPassword)
	msgUsername := bodyMessage(t, wrongUsername)
	if msgPassword != msgUsername {
		t.Errorf("rejection wording differs: %q vs %q", msgPassword, msgUsername)
	}
}

func TestMessagesPost_StudentForbidden(t *testing.T) {
	t.Parallel()
	app, codec := newTestApp(t)

	token, _, err := codec.Issue("user-alice", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/messages/class-5a", strings.NewReader(`{"body":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if message := bodyMessage(t, resp); message != "Insufficient permissions" {
		t.Errorf("message = %q", message)
	}
}

func TestMeEndpoint_EchoesIdentityAndRoute(t *testing.T) {
	t.Parallel()
	app, codec := newTestApp(t)

	token, _, err := codec.Issue("user-alice", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		Identity struct {
			Role string `json:"role"`
		} `json:"identity"`
		Route string `json:"route"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Route != "/student" {
		t.Errorf("route = %q, want /student", out.Route)
	}
}
