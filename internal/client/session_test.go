package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spec-kit/school-portal/internal/api/dto"
	"github.com/spec-kit/school-portal/internal/client"
	"github.com/spec-kit/school-portal/internal/domain"
)

func storedIdentityJSON(t *testing.T, identity client.StoredIdentity) string {
	t.Helper()
	raw, err := json.Marshal(identity)
	if err != nil {
		t.Fatalf("marshal identity: %v", err)
	}
	return string(raw)
}

func TestSession_ResolveValidState(t *testing.T) {
	t.Parallel()

	storage := client.NewMemoryStorage()
	_ = storage.Set(client.TokenKey, "some-token")
	_ = storage.Set(client.IdentityKey, storedIdentityJSON(t, client.StoredIdentity{
		SubjectID: "user-1",
		Role:      domain.RoleStudent,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	session := client.NewSession(storage)
	if session.Resolved() {
		t.Fatal("session must start unresolved")
	}
	session.Resolve()

	if !session.Authenticated() {
		t.Fatal("expected authenticated session")
	}
	if session.Token() != "some-token" {
		t.Errorf("token = %q", session.Token())
	}
	if identity := session.Identity(); identity == nil || identity.Role != domain.RoleStudent {
		t.Errorf("identity = %+v", identity)
	}
}

func TestSession_CorruptIdentityClearsBothKeys(t *testing.T) {
	t.Parallel()

	storage := client.NewMemoryStorage()
	_ = storage.Set(client.TokenKey, "some-token")
	_ = storage.Set(client.IdentityKey, "{not-json")

	session := client.NewSession(storage)
	session.Resolve()

	if session.Authenticated() {
		t.Fatal("corrupt identity must not authenticate")
	}
	if _, ok := storage.Get(client.TokenKey); ok {
		t.Error("token key should be cleared")
	}
	if _, ok := storage.Get(client.IdentityKey); ok {
		t.Error("identity key should be cleared")
	}
}

func TestSession_MissingHalfClearsBothKeys(t *testing.T) {
	t.Parallel()

	storage := client.NewMemoryStorage()
	_ = storage.Set(client.TokenKey, "orphan-token")

	session := client.NewSession(storage)
	session.Resolve()

	if session.Authenticated() {
		t.Fatal("token without identity must not authenticate")
	}
	if _, ok := storage.Get(client.TokenKey); ok {
		t.Error("orphan token should be cleared")
	}
}

func TestSession_KnownExpiredIsUnauthenticated(t *testing.T) {
	t.Parallel()

	storage := client.NewMemoryStorage()
	_ = storage.Set(client.TokenKey, "expired-token")
	_ = storage.Set(client.IdentityKey, storedIdentityJSON(t, client.StoredIdentity{
		SubjectID: "user-1",
		Role:      domain.RoleStudent,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	session := client.NewSession(storage)
	session.Resolve()

	if session.Authenticated() {
		t.Fatal("known-expired session must not authenticate")
	}
}

func TestSession_EmptyStorageResolvesUnauthenticated(t *testing.T) {
	t.Parallel()

	session := client.NewSession(client.NewMemoryStorage())
	session.Resolve()

	if !session.Resolved() {
		t.Fatal("session should be resolved")
	}
	if session.Authenticated() {
		t.Fatal("empty storage must resolve unauthenticated")
	}
}

func newLoginTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req dto.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Username != "alice" || req.Password != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid username or password"})
			return
		}
		_ = json.NewEncoder(w).Encode(dto.LoginResponse{
			Token:     "issued-token",
			Identity:  dto.Identity{SubjectID: "user-1", Role: string(domain.RoleTeacher)},
			ExpiresAt: time.Now().Add(2 * time.Hour),
		})
	}))
}

func TestClient_LoginPersistsSession(t *testing.T) {
	t.Parallel()
	server := newLoginTestServer(t)
	defer server.Close()

	storage := client.NewMemoryStorage()
	c := client.New(server.URL, storage)
	c.Session().Resolve()

	if err := c.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if !c.Session().Authenticated() {
		t.Fatal("expected authenticated session after login")
	}
	if token, ok := storage.Get(client.TokenKey); !ok || token != "issued-token" {
		t.Errorf("persisted token = %q, ok=%v", token, ok)
	}
	if _, ok := storage.Get(client.IdentityKey); !ok {
		t.Error("identity not persisted")
	}
}

func TestClient_LoginRejected(t *testing.T) {
	t.Parallel()
	server := newLoginTestServer(t)
	defer server.Close()

	c := client.New(server.URL, client.NewMemoryStorage())
	c.Session().Resolve()

	err := c.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, client.ErrInvalidLogin) {
		t.Fatalf("expected ErrInvalidLogin, got %v", err)
	}
	if c.Session().Authenticated() {
		t.Fatal("session must stay unauthenticated after rejected login")
	}
}

func TestClient_LoginNetworkError(t *testing.T) {
	t.Parallel()

	server := newLoginTestServer(t)
	server.Close() // connection refused

	c := client.New(server.URL, client.NewMemoryStorage())
	c.Session().Resolve()

	err := c.Login(context.Background(), "alice", "s3cret")
	if !errors.Is(err, client.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestClient_LogoutClearsSession(t *testing.T) {
	t.Parallel()
	server := newLoginTestServer(t)
	defer server.Close()

	storage := client.NewMemoryStorage()
	c := client.New(server.URL, storage)
	c.Session().Resolve()

	if err := c.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	_ = c.Logout(context.Background())

	if c.Session().Authenticated() {
		t.Fatal("session must be cleared after logout")
	}
	if _, ok := storage.Get(client.TokenKey); ok {
		t.Error("token key must be cleared after logout")
	}
}
