package client

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/school-portal/internal/domain"
)

// StoredIdentity is the identity half of the persisted session.
type StoredIdentity struct {
	SubjectID string      `json:"subject_id"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Session holds the client's authentication state. It is owned by the
// UI's single logical thread: login/logout replace the state atomically
// when they complete, and at most one authentication operation should
// be in flight (debounced at the UI trigger, not here).
type Session struct {
	storage Storage

	resolved      bool
	authenticated bool
	token         string
	identity      *StoredIdentity
}

// NewSession wraps the storage without reading it. Guards see the
// session as checking until Resolve runs.
func NewSession(storage Storage) *Session {
	return &Session{storage: storage}
}

// Resolve reads the persisted session. The invariant it restores:
// authenticated if and only if both keys are present, parseable,
// mutually consistent and not known-expired. Anything corrupt clears
// both keys and reverts to unauthenticated.
func (s *Session) Resolve() {
	defer func() { s.resolved = true }()

	token, haveToken := s.storage.Get(TokenKey)
	rawIdentity, haveIdentity := s.storage.Get(IdentityKey)

	if !haveToken && !haveIdentity {
		return
	}
	if !haveToken || !haveIdentity || token == "" {
		s.clearStorage()
		return
	}

	var identity StoredIdentity
	if err := json.Unmarshal([]byte(rawIdentity), &identity); err != nil {
		s.clearStorage()
		return
	}
	if identity.SubjectID == "" || !identity.Role.Valid() {
		s.clearStorage()
		return
	}
	if !identity.ExpiresAt.IsZero() && time.Now().After(identity.ExpiresAt) {
		s.clearStorage()
		return
	}

	s.token = token
	s.identity = &identity
	s.authenticated = true
}

// Resolved reports whether the persisted session has been read.
func (s *Session) Resolved() bool {
	return s.resolved
}

// Authenticated reports whether identity and token are both present
// and not known-expired.
func (s *Session) Authenticated() bool {
	return s.resolved && s.authenticated
}

// Identity returns the current identity, nil when unauthenticated.
func (s *Session) Identity() *StoredIdentity {
	if !s.Authenticated() {
		return nil
	}
	return s.identity
}

// Token returns the current token, empty when unauthenticated.
func (s *Session) Token() string {
	if !s.Authenticated() {
		return ""
	}
	return s.token
}

// establish persists the pair and replaces the in-memory state.
func (s *Session) establish(token string, identity StoredIdentity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	if err := s.storage.Set(TokenKey, token); err != nil {
		return err
	}
	if err := s.storage.Set(IdentityKey, string(raw)); err != nil {
		s.clearStorage()
		return err
	}

	s.token = token
	s.identity = &identity
	s.authenticated = true
	s.resolved = true
	return nil
}

// Clear drops both persisted keys and the in-memory state.
func (s *Session) Clear() {
	s.clearStorage()
	s.token = ""
	s.identity = nil
	s.authenticated = false
	s.resolved = true
}

func (s *Session) clearStorage() {
	_ = s.storage.Delete(TokenKey)
	_ = s.storage.Delete(IdentityKey)
}
