package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/school-portal/internal/api/dto"
	"github.com/spec-kit/school-portal/internal/auth"
	"github.com/spec-kit/school-portal/internal/domain"
	"github.com/spec-kit/school-portal/internal/policy"
	"github.com/spec-kit/school-portal/internal/service"
	apperrors "github.com/spec-kit/school-portal/pkg/util"
)

// AuthHandler exposes login and account endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login. On success the token travels both in
// the JSON body (for header-based clients) and in an httpOnly cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	user, token, expiresAt, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewUnauthorized(service.ErrInvalidCredentials.Error())
		}
		return err
	}

	setAuthCookie(c, token, expiresAt)
	return c.JSON(dto.LoginResponse{
		Token:     token,
		Identity:  dto.Identity{SubjectID: user.ID, Role: string(user.Role)},
		ExpiresAt: expiresAt,
	})
}

// Logout handles POST /auth/logout. Tokens are stateless, so logout
// amounts to clearing the cookie client-side.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	identity, _ := auth.IdentityFromContext(c)
	if identity != nil {
		_ = h.auth.Logout(c.UserContext(), identity.SubjectID)
	}
	clearAuthCookie(c)
	return c.JSON(fiber.Map{"status": "logged out"})
}

// Me handles GET /auth/me, echoing the verified identity and its
// landing route.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Authentication required")
	}
	return c.JSON(fiber.Map{
		"identity": dto.Identity{SubjectID: identity.SubjectID, Role: string(identity.Role)},
		"route":    policy.RoutesFor(identity.Role),
	})
}

// Register handles POST /auth/users (admin only).
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Authentication required")
	}

	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" || req.FullName == "" {
		return apperrors.NewValidationError("username, full_name, password required", nil)
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": req.Role})
	}

	user, err := h.auth.Register(c.UserContext(), identity, req.Username, req.FullName, req.Email, req.Password, role)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": fiber.Map{
			"id":        user.ID,
			"username":  user.Username,
			"full_name": user.FullName,
			"email":     user.Email,
			"role":      string(user.Role),
		},
	})
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Authentication required")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current and new password required", nil)
	}

	if err := h.auth.ChangePassword(c.UserContext(), identity.SubjectID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewUnauthorized(service.ErrInvalidCredentials.Error())
		}
		return err
	}
	return c.JSON(fiber.Map{"status": "password changed"})
}

func setAuthCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Expires:  expiresAt,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
