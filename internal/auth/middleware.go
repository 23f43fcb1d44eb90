package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/school-portal/pkg/util"
)

// CookieName is the httpOnly cookie carrying the session token.
const CookieName = "auth_token"

const identityKey = "auth_identity"

// Extractor pulls a candidate token out of a request. Extractors are
// tried in order; the first non-empty result wins.
type Extractor func(c *fiber.Ctx) string

// FromCookie reads the token from the named cookie.
func FromCookie(name string) Extractor {
	return func(c *fiber.Ctx) string {
		return c.Cookies(name)
	}
}

// FromBearerHeader reads the token from an Authorization: Bearer header.
func FromBearerHeader() Extractor {
	return func(c *fiber.Ctx) string {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return ""
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}
}

// Middleware authenticates protected requests. The cookie is preferred
// over the header to support migrating clients off header delivery
// without breaking them.
type Middleware struct {
	codec      *Codec
	extractors []Extractor
}

// NewMiddleware constructs the authenticator with the default
// cookie-then-header extraction order.
func NewMiddleware(codec *Codec, extractors ...Extractor) *Middleware {
	if len(extractors) == 0 {
		extractors = []Extractor{FromCookie(CookieName), FromBearerHeader()}
	}
	return &Middleware{codec: codec, extractors: extractors}
}

// Handle verifies the presented token and attaches the resulting
// identity to the request before the handler runs.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	var token string
	for _, extract := range m.extractors {
		if token = extract(c); token != "" {
			break
		}
	}

	identity, err := m.codec.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenMissing):
			return apperrors.NewUnauthorized("Authentication required")
		case errors.Is(err, ErrTokenExpired):
			return apperrors.NewUnauthorized("Token expired")
		default:
			return apperrors.NewUnauthorized("Invalid token")
		}
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// IdentityFromContext retrieves the authenticated identity, if any.
func IdentityFromContext(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*Identity)
	return identity, ok
}
