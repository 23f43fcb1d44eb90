package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/school-portal/internal/domain"
)

// Verification failures are distinguishable so that callers can produce
// precise diagnostics instead of a single boolean.
var (
	// ErrTokenMissing means no token was presented at all.
	ErrTokenMissing = errors.New("no token presented")
	// ErrTokenExpired means the token was authentic but past its window.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed covers bad signatures, wrong algorithms and
	// structurally invalid claim sets.
	ErrTokenMalformed = errors.New("malformed token")

	// ErrNoSigningSecret is returned when a codec is constructed without
	// a secret. Callers treat this as fatal at startup.
	ErrNoSigningSecret = errors.New("signing secret not configured")
)

// Identity is the request-scoped result of a successful verification.
type Identity struct {
	SubjectID string      `json:"subject_id"`
	Role      domain.Role `json:"role"`
}

// Codec issues and verifies signed session tokens. The signing
// algorithm is fixed to HS256; tokens offering any other algorithm are
// rejected as malformed rather than negotiated.
type Codec struct {
	secret []byte
	window time.Duration
}

// NewCodec builds a codec over the process-wide secret and validity
// window. An empty secret is a configuration error, never defaulted.
func NewCodec(secret string, window time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, ErrNoSigningSecret
	}
	if window <= 0 {
		window = 2 * time.Hour
	}
	return &Codec{secret: []byte(secret), window: window}, nil
}

// Window returns the validity window applied at issuance.
func (c *Codec) Window() time.Duration {
	return c.window
}

// Claims describes the signed claim set carried inside a token.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a fresh token for the subject. The window is fixed at
// issuance; renewal requires a new login.
func (c *Codec) Issue(subjectID string, role domain.Role) (string, time.Time, error) {
	if subjectID == "" {
		return "", time.Time{}, errors.New("empty subject")
	}
	if !role.Valid() {
		return "", time.Time{}, errors.New("unknown role")
	}

	now := time.Now()
	expiresAt := now.Add(c.window)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks signature integrity and time validity, returning the
// embedded identity. Failures map onto the sentinel errors above.
func (c *Codec) Verify(tokenStr string) (*Identity, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return nil, ErrTokenMissing
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrTokenMalformed
	}
	return &Identity{SubjectID: claims.Subject, Role: claims.Role}, nil
}
