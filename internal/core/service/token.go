package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pharmatrack/pharmacy-api/internal/core/domain"
)

// DefaultTokenLifetime is the fallback applied whenever a configured
// lifetime string cannot be parsed.
const DefaultTokenLifetime = 24 * time.Hour

const refreshTokenType = "refresh"

// AccessClaims is the decoded payload of a verified access token.
type AccessClaims struct {
	UserID      string
	Email       string
	Role        domain.Role
	AccessLevel domain.AccessLevel
	ExpiresAt   time.Time
}

// TokenService signs and verifies access and refresh tokens with HS256.
// The two token classes use distinct secrets so cross-use always fails
// signature verification; the refresh type discriminator is checked on top
// of that in case both secrets ever collide.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = DefaultTokenLifetime
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// WithClock overrides the time source. For tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// IssueAccessToken signs a short-lived token carrying the user's identity
// and authorization claims.
func (s *TokenService) IssueAccessToken(user *domain.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":          user.ID,
		"email":        user.Email,
		"role":         string(user.Role),
		"access_level": int(user.AccessLevel),
		"iat":          now.Unix(),
		"exp":          now.Add(s.accessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
}

// IssueRefreshToken signs a longer-lived token whose only purpose is to
// obtain a fresh access token.
func (s *TokenService) IssueRefreshToken(subjectID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": subjectID,
		"typ": refreshTokenType,
		"iat": now.Unix(),
		"exp": now.Add(s.refreshTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
}

// VerifyAccessToken returns the decoded claims, or nil on any failure —
// bad signature, malformed structure, or expiry. Callers treat every
// failure uniformly as unauthenticated; the reason is never surfaced.
func (s *TokenService) VerifyAccessToken(token string) *AccessClaims {
	claims := s.parse(token, s.accessSecret)
	if claims == nil {
		return nil
	}
	// A refresh token must never pass where an access token is expected.
	if typ, _ := claims["typ"].(string); typ == refreshTokenType {
		return nil
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	level, _ := claims["access_level"].(float64)
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || sub == "" {
		return nil
	}

	return &AccessClaims{
		UserID:      sub,
		Email:       email,
		Role:        domain.Role(role),
		AccessLevel: domain.AccessLevel(int(level)),
		ExpiresAt:   exp.Time,
	}
}

// VerifyRefreshToken returns the subject id, or "" on any failure. Tokens
// lacking the refresh type discriminator are rejected even when the
// signature checks out.
func (s *TokenService) VerifyRefreshToken(token string) string {
	claims := s.parse(token, s.refreshSecret)
	if claims == nil {
		return ""
	}
	if typ, _ := claims["typ"].(string); typ != refreshTokenType {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}

func (s *TokenService) parse(token string, secret []byte) jwt.MapClaims {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil
	}
	return claims
}

// ExtractBearerToken accepts only the exact two-part "Bearer <token>" form.
// Any other shape returns "".
func ExtractBearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return ""
	}
	return parts[1]
}

// ParseLifetime converts a compact duration string ("45s", "30m", "24h",
// "7d") into a duration. Malformed input falls back to DefaultTokenLifetime
// rather than failing; misconfiguration degrades to a sane default.
func ParseLifetime(s string) time.Duration {
	if len(s) < 2 {
		return DefaultTokenLifetime
	}

	magnitude, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || magnitude <= 0 {
		return DefaultTokenLifetime
	}

	switch s[len(s)-1] {
	case 's':
		return time.Duration(magnitude) * time.Second
	case 'm':
		return time.Duration(magnitude) * time.Minute
	case 'h':
		return time.Duration(magnitude) * time.Hour
	case 'd':
		return time.Duration(magnitude) * 24 * time.Hour
	default:
		return DefaultTokenLifetime
	}
}
