package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pharmatrack/pharmacy-api/internal/core/domain"
)

const (
	minPasswordLength = 12

	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars   = "0123456789"
	specialChars = "!@#$%^&*()-_=+[]{};:,.<>?"
)

// PasswordHasher enforces the strength policy and wraps bcrypt for one-way
// hashing. The cost factor is fixed at construction and not tunable per call.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher builds a hasher with the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to the library default.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// ValidateStrength evaluates every rule independently and returns the full
// list of violations. An empty slice means the password is acceptable.
func (h *PasswordHasher) ValidateStrength(password string) []string {
	var violations []string

	if len(password) < minPasswordLength {
		violations = append(violations, fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if !strings.ContainsAny(password, lowerChars) {
		violations = append(violations, "must contain a lowercase letter")
	}
	if !strings.ContainsAny(password, upperChars) {
		violations = append(violations, "must contain an uppercase letter")
	}
	if !strings.ContainsAny(password, digitChars) {
		violations = append(violations, "must contain a digit")
	}
	if !strings.ContainsAny(password, specialChars) {
		violations = append(violations, "must contain a special character ("+specialChars+")")
	}

	return violations
}

// Hash validates strength and produces a salted bcrypt hash.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if violations := h.ValidateStrength(password); len(violations) > 0 {
		return "", &domain.WeakPasswordError{Violations: violations}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrHashing, err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. A mismatch is
// not an error; only a malformed hash is.
func (h *PasswordHasher) Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", domain.ErrHashing, err)
	}
}

// GenerateCompliantSecret produces a random password that satisfies every
// strength rule: one character from each required class, padding from the
// full alphabet, then a shuffle so required characters are not positionally
// predictable.
func (h *PasswordHasher) GenerateCompliantSecret() (string, error) {
	classes := []string{lowerChars, upperChars, digitChars, specialChars}
	alphabet := lowerChars + upperChars + digitChars + specialChars

	chars := make([]byte, 0, minPasswordLength)
	for _, class := range classes {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}
	for len(chars) < minPasswordLength {
		c, err := randomChar(alphabet)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	// Fisher-Yates with crypto/rand indices.
	for i := len(chars) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrHashing, err)
		}
		j := int(n.Int64())
		chars[i], chars[j] = chars[j], chars[i]
	}

	return string(chars), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrHashing, err)
	}
	return set[n.Int64()], nil
}
