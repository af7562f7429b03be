package domain

import "time"

// Role is the categorical label attached to a user account.
type Role string

const (
	RoleAdmin      Role = "admin"
	RolePharmacist Role = "pharmacist"
	RoleOperator   Role = "operator"
	RoleViewer     Role = "viewer"
	RoleUser       Role = "user"
)

// validRoles is the closed set of assignable roles.
var validRoles = map[Role]struct{}{
	RoleAdmin:      {},
	RolePharmacist: {},
	RoleOperator:   {},
	RoleViewer:     {},
	RoleUser:       {},
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	_, ok := validRoles[r]
	return ok
}

// AccessLevel is an ordered permission tier, compared with >= semantics.
// It is independent of Role, which is a categorical label.
type AccessLevel int

const (
	LevelNone AccessLevel = iota
	LevelRead
	LevelWrite
	LevelDelete
	LevelAdmin
)

// Valid reports whether l is inside the defined tier range.
func (l AccessLevel) Valid() bool {
	return l >= LevelNone && l <= LevelAdmin
}

// User models an authenticated actor in the pharmacy backend.
// PasswordHash never serializes; anything handed to the outside world
// goes through Public().
type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Role         Role        `json:"role"`
	AccessLevel  AccessLevel `json:"access_level"`
	PasswordHash string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// PublicUser is the password-free projection returned by every auth flow.
type PublicUser struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Role        Role        `json:"role"`
	AccessLevel AccessLevel `json:"access_level"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Public strips credential material from the record.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		AccessLevel: u.AccessLevel,
		CreatedAt:   u.CreatedAt,
	}
}
