package domain

import (
	"context"
	"slices"
	"time"
)

// User represents a registered account
// swagger:model User
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email" validate:"required,email,max=180"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name" validate:"required,min=2,max=100"`
	LastName     string    `json:"last_name" validate:"required,min=2,max=100"`
	Roles        []string  `json:"roles"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User holding the base role. ID is set by the repository on create.
func NewUser(email, firstName, lastName string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Roles:     []string{RoleUser},
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// EffectiveRoles returns the stored roles with RoleUser guaranteed to be present.
func (u *User) EffectiveRoles() []string {
	if slices.Contains(u.Roles, RoleUser) {
		return slices.Clone(u.Roles)
	}
	return append([]string{RoleUser}, u.Roles...)
}

// IsAdmin reports whether the user holds RoleAdmin.
func (u *User) IsAdmin() bool {
	return slices.Contains(u.Roles, RoleAdmin)
}

// ToggleAdmin grants RoleAdmin when absent and revokes it otherwise.
func (u *User) ToggleAdmin() {
	roles := u.EffectiveRoles()
	if u.IsAdmin() {
		roles = slices.DeleteFunc(roles, func(r string) bool { return r == RoleAdmin })
	} else {
		roles = append(roles, RoleAdmin)
	}
	u.Roles = roles
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (hash string, err error)
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID int64, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]*User, error)
	UpdateRoles(ctx context.Context, id int64, roles []string) error
}

// SignUpInput is the data accepted when creating an account.
type SignUpInput struct {
	Email     string `json:"email" validate:"required,email,max=180"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,min=2,max=100"`
}

// AuthService handles account creation and credential login.
type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (token string, user *User, err error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}

// UserService defines user profile and administration operations.
type UserService interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context, actor *Identity) ([]*User, error)
	ToggleAdmin(ctx context.Context, actor *Identity, id int64) (*User, error)
}
