// Package models defines the domain entities cached by the store and
// exchanged with the remote API. JSON names follow the API.
package models

import (
	"errors"
	"strings"
)

// Role of an account. Seniors take medication; guardians watch over them.
type Role string

const (
	RoleSenior   Role = "senior"
	RoleGuardian Role = "guardian"
)

func (r Role) Valid() bool {
	return r == RoleSenior || r == RoleGuardian
}

// User is the authenticated identity.
type User struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Role             Role   `json:"role"`
	PhoneNumber      string `json:"phone_number"`
	EmergencyContact string `json:"emergency_contact"`
}

// DisplayName is "First Last", falling back to the username and then the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	switch {
	case name != "":
		return name
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

// TokenPair is the credential pair issued on login/register.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Empty reports whether neither slot is set (logged out).
func (p TokenPair) Empty() bool {
	return p.Access == "" && p.Refresh == ""
}

// AuthResult is what login and register return.
type AuthResult struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// Credentials are the email/password login input.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up input.
type Registration struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Role            Role   `json:"role"`
	PhoneNumber     string `json:"phone_number,omitempty"`
}

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidRole      = errors.New("role must be senior or guardian")
)

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return ErrEmailRequired
	}
	if c.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return ErrEmailRequired
	}
	if r.Password == "" {
		return ErrPasswordRequired
	}
	if r.Password != r.PasswordConfirm {
		return ErrPasswordMismatch
	}
	if !r.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}
