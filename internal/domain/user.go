package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrUsernameTaken is returned by the user store when the username unique
// index rejects an insert.
var ErrUsernameTaken = errors.New("username already taken")

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Mobile       string    `json:"mobile"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Username string
	Password string
	Mobile   string
}

type LoginRequest struct {
	Username string
	Password string
}

var mobileRegex = regexp.MustCompile(`^[\+]?[\d\s\-\(\)]+$`)

func (r *RegisterRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	if r.Mobile == "" {
		return fmt.Errorf("mobile number is required")
	}
	if !mobileRegex.MatchString(r.Mobile) || len(r.Mobile) < 7 {
		return fmt.Errorf("invalid mobile number")
	}
	return nil
}

func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Mobile = strings.TrimSpace(r.Mobile)
}

func (r *LoginRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

func (r *LoginRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}
