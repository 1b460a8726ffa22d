package core

import (
	"context"
	"errors"
)

// RoleTeacher is the only role an authenticated principal can hold.
const RoleTeacher = "teacher"

// User represents an authenticated principal returned to handlers.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

var (
	// ErrInvalidCredentials is returned when username/password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned when a bearer token is missing, invalid, expired,
	// or names a teacher no longer in the directory.
	ErrUnauthorized = errors.New("could not validate credentials")
)

// AuthService defines authentication behaviour.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (User, error)
	Lookup(ctx context.Context, username string) (User, error)
}

func userFromRecord(t TeacherRecord) User {
	return User{
		Username: t.Username,
		Email:    t.Email,
		Name:     t.Name,
		Role:     RoleTeacher,
	}
}
