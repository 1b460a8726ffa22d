package core

import (
	"context"
	"strings"
	"time"
)

// DirectoryAuthService authenticates teachers against a TeacherDirectory.
// The directory is consulted on every call; nothing is cached.
type DirectoryAuthService struct {
	teachers TeacherDirectory
	verifier PasswordVerifier
}

func NewDirectoryAuthService(teachers TeacherDirectory, verifier PasswordVerifier) *DirectoryAuthService {
	if verifier == nil {
		verifier = BcryptVerifier{}
	}
	return &DirectoryAuthService{teachers: teachers, verifier: verifier}
}

// Authenticate returns the teacher matching username exactly when password verifies.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *DirectoryAuthService) Authenticate(ctx context.Context, username, password string) (User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	t, ok := s.find(ctx, username)
	if !ok || !s.verifier.Verify(password, t.Password) {
		return User{}, ErrInvalidCredentials
	}
	return userFromRecord(t), nil
}

// Lookup resolves a token subject back to a teacher.
func (s *DirectoryAuthService) Lookup(ctx context.Context, username string) (User, error) {
	if username == "" {
		return User{}, ErrUnauthorized
	}
	t, ok := s.find(ctx, username)
	if !ok {
		return User{}, ErrUnauthorized
	}
	return userFromRecord(t), nil
}

func (s *DirectoryAuthService) find(ctx context.Context, username string) (TeacherRecord, bool) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	for _, t := range s.teachers.Teachers(ctx) {
		if t.Username == username {
			return t, true
		}
	}
	return TeacherRecord{}, false
}
