package core

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"

	"go.uber.org/zap"
)

// TeacherStore is the writable side of a database-backed directory.
type TeacherStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, t TeacherRecord) (int64, error)
}

// BootstrapTeacher creates an initial teacher when the store is empty.
// It is idempotent: if any teacher exists, it does nothing.
func BootstrapTeacher(ctx context.Context, store TeacherStore, cfg Config, logger *zap.Logger) error {
	if !cfg.BootstrapTeacherEnabled {
		return nil
	}

	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	const username = "admin.teacher"
	password, err := generatePassword(24)
	if err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	if _, err := store.Create(ctx, TeacherRecord{
		Username: username,
		Email:    "admin.teacher@mergington.edu",
		Name:     "Initial Teacher",
		Password: hash,
	}); err != nil {
		return err
	}

	if cfg.InitialTeacherPasswordPath != "" {
		if err := os.WriteFile(cfg.InitialTeacherPasswordPath, []byte(password+"\n"), 0o600); err != nil {
			return err
		}
		logger.Info("initial teacher created", zap.String("username", username), zap.String("password_file", cfg.InitialTeacherPasswordPath))
	} else {
		logger.Info("initial teacher created", zap.String("username", username), zap.String("password", password))
	}
	return nil
}

func generatePassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("password length must be positive")
	}
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw)[:length], nil
}
