package core

import (
	"context"
	"encoding/json"
	"os"

	"go.uber.org/zap"
)

// TeacherRecord is one entry of the teacher directory.
type TeacherRecord struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// TeacherDirectory lists the teachers allowed to manage rosters.
// Implementations never fail: an unreadable source yields an empty list.
type TeacherDirectory interface {
	Teachers(ctx context.Context) []TeacherRecord
}

type teacherFile struct {
	Teachers []TeacherRecord `json:"teachers"`
}

// FileTeacherDirectory reads {"teachers": [...]} from Path on every call,
// so edits to the file apply without a restart.
type FileTeacherDirectory struct {
	Path   string
	logger *zap.Logger
}

func NewFileTeacherDirectory(path string, logger *zap.Logger) *FileTeacherDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileTeacherDirectory{Path: path, logger: logger}
}

func (d *FileTeacherDirectory) Teachers(ctx context.Context) []TeacherRecord {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		d.logger.Warn("teacher directory unreadable", zap.String("path", d.Path), zap.Error(err))
		return []TeacherRecord{}
	}
	var f teacherFile
	if err := json.Unmarshal(data, &f); err != nil {
		d.logger.Warn("teacher directory malformed", zap.String("path", d.Path), zap.Error(err))
		return []TeacherRecord{}
	}
	if f.Teachers == nil {
		return []TeacherRecord{}
	}
	return f.Teachers
}
