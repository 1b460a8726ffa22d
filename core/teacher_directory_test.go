package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTeachers(t *testing.T, path string, teachers ...TeacherRecord) {
	t.Helper()
	data, err := json.Marshal(teacherFile{Teachers: teachers})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestFileTeacherDirectory_Reads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teachers.json")
	writeTeachers(t, path, TeacherRecord{Username: "ms.lee", Email: "lee@mergington.edu", Name: "Ms. Lee", Password: "x"})

	d := NewFileTeacherDirectory(path, nil)
	got := d.Teachers(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "ms.lee", got[0].Username)
	assert.Equal(t, "Ms. Lee", got[0].Name)
}

func TestFileTeacherDirectory_ReloadsEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teachers.json")
	writeTeachers(t, path, TeacherRecord{Username: "ms.lee"})
	d := NewFileTeacherDirectory(path, nil)
	require.Len(t, d.Teachers(context.Background()), 1)

	writeTeachers(t, path, TeacherRecord{Username: "ms.lee"}, TeacherRecord{Username: "mr.park"})
	assert.Len(t, d.Teachers(context.Background()), 2)
}

func TestFileTeacherDirectory_FailuresYieldEmpty(t *testing.T) {
	dir := t.TempDir()
	malformed := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(malformed, []byte("{not json"), 0o644))
	noKey := filepath.Join(dir, "nokey.json")
	require.NoError(t, os.WriteFile(noKey, []byte(`{"staff": []}`), 0o644))

	for name, path := range map[string]string{
		"missing":   filepath.Join(dir, "missing.json"),
		"malformed": malformed,
		"no key":    noKey,
	} {
		t.Run(name, func(t *testing.T) {
			got := NewFileTeacherDirectory(path, nil).Teachers(context.Background())
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}
