package core

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PgTeacherDirectory serves the teacher directory from the teachers table.
type PgTeacherDirectory struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPgTeacherDirectory(db *pgxpool.Pool, logger *zap.Logger) *PgTeacherDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PgTeacherDirectory{db: db, logger: logger}
}

// Teachers lists every row. Query failures are logged and yield an empty directory.
func (r *PgTeacherDirectory) Teachers(ctx context.Context) []TeacherRecord {
	rows, err := r.db.Query(ctx, `SELECT username, email, name, password_hash FROM teachers ORDER BY id`)
	if err != nil {
		r.logger.Warn("teacher directory query failed", zap.Error(err))
		return []TeacherRecord{}
	}
	defer rows.Close()

	out := []TeacherRecord{}
	for rows.Next() {
		var t TeacherRecord
		if err := rows.Scan(&t.Username, &t.Email, &t.Name, &t.Password); err != nil {
			r.logger.Warn("teacher directory scan failed", zap.Error(err))
			return []TeacherRecord{}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		r.logger.Warn("teacher directory read failed", zap.Error(err))
		return []TeacherRecord{}
	}
	return out
}

// Create inserts a teacher; password must already be hashed.
func (r *PgTeacherDirectory) Create(ctx context.Context, t TeacherRecord) (int64, error) {
	const q = `INSERT INTO teachers (username, email, name, password_hash) VALUES ($1,$2,$3,$4) RETURNING id`
	var id int64
	if err := r.db.QueryRow(ctx, q, t.Username, t.Email, t.Name, t.Password).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Count returns the number of teachers.
func (r *PgTeacherDirectory) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM teachers`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
