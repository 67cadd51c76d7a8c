package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"admissio/internal/course"
	id "admissio/pkg/domain"
	"admissio/pkg/platform/sentinel"
	txcontext "admissio/pkg/platform/tx"
)

const courseColumns = `id, name, department, duration_days, required_documents, created_at, updated_at`

// Postgres persists courses in the course table. The document checklist is
// stored as a comma-joined string; normalization happens in the model.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, c *course.Course) error {
	query := `
		INSERT INTO course (` + courseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := txcontext.QuerierFrom(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(c.ID),
		c.Name,
		c.Department,
		c.DurationDays,
		strings.Join(c.RequiredDocumentTypes, ","),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, courseID id.CourseID) (*course.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM course WHERE id = $1`
	return scanOne(txcontext.QuerierFrom(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(courseID)))
}

func (s *Postgres) FindAll(ctx context.Context) ([]*course.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM course ORDER BY name`
	rows, err := txcontext.QuerierFrom(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var out []*course.Course
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Postgres) Update(ctx context.Context, c *course.Course) error {
	query := `
		UPDATE course
		SET name = $2, department = $3, duration_days = $4, required_documents = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := txcontext.QuerierFrom(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(c.ID),
		c.Name,
		c.Department,
		c.DurationDays,
		strings.Join(c.RequiredDocumentTypes, ","),
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, courseID id.CourseID) error {
	result, err := txcontext.QuerierFrom(ctx, s.db).ExecContext(ctx, `DELETE FROM course WHERE id = $1`, uuid.UUID(courseID))
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*course.Course, error) {
	var c course.Course
	var courseID uuid.UUID
	var docs string
	if err := row.Scan(&courseID, &c.Name, &c.Department, &c.DurationDays, &docs, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan course: %w", err)
	}
	c.ID = id.CourseID(courseID)
	if docs != "" {
		c.RequiredDocumentTypes = strings.Split(docs, ",")
	}
	return &c, nil
}

func scanOne(row *sql.Row) (*course.Course, error) {
	c, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}
