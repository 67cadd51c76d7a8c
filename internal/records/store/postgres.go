package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"admissio/internal/records"
	id "admissio/pkg/domain"
	"admissio/pkg/platform/sentinel"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Save(ctx context.Context, collection string, rec *records.Record) error {
	query := `
		INSERT INTO record (collection, id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (collection, id) DO UPDATE
		SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		collection, uuid.UUID(rec.ID), []byte(rec.Body), rec.CreatedAt, rec.UpdatedAt)
	return err
}

func (s *Postgres) FindByID(ctx context.Context, collection string, recordID id.RecordID) (*records.Record, error) {
	query := `SELECT id, body, created_at, updated_at FROM record WHERE collection = $1 AND id = $2`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, collection, uuid.UUID(recordID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *Postgres) FindAll(ctx context.Context, collection string) ([]*records.Record, error) {
	query := `SELECT id, body, created_at, updated_at FROM record WHERE collection = $1 ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*records.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteByID(ctx context.Context, collection string, recordID id.RecordID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM record WHERE collection = $1 AND id = $2`, collection, uuid.UUID(recordID))
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*records.Record, error) {
	var (
		rec  records.Record
		uid  uuid.UUID
		body []byte
	)
	if err := row.Scan(&uid, &body, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.ID = id.RecordID(uid)
	rec.Body = body
	return &rec, nil
}
