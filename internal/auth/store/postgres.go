package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"admissio/internal/auth/models"
	id "admissio/pkg/domain"
	"admissio/pkg/platform/sentinel"
	txcontext "admissio/pkg/platform/tx"
)

// Postgres persists credential records. Pure I/O; uniqueness comes from the
// unique index on email and is reported as sentinel.ErrAlreadyExists.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const principalColumns = `id, email, password_hash, role, name, date_of_birth, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, principal *models.Principal) error {
	query := `
		INSERT INTO principal (` + principalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := txcontext.QuerierFrom(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(principal.ID),
		models.NormalizeEmail(principal.Email),
		principal.PasswordHash,
		string(principal.Role),
		principal.Name,
		principal.DateOfBirth,
		principal.CreatedAt,
		principal.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("create principal: %w", err)
	}
	return nil
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principal WHERE email = $1`
	return s.scanOne(txcontext.QuerierFrom(ctx, s.db).QueryRowContext(ctx, query, models.NormalizeEmail(email)))
}

func (s *Postgres) FindByID(ctx context.Context, principalID id.PrincipalID) (*models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principal WHERE id = $1`
	return s.scanOne(txcontext.QuerierFrom(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(principalID)))
}

func (s *Postgres) Update(ctx context.Context, principal *models.Principal) error {
	query := `
		UPDATE principal
		SET password_hash = $2, name = $3, date_of_birth = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := txcontext.QuerierFrom(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(principal.ID),
		principal.PasswordHash,
		principal.Name,
		principal.DateOfBirth,
		principal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update principal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update principal: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) scanOne(row *sql.Row) (*models.Principal, error) {
	var principal models.Principal
	var principalID uuid.UUID
	var role string
	err := row.Scan(
		&principalID,
		&principal.Email,
		&principal.PasswordHash,
		&role,
		&principal.Name,
		&principal.DateOfBirth,
		&principal.CreatedAt,
		&principal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan principal: %w", err)
	}
	principal.ID = id.PrincipalID(principalID)
	principal.Role = id.Role(role)
	return &principal, nil
}
