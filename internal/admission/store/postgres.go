package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"admissio/internal/admission/models"
	id "admissio/pkg/domain"
	"admissio/pkg/platform/sentinel"
)

const applicationColumns = `id, student_id, course_id, address, percentage, state, version, submitted_at, decided_at, created_at, updated_at`

// Postgres persists admission aggregates. Every Update commits the version
// check and all child rows in one transaction, so readers never observe a
// partially applied transition.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO application (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(app.ID),
		uuid.UUID(app.StudentID),
		uuid.UUID(app.CourseID),
		app.Address,
		app.Percentage,
		string(app.State),
		app.Version,
		app.SubmittedAt,
		app.DecidedAt,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// Update writes the aggregate guarded by `WHERE version = expectedVersion`.
// Zero rows affected means either a missing row or a lost race; the follow-up
// read tells them apart.
func (s *Postgres) Update(ctx context.Context, app *models.Application, expectedVersion int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE application
		SET address = $3, percentage = $4, state = $5, version = $6,
		    submitted_at = $7, decided_at = $8, updated_at = $9
		WHERE id = $1 AND version = $2
	`,
		uuid.UUID(app.ID),
		expectedVersion,
		app.Address,
		app.Percentage,
		string(app.State),
		app.Version,
		app.SubmittedAt,
		app.DecidedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM application WHERE id = $1)`, uuid.UUID(app.ID)).Scan(&exists); err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrVersionMismatch
	}

	if err := syncChildren(ctx, tx, app); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

func syncChildren(ctx context.Context, tx *sql.Tx, app *models.Application) error {
	for _, doc := range app.Documents {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO document (id, application_id, doc_type, blob_reference, uploaded_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (application_id, doc_type) DO NOTHING
		`, uuid.UUID(doc.ID), uuid.UUID(doc.ApplicationID), doc.Type, doc.BlobReference, doc.UploadedAt)
		if err != nil {
			return fmt.Errorf("sync document: %w", err)
		}
	}

	if app.Payment != nil {
		p := app.Payment
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payment (id, application_id, method, fee_cents, transaction_id, status, recorded_at, settled_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (application_id) DO UPDATE
			SET id = EXCLUDED.id, method = EXCLUDED.method, fee_cents = EXCLUDED.fee_cents,
			    transaction_id = EXCLUDED.transaction_id, status = EXCLUDED.status,
			    recorded_at = EXCLUDED.recorded_at, settled_at = EXCLUDED.settled_at
		`, uuid.UUID(p.ID), uuid.UUID(p.ApplicationID), p.Method, p.FeeCents, p.TransactionID, string(p.Status), p.RecordedAt, p.SettledAt)
		if err != nil {
			return fmt.Errorf("sync payment: %w", err)
		}
	}

	if app.Review != nil {
		r := app.Review
		_, err := tx.ExecContext(ctx, `
			INSERT INTO review_record (id, application_id, officer_id, recorded_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING
		`, uuid.UUID(r.ID), uuid.UUID(r.ApplicationID), uuid.UUID(r.OfficerID), r.RecordedAt)
		if err != nil {
			return fmt.Errorf("sync review record: %w", err)
		}
	}

	if app.Status != nil {
		st := app.Status
		_, err := tx.ExecContext(ctx, `
			INSERT INTO app_status (id, application_id, officer_id, review, status, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`, uuid.UUID(st.ID), uuid.UUID(st.ApplicationID), uuid.UUID(st.OfficerID), st.Review, string(st.Status), st.RecordedAt)
		if err != nil {
			return fmt.Errorf("sync app status: %w", err)
		}
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM application WHERE id = $1`
	app, err := scanApplication(s.db.QueryRowContext(ctx, query, uuid.UUID(applicationID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	if err := s.loadChildren(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *Postgres) FindByPaymentID(ctx context.Context, paymentID id.PaymentID) (*models.Application, error) {
	var applicationID uuid.UUID
	query := `SELECT application_id FROM payment WHERE id = $1`
	if err := s.db.QueryRowContext(ctx, query, uuid.UUID(paymentID)).Scan(&applicationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return s.FindByID(ctx, id.ApplicationID(applicationID))
}

func (s *Postgres) FindByStudent(ctx context.Context, studentID id.PrincipalID) ([]*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM application WHERE student_id = $1 ORDER BY created_at, id`
	return s.findMany(ctx, query, uuid.UUID(studentID))
}

func (s *Postgres) FindAll(ctx context.Context) ([]*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM application ORDER BY created_at, id`
	return s.findMany(ctx, query)
}

func (s *Postgres) findMany(ctx context.Context, query string, args ...any) ([]*models.Application, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, app := range out {
		if err := s.loadChildren(ctx, app); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(row scanner) (*models.Application, error) {
	var app models.Application
	var appID, studentID, courseID uuid.UUID
	var state string
	if err := row.Scan(&appID, &studentID, &courseID, &app.Address, &app.Percentage, &state, &app.Version,
		&app.SubmittedAt, &app.DecidedAt, &app.CreatedAt, &app.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}
	app.ID = id.ApplicationID(appID)
	app.StudentID = id.PrincipalID(studentID)
	app.CourseID = id.CourseID(courseID)
	app.State = models.State(state)
	return &app, nil
}

func (s *Postgres) loadChildren(ctx context.Context, app *models.Application) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, doc_type, blob_reference, uploaded_at
		FROM document WHERE application_id = $1 ORDER BY uploaded_at, id
	`, uuid.UUID(app.ID))
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var doc models.Document
		var docID uuid.UUID
		if err := rows.Scan(&docID, &doc.Type, &doc.BlobReference, &doc.UploadedAt); err != nil {
			return fmt.Errorf("scan document: %w", err)
		}
		doc.ID = id.DocumentID(docID)
		doc.ApplicationID = app.ID
		app.Documents = append(app.Documents, doc)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var payment models.Payment
	var paymentID uuid.UUID
	var paymentStatus string
	err = s.db.QueryRowContext(ctx, `
		SELECT id, method, fee_cents, transaction_id, status, recorded_at, settled_at
		FROM payment WHERE application_id = $1
	`, uuid.UUID(app.ID)).Scan(&paymentID, &payment.Method, &payment.FeeCents, &payment.TransactionID,
		&paymentStatus, &payment.RecordedAt, &payment.SettledAt)
	switch {
	case err == nil:
		payment.ID = id.PaymentID(paymentID)
		payment.ApplicationID = app.ID
		payment.Status = models.PaymentStatus(paymentStatus)
		app.Payment = &payment
	case errors.Is(err, sql.ErrNoRows):
	default:
		return fmt.Errorf("load payment: %w", err)
	}

	var review models.ReviewRecord
	var reviewID, reviewOfficer uuid.UUID
	err = s.db.QueryRowContext(ctx, `
		SELECT id, officer_id, recorded_at
		FROM review_record WHERE application_id = $1
	`, uuid.UUID(app.ID)).Scan(&reviewID, &reviewOfficer, &review.RecordedAt)
	switch {
	case err == nil:
		review.ID = id.ReviewID(reviewID)
		review.ApplicationID = app.ID
		review.OfficerID = id.PrincipalID(reviewOfficer)
		app.Review = &review
	case errors.Is(err, sql.ErrNoRows):
	default:
		return fmt.Errorf("load review record: %w", err)
	}

	var status models.AppStatus
	var statusID, statusOfficer uuid.UUID
	var decided string
	err = s.db.QueryRowContext(ctx, `
		SELECT id, officer_id, review, status, recorded_at
		FROM app_status WHERE application_id = $1
	`, uuid.UUID(app.ID)).Scan(&statusID, &statusOfficer, &status.Review, &decided, &status.RecordedAt)
	switch {
	case err == nil:
		status.ID = id.StatusID(statusID)
		status.ApplicationID = app.ID
		status.OfficerID = id.PrincipalID(statusOfficer)
		status.Status = models.State(decided)
		app.Status = &status
	case errors.Is(err, sql.ErrNoRows):
	default:
		return fmt.Errorf("load app status: %w", err)
	}
	return nil
}
