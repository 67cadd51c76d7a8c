package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "admissio/pkg/domain"
	txcontext "admissio/pkg/platform/tx"
)

// PostgresStore persists audit events in the audit_event table. Pure I/O;
// enrichment happens in the publisher.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_event (id, category, occurred_at, principal_id, action, subject, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := txcontext.QuerierFrom(ctx, s.db).ExecContext(ctx, query,
		uuid.New(),
		string(event.Category),
		event.Timestamp,
		uuid.UUID(event.PrincipalID),
		string(event.Action),
		event.Subject,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByPrincipal(ctx context.Context, principalID id.PrincipalID) ([]Event, error) {
	query := `
		SELECT category, occurred_at, principal_id, action, subject, reason, request_id
		FROM audit_event
		WHERE principal_id = $1
		ORDER BY occurred_at
	`
	rows, err := txcontext.QuerierFrom(ctx, s.db).QueryContext(ctx, query, uuid.UUID(principalID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		var category, action string
		var principal uuid.UUID
		if err := rows.Scan(&category, &event.Timestamp, &principal, &action, &event.Subject, &event.Reason, &event.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = EventCategory(category)
		event.Action = Action(action)
		event.PrincipalID = id.PrincipalID(principal)
		events = append(events, event)
	}
	return events, rows.Err()
}
