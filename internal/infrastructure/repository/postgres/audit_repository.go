package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avansign/avansign/internal/core/domain"
)

// AuditRepository is append-only; entries are never updated or deleted.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO audit_log (id, document_id, govt_id, app_id, app_user_id, event_type, message, ts)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		entry.ID, nullable(entry.DocumentID), nullable(entry.GovtID), nullable(entry.AppID),
		nullable(entry.AppUserID), string(entry.EventType), entry.Message, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, govt_id, app_id, app_user_id, event_type, message, ts
FROM audit_log
WHERE document_id = $1
ORDER BY ts
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		var docID, govtID, appID, appUserID sql.NullString
		var eventType string
		if err := rows.Scan(&entry.ID, &docID, &govtID, &appID, &appUserID, &eventType, &entry.Message, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.DocumentID = docID.String
		entry.GovtID = govtID.String
		entry.AppID = appID.String
		entry.AppUserID = appUserID.String
		entry.EventType = domain.EventType(eventType)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
