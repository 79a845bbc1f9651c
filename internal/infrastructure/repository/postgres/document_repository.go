package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avansign/avansign/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	signersJSON, err := json.Marshal(doc.Signers)
	if err != nil {
		return fmt.Errorf("marshal signers: %w", err)
	}
	visJSON, err := json.Marshal(doc.Visualization)
	if err != nil {
		return fmt.Errorf("marshal visualization: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, name, number, description, created_by_app_id, created_by_name,
	status, signing_mode, visualization, signers,
	pdf_ref, working_ref, signed_pdf_ref, version, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
`,
		doc.ID, doc.Name, doc.Number, doc.Description, doc.CreatedBy.AppID, doc.CreatedBy.Name,
		string(doc.Status), string(doc.SigningMode), visJSON, signersJSON,
		doc.PDFRef, doc.WorkingRef, doc.SignedPDFRef, doc.Version, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, number, description, created_by_app_id, created_by_name,
	status, signing_mode, visualization, signers,
	pdf_ref, working_ref, signed_pdf_ref, version, created_at, updated_at
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

// Update writes the document back with a compare-and-swap on version so
// the embedded signer list and the status move atomically. A version
// mismatch surfaces as domain.ErrConflict.
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	signersJSON, err := json.Marshal(doc.Signers)
	if err != nil {
		return fmt.Errorf("marshal signers: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, signers = $3, working_ref = $4, signed_pdf_ref = $5,
	version = version + 1, updated_at = $6
WHERE id = $1 AND version = $7
`, doc.ID, string(doc.Status), signersJSON, doc.WorkingRef, doc.SignedPDFRef, time.Now().UTC(), doc.Version)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrConflict, "update document",
			fmt.Errorf("id=%s version=%d", doc.ID, doc.Version))
	}
	doc.Version++
	return nil
}

func (r *DocumentRepository) ListByStatus(ctx context.Context, status domain.DocumentStatus, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, number, description, created_by_app_id, created_by_name,
	status, signing_mode, visualization, signers,
	pdf_ref, working_ref, signed_pdf_ref, version, created_at, updated_at
FROM documents
WHERE status = $1
ORDER BY created_at DESC
LIMIT $2
`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("query documents by status: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document rows: %w", err)
	}
	return docs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var visRaw, signersRaw []byte
	var status, mode string
	var number, createdByName, workingRef, signedRef sql.NullString

	err := row.Scan(
		&doc.ID, &doc.Name, &number, &doc.Description, &doc.CreatedBy.AppID, &createdByName,
		&status, &mode, &visRaw, &signersRaw,
		&doc.PDFRef, &workingRef, &signedRef, &doc.Version, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(visRaw, &doc.Visualization); err != nil {
		return nil, fmt.Errorf("unmarshal visualization: %w", err)
	}
	if err := json.Unmarshal(signersRaw, &doc.Signers); err != nil {
		return nil, fmt.Errorf("unmarshal signers: %w", err)
	}
	doc.Number = number.String
	doc.CreatedBy.Name = createdByName.String
	doc.WorkingRef = workingRef.String
	doc.SignedPDFRef = signedRef.String
	doc.Status = domain.DocumentStatus(status)
	doc.SigningMode = domain.SigningMode(mode)
	return &doc, nil
}
