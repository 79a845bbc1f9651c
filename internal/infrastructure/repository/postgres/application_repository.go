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

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	originsJSON, err := json.Marshal(app.Origins)
	if err != nil {
		return fmt.Errorf("marshal origins: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO applications (id, name, client_id, client_secret, origins, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, app.ID, app.Name, app.ClientID, app.ClientSecret, originsJSON, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) GetByClientID(ctx context.Context, clientID string) (*domain.Application, error) {
	return r.getByField(ctx, "client_id", clientID)
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	return r.getByField(ctx, "id", id)
}

func (r *ApplicationRepository) getByField(ctx context.Context, field, value string) (*domain.Application, error) {
	query := fmt.Sprintf(`
SELECT id, name, client_id, client_secret, origins, created_at, updated_at
FROM applications
WHERE %s = $1
`, field)
	row := r.db.QueryRowContext(ctx, query, value)

	var app domain.Application
	var originsRaw []byte
	err := row.Scan(&app.ID, &app.Name, &app.ClientID, &app.ClientSecret, &originsRaw, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrApplicationNotFound, "get application",
				fmt.Errorf("%s=%s", field, value))
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}
	if err := json.Unmarshal(originsRaw, &app.Origins); err != nil {
		return nil, fmt.Errorf("unmarshal origins: %w", err)
	}
	return &app, nil
}

// UpdateOrigins is the only mutation an application supports after
// registration.
func (r *ApplicationRepository) UpdateOrigins(ctx context.Context, id string, origins []string) error {
	originsJSON, err := json.Marshal(origins)
	if err != nil {
		return fmt.Errorf("marshal origins: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE applications
SET origins = $2, updated_at = $3
WHERE id = $1
`, id, originsJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update application origins: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update origins rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrApplicationNotFound, "update application origins",
			fmt.Errorf("id=%s", id))
	}
	return nil
}
