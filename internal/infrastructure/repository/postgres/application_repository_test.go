package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/avansign/avansign/internal/core/domain"
)

func newAppRepoWithMock(t *testing.T) (*ApplicationRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ApplicationRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetByClientIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newAppRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, name, client_id, client_secret").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByClientID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByClientIDRestoresOrigins(t *testing.T) {
	repo, mock, done := newAppRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "client_id", "client_secret", "origins", "created_at", "updated_at"}).
		AddRow("app-1", "portal", "cid-1", "secret", []byte(`["https://portal.example.com"]`), now, now)
	mock.ExpectQuery("SELECT id, name, client_id, client_secret").
		WithArgs("cid-1").
		WillReturnRows(rows)

	app, err := repo.GetByClientID(context.Background(), "cid-1")
	if err != nil {
		t.Fatalf("GetByClientID() error = %v", err)
	}
	if len(app.Origins) != 1 || app.Origins[0] != "https://portal.example.com" {
		t.Fatalf("origins not restored: %+v", app.Origins)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateOriginsReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newAppRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE applications").
		WithArgs("missing", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateOrigins(context.Background(), "missing", []string{"https://a.example.com"})
	if !domain.IsKind(err, domain.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
