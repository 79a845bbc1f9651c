package ports

import (
	"context"
	"io"

	"github.com/avansign/avansign/internal/core/domain"
)

// ApplicationRepository persists registered API callers.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByClientID(ctx context.Context, clientID string) (*domain.Application, error)
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	UpdateOrigins(ctx context.Context, id string, origins []string) error
}

// DocumentRepository persists documents with their embedded signer
// lists. Update performs an atomic compare-and-swap on the document
// version and fails with domain.ErrConflict when the stored version has
// moved.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	Update(ctx context.Context, doc *domain.Document) error
	ListByStatus(ctx context.Context, status domain.DocumentStatus, limit int) ([]domain.Document, error)
}

// AuditLog is the append-only record of signing attempts.
type AuditLog interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	ListByDocument(ctx context.Context, documentID string) ([]domain.AuditEntry, error)
}

// ObjectStorage stores raw and signed PDF bytes.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data io.Reader, size int64) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// SignatureProvider is the remote signing/sealing service. Calls are
// single request/response with no retained state; errors are normalized
// into domain.ErrAuthFailure, domain.ErrTransient or domain.ErrPermanent.
type SignatureProvider interface {
	FetchOTP(ctx context.Context, req domain.OTPRequest) (*domain.OTPResult, error)
	Sign(ctx context.Context, req domain.SignRequest) (*domain.SignResult, error)
	ActivateSeal(ctx context.Context, subscriberID string) (*domain.SealActivation, error)
	RefreshSeal(ctx context.Context, subscriberID, otp string) (*domain.SealActivation, error)
	RevokeSeal(ctx context.Context, subscriberID, otp string) (*domain.SealActivation, error)
	FetchSealOTP(ctx context.Context, subscriberID string, fileCount int, otp string) (*domain.OTPResult, error)
	Seal(ctx context.Context, req domain.SealRequest) (*domain.SealResult, error)
	CheckUserStatus(ctx context.Context, req domain.OTPRequest) (*domain.UserStatus, error)
	RegisterUser(ctx context.Context, req domain.RegisterUserRequest) (*domain.UserStatus, error)
	Verify(ctx context.Context, req domain.VerifyRequest) (*domain.VerifyResult, error)
}

// EventPublisher broadcasts document lifecycle events to integrators.
type EventPublisher interface {
	PublishDocumentEvent(ctx context.Context, event domain.DocumentEvent) error
}

// DocumentInspector validates uploaded PDF bytes.
type DocumentInspector interface {
	Inspect(pdf []byte) (*domain.PDFInfo, error)
}
