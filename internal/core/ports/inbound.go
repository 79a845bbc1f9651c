package ports

import (
	"context"

	"github.com/avansign/avansign/internal/core/domain"
)

// SubmitRequest carries everything needed to create a signing job.
type SubmitRequest struct {
	Name          string
	Number        string
	Description   string
	SigningMode   domain.SigningMode
	Visualization domain.Visualization
	Signers       []domain.SignerSpec
	PDF           []byte
	Actor         domain.Actor
}

type SignatureRequest struct {
	DocumentID string
	GovtID     string
	Auth       domain.AuthMaterial
	Actor      domain.Actor
}

// DocumentWorkflow is the inbound contract for the signing lifecycle.
type DocumentWorkflow interface {
	Submit(ctx context.Context, req SubmitRequest) (*domain.Document, error)
	ProcessSignature(ctx context.Context, req SignatureRequest) (*domain.Document, error)
	Cancel(ctx context.Context, documentID string, actor domain.Actor) (*domain.Document, error)
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// Verifier checks a signed PDF without touching stored documents.
type Verifier interface {
	Verify(ctx context.Context, pdf []byte, password string, actor domain.Actor) (*domain.VerifyResult, error)
}

// SealManager drives the organizational seal lifecycle.
type SealManager interface {
	Activate(ctx context.Context, subscriberID string, actor domain.Actor) (*domain.SealActivation, error)
	Refresh(ctx context.Context, subscriberID, otp string, actor domain.Actor) (*domain.SealActivation, error)
	Revoke(ctx context.Context, subscriberID, otp string, actor domain.Actor) (*domain.SealActivation, error)
	FetchOTP(ctx context.Context, subscriberID string, fileCount int, otp string, actor domain.Actor) (*domain.OTPResult, error)
	Seal(ctx context.Context, req domain.SealRequest, actor domain.Actor) (*domain.SealResult, error)
}

// UserDirectory proxies provider user management.
type UserDirectory interface {
	CheckStatus(ctx context.Context, req domain.OTPRequest, actor domain.Actor) (*domain.UserStatus, error)
	Register(ctx context.Context, req domain.RegisterUserRequest, actor domain.Actor) (*domain.UserStatus, error)
	FetchSigningOTP(ctx context.Context, req domain.OTPRequest, actor domain.Actor) (*domain.OTPResult, error)
}
