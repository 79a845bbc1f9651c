package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avansign/avansign/internal/core/domain"
	"github.com/avansign/avansign/internal/core/ports"
)

// PassthroughUseCase covers the stateless provider calls: verification,
// the seal lifecycle and user management. Each call records exactly one
// audit entry, written before the result is returned.
type PassthroughUseCase struct {
	provider ports.SignatureProvider
	audit    ports.AuditLog
}

func NewPassthroughUseCase(provider ports.SignatureProvider, audit ports.AuditLog) *PassthroughUseCase {
	return &PassthroughUseCase{provider: provider, audit: audit}
}

func (uc *PassthroughUseCase) Verify(ctx context.Context, pdf []byte, password string, actor domain.Actor) (*domain.VerifyResult, error) {
	result, err := uc.provider.Verify(ctx, domain.VerifyRequest{PDF: pdf, Password: password})
	if auditErr := uc.recordOutcome(ctx, actor, "", "pdf verification", err); auditErr != nil {
		return nil, auditErr
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrVerification, "verify pdf", err)
	}
	return result, nil
}

func (uc *PassthroughUseCase) Activate(ctx context.Context, subscriberID string, actor domain.Actor) (*domain.SealActivation, error) {
	result, err := uc.provider.ActivateSeal(ctx, subscriberID)
	if auditErr := uc.recordOutcome(ctx, actor, "", "seal activation", err); auditErr != nil {
		return nil, auditErr
	}
	return result, err
}

func (uc *PassthroughUseCase) Refresh(ctx context.Context, subscriberID, otp string, actor domain.Actor) (*domain.SealActivation, error) {
	result, err := uc.provider.RefreshSeal(ctx, subscriberID, otp)
	if auditErr := uc.recordOutcome(ctx, actor, "", "seal refresh", err); auditErr != nil {
		return nil, auditErr
	}
	return result, err
}

func (uc *PassthroughUseCase) Revoke(ctx context.Context, subscriberID, otp string, actor domain.Actor) (*domain.SealActivation, error) {
	result, err := uc.provider.RevokeSeal(ctx, subscriberID, otp)
	if auditErr := uc.recordOutcome(ctx, actor, "", "seal revocation", err); auditErr != nil {
		return nil, auditErr
	}
	return result, err
}

func (uc *PassthroughUseCase) Seal(ctx context.Context, req domain.SealRequest, actor domain.Actor) (*domain.SealResult, error) {
	result, err := uc.provider.Seal(ctx, req)
	if auditErr := uc.recordOutcome(ctx, actor, "", "pdf sealing", err); auditErr != nil {
		return nil, auditErr
	}
	return result, err
}

func (uc *PassthroughUseCase) FetchOTP(ctx context.Context, subscriberID string, fileCount int, otp string, actor domain.Actor) (*domain.OTPResult, error) {
	result, err := uc.provider.FetchSealOTP(ctx, subscriberID, fileCount, otp)
	if auditErr := uc.recordOutcome(ctx, actor, "", "seal otp issuance", err); auditErr != nil {
		return nil, auditErr
	}
	return result, err
}

func (uc *PassthroughUseCase) CheckStatus(ctx context.Context, req domain.OTPRequest, actor domain.Actor) (*domain.UserStatus, error) {
	result, err := uc.provider.CheckUserStatus(ctx, req)
	if auditErr := uc.recordOutcome(ctx, actor, req.GovtID, "user status check", err); auditErr != nil {
		return nil, auditErr
	}
	return result, err
}

func (uc *PassthroughUseCase) Register(ctx context.Context, req domain.RegisterUserRequest, actor domain.Actor) (*domain.UserStatus, error) {
	result, err := uc.provider.RegisterUser(ctx, req)
	if auditErr := uc.recordOutcome(ctx, actor, "", "user registration", err); auditErr != nil {
		return nil, auditErr
	}
	return result, err
}

func (uc *PassthroughUseCase) FetchSigningOTP(ctx context.Context, req domain.OTPRequest, actor domain.Actor) (*domain.OTPResult, error) {
	result, err := uc.provider.FetchOTP(ctx, req)
	if auditErr := uc.recordOutcome(ctx, actor, req.GovtID, "signing otp issuance", err); auditErr != nil {
		return nil, auditErr
	}
	return result, err
}

func (uc *PassthroughUseCase) recordOutcome(ctx context.Context, actor domain.Actor, govtID, operation string, err error) error {
	entry := &domain.AuditEntry{
		ID:        uuid.NewString(),
		GovtID:    govtID,
		AppID:     actor.AppID,
		AppUserID: actor.UserID,
		Timestamp: time.Now().UTC(),
	}
	switch {
	case err == nil:
		entry.EventType = domain.EventSuccess
		entry.Message = operation
	case domain.IsKind(err, domain.ErrAuthFailure):
		entry.EventType = domain.EventPassphraseFailed
		entry.Message = fmt.Sprintf("%s: otp rejected", operation)
	default:
		entry.EventType = domain.EventGeneralFailure
		entry.Message = fmt.Sprintf("%s: %v", operation, err)
	}
	if appendErr := uc.audit.Append(ctx, entry); appendErr != nil {
		return fmt.Errorf("append audit entry: %w", appendErr)
	}
	return nil
}
