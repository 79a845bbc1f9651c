package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/avansign/avansign/internal/core/domain"
)

func TestVerifyRecordsOneSuccessEntry(t *testing.T) {
	provider := &fakeProvider{}
	audit := &fakeAudit{}
	uc := NewPassthroughUseCase(provider, audit)

	result, err := uc.Verify(context.Background(), []byte("%PDF"), "", domain.Actor{AppID: "app-1"})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid result")
	}
	if len(audit.entries) != 1 || audit.entries[0].EventType != domain.EventSuccess {
		t.Fatalf("expected one success entry, got %+v", audit.entries)
	}
}

func TestVerifyWrapsProviderFailure(t *testing.T) {
	provider := &fakeProvider{
		verifyFn: func(domain.VerifyRequest) (*domain.VerifyResult, error) {
			return nil, domain.WrapError(domain.ErrPermanent, "provider verify", errors.New("not a pdf"))
		},
	}
	audit := &fakeAudit{}
	uc := NewPassthroughUseCase(provider, audit)

	_, err := uc.Verify(context.Background(), []byte("junk"), "", domain.Actor{})
	if !domain.IsKind(err, domain.ErrVerification) {
		t.Fatalf("expected ErrVerification, got %v", err)
	}
	if len(audit.entries) != 1 || audit.entries[0].EventType != domain.EventGeneralFailure {
		t.Fatalf("expected one general_failure entry, got %+v", audit.entries)
	}
}

func TestSealOTPRejectionRecordsPassphraseFailed(t *testing.T) {
	provider := &fakeProvider{
		sealErr: domain.WrapError(domain.ErrAuthFailure, "provider seal", errors.New("otp rejected")),
	}
	audit := &fakeAudit{}
	uc := NewPassthroughUseCase(provider, audit)

	_, err := uc.Refresh(context.Background(), "sub-1", "000000", domain.Actor{AppID: "app-1"})
	if !domain.IsKind(err, domain.ErrAuthFailure) {
		t.Fatalf("expected ErrAuthFailure, got %v", err)
	}
	if len(audit.entries) != 1 || audit.entries[0].EventType != domain.EventPassphraseFailed {
		t.Fatalf("expected one passphrase_failed entry, got %+v", audit.entries)
	}
}

func TestUserStatusCarriesGovtIDIntoAudit(t *testing.T) {
	provider := &fakeProvider{}
	audit := &fakeAudit{}
	uc := NewPassthroughUseCase(provider, audit)

	status, err := uc.CheckStatus(context.Background(), domain.OTPRequest{GovtID: "1111"}, domain.Actor{AppID: "app-1"})
	if err != nil {
		t.Fatalf("CheckStatus() error = %v", err)
	}
	if !status.Registered {
		t.Fatalf("expected registered status")
	}
	if len(audit.entries) != 1 || audit.entries[0].GovtID != "1111" {
		t.Fatalf("audit entry missing govt id: %+v", audit.entries)
	}
}

func TestSealRecordsOneEntryPerCall(t *testing.T) {
	provider := &fakeProvider{}
	audit := &fakeAudit{}
	uc := NewPassthroughUseCase(provider, audit)

	result, err := uc.Seal(context.Background(), domain.SealRequest{
		SubscriberID: "sub-1",
		OTP:          "123456",
		FileCount:    1,
		PDF:          []byte("%PDF"),
	}, domain.Actor{AppID: "app-1"})
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if len(result.SealedPDF) == 0 {
		t.Fatalf("expected sealed bytes")
	}
	if len(audit.entries) != 1 || audit.entries[0].EventType != domain.EventSuccess {
		t.Fatalf("expected one success entry, got %+v", audit.entries)
	}
}

func TestAuditAppendFailureSurfaces(t *testing.T) {
	provider := &fakeProvider{}
	audit := &fakeAudit{appendErr: errors.New("log store down")}
	uc := NewPassthroughUseCase(provider, audit)

	if _, err := uc.FetchSigningOTP(context.Background(), domain.OTPRequest{GovtID: "1111"}, domain.Actor{}); err == nil {
		t.Fatalf("expected error when audit append fails")
	}
}
