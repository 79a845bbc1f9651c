package httpadapter

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/avansign/avansign/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrValidation),
		domain.IsKind(err, domain.ErrInvalidSignerCount):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrMissingCredentials),
		domain.IsKind(err, domain.ErrMalformedCredentials),
		domain.IsKind(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrAuthFailure),
		domain.IsKind(err, domain.ErrVerification):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrDocumentNotFound),
		domain.IsKind(err, domain.ErrApplicationNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrDocumentNotPending),
		domain.IsKind(err, domain.ErrOutOfOrder),
		domain.IsKind(err, domain.ErrUnknownSigner),
		domain.IsKind(err, domain.ErrConflict):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrTransient),
		domain.IsKind(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrPermanent):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorKind(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidSignerCount):
		return "invalid_signer_count"
	case domain.IsKind(err, domain.ErrValidation):
		return "validation_error"
	case domain.IsKind(err, domain.ErrMissingCredentials):
		return "missing_credentials"
	case domain.IsKind(err, domain.ErrMalformedCredentials):
		return "malformed_credentials"
	case domain.IsKind(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case domain.IsKind(err, domain.ErrAuthFailure):
		return "auth_failure"
	case domain.IsKind(err, domain.ErrVerification):
		return "verification_error"
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return "document_not_found"
	case domain.IsKind(err, domain.ErrApplicationNotFound):
		return "application_not_found"
	case domain.IsKind(err, domain.ErrDocumentNotPending):
		return "document_not_pending"
	case domain.IsKind(err, domain.ErrUnknownSigner):
		return "unknown_signer"
	case domain.IsKind(err, domain.ErrOutOfOrder):
		return "out_of_order"
	case domain.IsKind(err, domain.ErrConflict):
		return "conflict"
	case domain.IsKind(err, domain.ErrTransient):
		return "transient"
	case domain.IsKind(err, domain.ErrStorageUnavailable):
		return "storage_unavailable"
	case domain.IsKind(err, domain.ErrPermanent):
		return "permanent_failure"
	default:
		return "internal_error"
	}
}

func logAuditFailure(ctx context.Context, err error) {
	slog.Error("audit_append_failed", "request_id", requestIDFromContext(ctx), "error", err)
}
