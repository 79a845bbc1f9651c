package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("invalid input")
	ErrInvalidSignerCount = errors.New("invalid signer count")

	ErrMissingCredentials   = errors.New("missing credentials")
	ErrMalformedCredentials = errors.New("malformed credentials")
	ErrInvalidCredentials   = errors.New("invalid credentials")

	// ErrAuthFailure is a provider-side rejection of the supplied
	// passphrase or OTP; the caller may resubmit auth material.
	ErrAuthFailure = errors.New("authentication failure")
	ErrTransient   = errors.New("temporary failure")
	ErrPermanent   = errors.New("permanent failure")

	ErrDocumentNotFound    = errors.New("document not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrDocumentNotPending  = errors.New("document not pending")
	ErrUnknownSigner       = errors.New("unknown signer")
	ErrOutOfOrder          = errors.New("signer out of order")
	ErrConflict            = errors.New("concurrent update conflict")

	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrVerification       = errors.New("verification failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
