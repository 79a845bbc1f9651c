package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avansign/avansign/internal/core/domain"
	"github.com/avansign/avansign/internal/core/ports"
)

// WorkflowUseCase is the document lifecycle engine. Every operation that
// reaches the signature provider records exactly one audit entry, and
// audit entries are written before document state is persisted so they
// survive a crash between the two steps.
type WorkflowUseCase struct {
	docs       ports.DocumentRepository
	storage    ports.ObjectStorage
	provider   ports.SignatureProvider
	audit      ports.AuditLog
	events     ports.EventPublisher
	inspector  ports.DocumentInspector
	locks      *docLocks
	sequential bool
}

func NewWorkflowUseCase(
	docs ports.DocumentRepository,
	storage ports.ObjectStorage,
	provider ports.SignatureProvider,
	audit ports.AuditLog,
	events ports.EventPublisher,
	inspector ports.DocumentInspector,
	sequential bool,
) *WorkflowUseCase {
	return &WorkflowUseCase{
		docs:       docs,
		storage:    storage,
		provider:   provider,
		audit:      audit,
		events:     events,
		inspector:  inspector,
		locks:      newDocLocks(),
		sequential: sequential,
	}
}

func (uc *WorkflowUseCase) Submit(ctx context.Context, req ports.SubmitRequest) (*domain.Document, error) {
	signers, err := uc.validateSubmit(req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(req.Name),
		Number:        domain.NormalizeNumber(req.Number),
		Description:   strings.TrimSpace(req.Description),
		CreatedBy:     domain.CreatedBy{AppID: req.Actor.AppID, Name: req.Actor.AppName},
		Status:        domain.StatusPending,
		SigningMode:   req.SigningMode,
		Visualization: req.Visualization,
		Signers:       signers,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	doc.PDFRef = fmt.Sprintf("documents/%s/source.pdf", doc.ID)

	if err := uc.appendAudit(ctx, &domain.AuditEntry{
		DocumentID: doc.ID,
		AppID:      req.Actor.AppID,
		AppUserID:  req.Actor.UserID,
		EventType:  domain.EventAttempt,
		Message:    fmt.Sprintf("document submitted: %s", doc.Name),
	}); err != nil {
		return nil, err
	}

	if err := uc.storage.Put(ctx, doc.PDFRef, bytes.NewReader(req.PDF), int64(len(req.PDF))); err != nil {
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "store source pdf", err)
	}
	if err := uc.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	uc.publish(ctx, domain.DocumentEvent{
		Type:       domain.DocumentSubmitted,
		DocumentID: doc.ID,
		AppID:      req.Actor.AppID,
		At:         now,
	})
	return doc, nil
}

func (uc *WorkflowUseCase) validateSubmit(req ports.SubmitRequest) ([]domain.Signer, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domain.WrapError(domain.ErrValidation, "validate submission", errors.New("document name is required"))
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, domain.WrapError(domain.ErrValidation, "validate submission", errors.New("description is required"))
	}
	if req.SigningMode != domain.ModeSingle && req.SigningMode != domain.ModeMultiple {
		return nil, domain.WrapError(domain.ErrValidation, "validate submission",
			fmt.Errorf("unknown signing mode %q", req.SigningMode))
	}
	if len(req.PDF) == 0 {
		return nil, domain.WrapError(domain.ErrValidation, "validate submission", errors.New("pdf file is required"))
	}

	signers, err := domain.NewSigners(req.SigningMode, req.Signers)
	if err != nil {
		return nil, err
	}

	info, err := uc.inspector.Inspect(req.PDF)
	if err != nil {
		return nil, domain.WrapError(domain.ErrValidation, "inspect pdf", err)
	}

	vis := req.Visualization
	switch vis.Visibility {
	case domain.VisibilityInvisible:
	case domain.VisibilityVisible:
		if vis.ImageBase64 == "" {
			return nil, domain.WrapError(domain.ErrValidation, "validate submission",
				errors.New("visible signature requires an image"))
		}
		if vis.Page < 1 || vis.Page > info.Pages {
			return nil, domain.WrapError(domain.ErrValidation, "validate submission",
				fmt.Errorf("signature page %d outside document (%d pages)", vis.Page, info.Pages))
		}
		if vis.Width <= 0 || vis.Height <= 0 {
			return nil, domain.WrapError(domain.ErrValidation, "validate submission",
				errors.New("visible signature requires positive width and height"))
		}
	default:
		return nil, domain.WrapError(domain.ErrValidation, "validate submission",
			fmt.Errorf("unknown visibility %q", vis.Visibility))
	}

	return signers, nil
}

func (uc *WorkflowUseCase) ProcessSignature(ctx context.Context, req ports.SignatureRequest) (*domain.Document, error) {
	release := uc.locks.Acquire(req.DocumentID)
	defer release()

	doc, err := uc.docs.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.StatusPending {
		return nil, domain.WrapError(domain.ErrDocumentNotPending, "process signature",
			fmt.Errorf("document %s is %s", doc.ID, doc.Status))
	}

	alreadySigned, err := doc.CheckSignable(req.GovtID, uc.sequential)
	if err != nil {
		return nil, err
	}
	if alreadySigned {
		// Retry-safe no-op: the earlier success entry stands alone.
		return doc, nil
	}

	source, err := uc.readPDF(ctx, doc.SourceRef())
	if err != nil {
		auditErr := uc.appendAudit(ctx, uc.outcomeEntry(doc, req, domain.EventGeneralFailure,
			"source pdf unavailable"))
		if auditErr != nil {
			return nil, auditErr
		}
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "load source pdf", err)
	}

	signer, _ := doc.SignerByID(req.GovtID)
	result, signErr := uc.provider.Sign(ctx, domain.SignRequest{
		GovtID:        req.GovtID,
		Email:         signer.Email,
		Auth:          req.Auth,
		Visualization: doc.Visualization,
		PDF:           source,
	})
	if signErr != nil {
		return nil, uc.handleSignFailure(ctx, doc, req, signErr)
	}

	if err := uc.appendAudit(ctx, uc.outcomeEntry(doc, req, domain.EventSuccess,
		fmt.Sprintf("signature applied by %s", req.GovtID))); err != nil {
		return nil, err
	}

	signedKey := fmt.Sprintf("documents/%s/signed.pdf", doc.ID)
	if err := uc.storage.Put(ctx, signedKey, bytes.NewReader(result.SignedPDF), int64(len(result.SignedPDF))); err != nil {
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "store signed pdf", err)
	}

	now := time.Now().UTC()
	if err := doc.MarkSigned(req.GovtID, now); err != nil {
		return nil, err
	}
	doc.WorkingRef = signedKey
	completed := doc.SignersComplete()
	if completed {
		if err := doc.Transition(domain.StatusSigned); err != nil {
			return nil, err
		}
		doc.SignedPDFRef = doc.WorkingRef
	}
	doc.UpdatedAt = now
	if err := uc.docs.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist signature result: %w", err)
	}

	if completed {
		uc.publish(ctx, domain.DocumentEvent{
			Type:       domain.DocumentSigned,
			DocumentID: doc.ID,
			AppID:      doc.CreatedBy.AppID,
			At:         now,
		})
	}
	return doc, nil
}

// handleSignFailure applies the failure policy: a rejected passphrase or
// OTP leaves the document pending and retryable, a transient provider
// outage leaves it pending for a caller retry with backoff, anything
// else is terminal.
func (uc *WorkflowUseCase) handleSignFailure(ctx context.Context, doc *domain.Document, req ports.SignatureRequest, signErr error) error {
	switch {
	case domain.IsKind(signErr, domain.ErrAuthFailure):
		if err := uc.appendAudit(ctx, uc.outcomeEntry(doc, req, domain.EventPassphraseFailed,
			fmt.Sprintf("passphrase or otp rejected for %s", req.GovtID))); err != nil {
			return err
		}
		return signErr

	case domain.IsKind(signErr, domain.ErrTransient):
		if err := uc.appendAudit(ctx, uc.outcomeEntry(doc, req, domain.EventGeneralFailure,
			"provider temporarily unavailable")); err != nil {
			return err
		}
		return signErr

	default:
		if err := uc.appendAudit(ctx, uc.outcomeEntry(doc, req, domain.EventGeneralFailure,
			fmt.Sprintf("provider rejected signature: %v", signErr))); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := doc.Transition(domain.StatusFailed); err != nil {
			return err
		}
		doc.UpdatedAt = now
		if err := uc.docs.Update(ctx, doc); err != nil {
			return fmt.Errorf("persist failed status: %w", err)
		}
		uc.publish(ctx, domain.DocumentEvent{
			Type:       domain.DocumentFailed,
			DocumentID: doc.ID,
			AppID:      doc.CreatedBy.AppID,
			At:         now,
		})
		return signErr
	}
}

func (uc *WorkflowUseCase) Cancel(ctx context.Context, documentID string, actor domain.Actor) (*domain.Document, error) {
	release := uc.locks.Acquire(documentID)
	defer release()

	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if err := uc.appendAudit(ctx, &domain.AuditEntry{
		DocumentID: doc.ID,
		AppID:      actor.AppID,
		AppUserID:  actor.UserID,
		EventType:  domain.EventAttempt,
		Message:    "cancellation requested",
	}); err != nil {
		return nil, err
	}

	if err := doc.Transition(domain.StatusCanceled); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	doc.UpdatedAt = now
	if err := uc.docs.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist cancellation: %w", err)
	}

	uc.publish(ctx, domain.DocumentEvent{
		Type:       domain.DocumentCanceled,
		DocumentID: doc.ID,
		AppID:      actor.AppID,
		At:         now,
	})
	return doc, nil
}

func (uc *WorkflowUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	return uc.docs.GetByID(ctx, id)
}

func (uc *WorkflowUseCase) readPDF(ctx context.Context, ref string) ([]byte, error) {
	rc, err := uc.storage.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (uc *WorkflowUseCase) outcomeEntry(doc *domain.Document, req ports.SignatureRequest, event domain.EventType, message string) *domain.AuditEntry {
	return &domain.AuditEntry{
		DocumentID: doc.ID,
		GovtID:     req.GovtID,
		AppID:      req.Actor.AppID,
		AppUserID:  req.Actor.UserID,
		EventType:  event,
		Message:    message,
	}
}

func (uc *WorkflowUseCase) appendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// Lifecycle events are advisory; a publish failure must not undo an
// already persisted state change.
func (uc *WorkflowUseCase) publish(ctx context.Context, event domain.DocumentEvent) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishDocumentEvent(ctx, event); err != nil {
		slog.Warn("publish_document_event_failed", "document_id", event.DocumentID, "type", event.Type, "error", err)
	}
}
