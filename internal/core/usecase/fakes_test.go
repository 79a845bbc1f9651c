package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/avansign/avansign/internal/core/domain"
)

type fakeDocRepo struct {
	mu   sync.Mutex
	docs map[string]*domain.Document

	updateErr error
	updates   int
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[string]*domain.Document)}
}

func (r *fakeDocRepo) Create(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *doc
	r.docs[doc.ID] = &clone
	return nil
}

func (r *fakeDocRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("no document %s", id))
	}
	clone := *doc
	clone.Signers = append([]domain.Signer(nil), doc.Signers...)
	return &clone, nil
}

func (r *fakeDocRepo) Update(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.docs[doc.ID]
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document", fmt.Errorf("no document %s", doc.ID))
	}
	if stored.Version != doc.Version {
		return domain.WrapError(domain.ErrConflict, "update document", errors.New("version moved"))
	}
	clone := *doc
	clone.Version++
	clone.Signers = append([]domain.Signer(nil), doc.Signers...)
	r.docs[doc.ID] = &clone
	doc.Version++
	return nil
}

func (r *fakeDocRepo) ListByStatus(_ context.Context, status domain.DocumentStatus, limit int) ([]domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Document
	for _, doc := range r.docs {
		if doc.Status == status {
			out = append(out, *doc)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte

	putErr error
	getErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Put(_ context.Context, key string, data io.Reader, _ int64) error {
	if s.putErr != nil {
		return s.putErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = raw
	return nil
}

func (s *fakeStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("no object %s", key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry

	appendErr error
}

func (a *fakeAudit) Append(_ context.Context, entry *domain.AuditEntry) error {
	if a.appendErr != nil {
		return a.appendErr
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, *entry)
	return nil
}

func (a *fakeAudit) ListByDocument(_ context.Context, documentID string) ([]domain.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range a.entries {
		if e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (a *fakeAudit) byType(eventType domain.EventType) []domain.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range a.entries {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeEvents struct {
	mu     sync.Mutex
	events []domain.DocumentEvent

	publishErr error
}

func (e *fakeEvents) PublishDocumentEvent(_ context.Context, event domain.DocumentEvent) error {
	if e.publishErr != nil {
		return e.publishErr
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

type fakeInspector struct {
	pages int
	err   error
}

func (i *fakeInspector) Inspect(_ []byte) (*domain.PDFInfo, error) {
	if i.err != nil {
		return nil, i.err
	}
	return &domain.PDFInfo{Pages: i.pages}, nil
}

// fakeProvider answers every call from configurable hooks; unset hooks
// succeed with zero values.
type fakeProvider struct {
	signFn   func(domain.SignRequest) (*domain.SignResult, error)
	verifyFn func(domain.VerifyRequest) (*domain.VerifyResult, error)

	sealErr error
	userErr error

	signCalls int
}

func (p *fakeProvider) FetchOTP(_ context.Context, _ domain.OTPRequest) (*domain.OTPResult, error) {
	if p.userErr != nil {
		return nil, p.userErr
	}
	return &domain.OTPResult{OTP: "123456", ExpiresIn: 300}, nil
}

func (p *fakeProvider) Sign(_ context.Context, req domain.SignRequest) (*domain.SignResult, error) {
	p.signCalls++
	if p.signFn != nil {
		return p.signFn(req)
	}
	return &domain.SignResult{SignedPDF: append([]byte("signed:"), req.PDF...)}, nil
}

func (p *fakeProvider) ActivateSeal(_ context.Context, subscriberID string) (*domain.SealActivation, error) {
	if p.sealErr != nil {
		return nil, p.sealErr
	}
	return &domain.SealActivation{SubscriberID: subscriberID, Active: true}, nil
}

func (p *fakeProvider) RefreshSeal(_ context.Context, subscriberID, _ string) (*domain.SealActivation, error) {
	if p.sealErr != nil {
		return nil, p.sealErr
	}
	return &domain.SealActivation{SubscriberID: subscriberID, Active: true}, nil
}

func (p *fakeProvider) RevokeSeal(_ context.Context, subscriberID, _ string) (*domain.SealActivation, error) {
	if p.sealErr != nil {
		return nil, p.sealErr
	}
	return &domain.SealActivation{SubscriberID: subscriberID, Active: false}, nil
}

func (p *fakeProvider) FetchSealOTP(_ context.Context, _ string, _ int, _ string) (*domain.OTPResult, error) {
	if p.sealErr != nil {
		return nil, p.sealErr
	}
	return &domain.OTPResult{OTP: "654321", ExpiresIn: 300}, nil
}

func (p *fakeProvider) Seal(_ context.Context, req domain.SealRequest) (*domain.SealResult, error) {
	if p.sealErr != nil {
		return nil, p.sealErr
	}
	return &domain.SealResult{SealedPDF: append([]byte("sealed:"), req.PDF...)}, nil
}

func (p *fakeProvider) CheckUserStatus(_ context.Context, req domain.OTPRequest) (*domain.UserStatus, error) {
	if p.userErr != nil {
		return nil, p.userErr
	}
	return &domain.UserStatus{GovtID: req.GovtID, Registered: true}, nil
}

func (p *fakeProvider) RegisterUser(_ context.Context, req domain.RegisterUserRequest) (*domain.UserStatus, error) {
	if p.userErr != nil {
		return nil, p.userErr
	}
	return &domain.UserStatus{Email: req.Email, Registered: true}, nil
}

func (p *fakeProvider) Verify(_ context.Context, req domain.VerifyRequest) (*domain.VerifyResult, error) {
	if p.verifyFn != nil {
		return p.verifyFn(req)
	}
	return &domain.VerifyResult{Valid: true, Signatures: 1}, nil
}
