package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusPending  DocumentStatus = "pending"
	StatusSigned   DocumentStatus = "signed"
	StatusFailed   DocumentStatus = "failed"
	StatusCanceled DocumentStatus = "canceled"
)

type SigningMode string

const (
	ModeSingle   SigningMode = "single"
	ModeMultiple SigningMode = "multiple"
)

type Visibility string

const (
	VisibilityVisible   Visibility = "visible"
	VisibilityInvisible Visibility = "invisible"
)

type SignerStatus string

const (
	SignerPending SignerStatus = "pending"
	SignerSigned  SignerStatus = "signed"
)

// Signer is one required signatory on a document. Signers only exist
// embedded in their document's signer list.
type Signer struct {
	GovtID   string       `json:"govt_id"`
	Email    string       `json:"email,omitempty"`
	Status   SignerStatus `json:"status"`
	Ordinal  int          `json:"ordinal"`
	SignedAt *time.Time   `json:"signed_at,omitempty"`
}

// Visualization describes visual signature placement on the PDF.
type Visualization struct {
	Visibility  Visibility `json:"visibility"`
	Page        int        `json:"page,omitempty"`
	OriginX     float64    `json:"origin_x,omitempty"`
	OriginY     float64    `json:"origin_y,omitempty"`
	Width       float64    `json:"width,omitempty"`
	Height      float64    `json:"height,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	ImageBase64 string     `json:"image_base64,omitempty"`
}

type CreatedBy struct {
	AppID string `json:"app_id"`
	Name  string `json:"name"`
}

// Document is one signing job. WorkingRef tracks the latest provider
// output while signatures stack in multiple mode; SignedPDFRef is set
// only when the document reaches StatusSigned.
type Document struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Number        string         `json:"number,omitempty"`
	Description   string         `json:"description"`
	CreatedBy     CreatedBy      `json:"created_by"`
	Status        DocumentStatus `json:"status"`
	SigningMode   SigningMode    `json:"signing_mode"`
	Visualization Visualization  `json:"visualization"`
	Signers       []Signer       `json:"signers"`
	PDFRef        string         `json:"pdf_ref"`
	WorkingRef    string         `json:"working_ref,omitempty"`
	SignedPDFRef  string         `json:"signed_pdf_ref,omitempty"`
	Version       int64          `json:"version"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

var transitions = map[DocumentStatus][]DocumentStatus{
	StatusPending:  {StatusSigned, StatusFailed, StatusCanceled},
	StatusSigned:   {},
	StatusFailed:   {},
	StatusCanceled: {},
}

// Transition moves the document to a new status, rejecting anything not
// in the transition table. Terminal states never transition.
func (d *Document) Transition(to DocumentStatus) error {
	for _, allowed := range transitions[d.Status] {
		if allowed == to {
			d.Status = to
			return nil
		}
	}
	return WrapError(ErrDocumentNotPending, "transition document",
		fmt.Errorf("%s -> %s is not allowed", d.Status, to))
}

// NormalizeNumber uppercases the document number.
func NormalizeNumber(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}

type SignerSpec struct {
	GovtID string `json:"govt_id"`
	Email  string `json:"email,omitempty"`
}

// NewSigners builds the ordered signer list for a document. Ordinals are
// assigned in input order starting at 1.
func NewSigners(mode SigningMode, specs []SignerSpec) ([]Signer, error) {
	if mode == ModeSingle && len(specs) != 1 {
		return nil, WrapError(ErrInvalidSignerCount, "init signers",
			fmt.Errorf("single mode requires exactly one signer, got %d", len(specs)))
	}
	if len(specs) == 0 {
		return nil, WrapError(ErrInvalidSignerCount, "init signers", errors.New("at least one signer is required"))
	}

	seen := make(map[string]struct{}, len(specs))
	signers := make([]Signer, 0, len(specs))
	for i, spec := range specs {
		govtID := strings.TrimSpace(spec.GovtID)
		if govtID == "" {
			return nil, WrapError(ErrValidation, "init signers", fmt.Errorf("signer %d has empty govt id", i+1))
		}
		if _, dup := seen[govtID]; dup {
			return nil, WrapError(ErrValidation, "init signers", fmt.Errorf("duplicate signer %s", govtID))
		}
		seen[govtID] = struct{}{}
		signers = append(signers, Signer{
			GovtID:  govtID,
			Email:   strings.TrimSpace(spec.Email),
			Status:  SignerPending,
			Ordinal: i + 1,
		})
	}
	return signers, nil
}

// SignerByID returns the signer with the given government identity.
func (d *Document) SignerByID(govtID string) (*Signer, error) {
	for i := range d.Signers {
		if d.Signers[i].GovtID == govtID {
			return &d.Signers[i], nil
		}
	}
	return nil, WrapError(ErrUnknownSigner, "lookup signer", fmt.Errorf("signer %s not on document %s", govtID, d.ID))
}

// CheckSignable verifies the signer may sign now. It reports
// alreadySigned=true for an idempotent re-invocation after success.
func (d *Document) CheckSignable(govtID string, sequential bool) (alreadySigned bool, err error) {
	signer, err := d.SignerByID(govtID)
	if err != nil {
		return false, err
	}
	if signer.Status == SignerSigned {
		return true, nil
	}
	if sequential && d.SigningMode == ModeMultiple {
		for i := range d.Signers {
			if d.Signers[i].Ordinal < signer.Ordinal && d.Signers[i].Status != SignerSigned {
				return false, WrapError(ErrOutOfOrder, "check signer order",
					fmt.Errorf("signer %s at ordinal %d must wait for ordinal %d",
						govtID, signer.Ordinal, d.Signers[i].Ordinal))
			}
		}
	}
	return false, nil
}

// MarkSigned records a successful signature. Marking an already signed
// signer is a no-op.
func (d *Document) MarkSigned(govtID string, signedAt time.Time) error {
	signer, err := d.SignerByID(govtID)
	if err != nil {
		return err
	}
	if signer.Status == SignerSigned {
		return nil
	}
	at := signedAt.UTC()
	signer.Status = SignerSigned
	signer.SignedAt = &at
	return nil
}

// SignersComplete reports whether every signer has signed.
func (d *Document) SignersComplete() bool {
	for i := range d.Signers {
		if d.Signers[i].Status != SignerSigned {
			return false
		}
	}
	return len(d.Signers) > 0
}

// SourceRef returns the storage ref the next signature must be applied
// to: the latest signed output when signatures stack, otherwise the
// original upload.
func (d *Document) SourceRef() string {
	if d.SigningMode == ModeMultiple && d.WorkingRef != "" {
		return d.WorkingRef
	}
	return d.PDFRef
}
