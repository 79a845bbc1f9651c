package httpadapter

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avansign/avansign/internal/core/domain"
	"github.com/avansign/avansign/internal/core/ports"
)

type submitRequest struct {
	Name          string               `json:"name"`
	Number        string               `json:"number"`
	Description   string               `json:"description"`
	SigningMode   string               `json:"signing_mode"`
	Visualization domain.Visualization `json:"visualization"`
	Signers       []domain.SignerSpec  `json:"signers"`
	PDFBase64     string               `json:"pdf_base64"`
}

func (rt *Router) submitDocument(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrValidation, "decode submission", err))
		return
	}
	pdf, err := decodeBase64Field("pdf_base64", req.PDFBase64)
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := rt.workflow.Submit(r.Context(), ports.SubmitRequest{
		Name:          req.Name,
		Number:        req.Number,
		Description:   req.Description,
		SigningMode:   domain.SigningMode(req.SigningMode),
		Visualization: req.Visualization,
		Signers:       req.Signers,
		PDF:           pdf,
		Actor:         actorFromContext(r.Context(), r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.workflow.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) getDocumentAudit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := rt.workflow.GetByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	entries, err := rt.audit.ListByDocument(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

type signatureRequest struct {
	GovtID     string `json:"govt_id"`
	Passphrase string `json:"passphrase"`
	OTP        string `json:"otp"`
}

func (rt *Router) processSignature(w http.ResponseWriter, r *http.Request) {
	var req signatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrValidation, "decode signature request", err))
		return
	}
	if strings.TrimSpace(req.GovtID) == "" {
		writeError(w, domain.WrapError(domain.ErrValidation, "decode signature request",
			errors.New("govt_id is required")))
		return
	}

	doc, err := rt.workflow.ProcessSignature(r.Context(), ports.SignatureRequest{
		DocumentID: r.PathValue("id"),
		GovtID:     req.GovtID,
		Auth: domain.AuthMaterial{
			Passphrase: req.Passphrase,
			OTP:        req.OTP,
		},
		Actor: actorFromContext(r.Context(), r),
	})
	rt.recordSigningOutcome(err)
	if err != nil {
		if rt.metrics != nil && domain.IsKind(err, domain.ErrPermanent) {
			rt.metrics.RecordDocumentTransition(serviceName, string(domain.StatusFailed))
		}
		writeError(w, err)
		return
	}
	if rt.metrics != nil && doc.Status == domain.StatusSigned {
		rt.metrics.RecordDocumentTransition(serviceName, string(domain.StatusSigned))
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) recordSigningOutcome(err error) {
	if rt.metrics == nil {
		return
	}
	switch {
	case err == nil:
		rt.metrics.RecordSigningOutcome(serviceName, "success")
	case domain.IsKind(err, domain.ErrAuthFailure):
		rt.metrics.RecordSigningOutcome(serviceName, "passphrase_failed")
	default:
		rt.metrics.RecordSigningOutcome(serviceName, "general_failure")
	}
}

func (rt *Router) cancelDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.workflow.Cancel(r.Context(), r.PathValue("id"), actorFromContext(r.Context(), r))
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordDocumentTransition(serviceName, string(domain.StatusCanceled))
	}
	writeJSON(w, http.StatusOK, doc)
}

type verifyPDFRequest struct {
	PDFBase64 string `json:"pdf_base64"`
	Password  string `json:"password"`
}

func (rt *Router) verifyPDF(w http.ResponseWriter, r *http.Request) {
	var req verifyPDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrValidation, "decode verify request", err))
		return
	}
	pdf, err := decodeBase64Field("pdf_base64", req.PDFBase64)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := rt.verifier.Verify(r.Context(), pdf, req.Password, actorFromContext(r.Context(), r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type otpRequest struct {
	GovtID string `json:"govt_id"`
	Email  string `json:"email"`
}

func (rt *Router) fetchSigningOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrValidation, "decode otp request", err))
		return
	}
	result, err := rt.users.FetchSigningOTP(r.Context(), domain.OTPRequest{
		GovtID: req.GovtID,
		Email:  req.Email,
	}, actorFromContext(r.Context(), r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type sealRequest struct {
	SubscriberID string `json:"subscriber_id"`
	OTP          string `json:"otp"`
	FileCount    int    `json:"file_count"`
}

func (rt *Router) activateSeal(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSealRequest(w, r)
	if !ok {
		return
	}
	result, err := rt.seals.Activate(r.Context(), req.SubscriberID, actorFromContext(r.Context(), r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) refreshSeal(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSealRequest(w, r)
	if !ok {
		return
	}
	result, err := rt.seals.Refresh(r.Context(), req.SubscriberID, req.OTP, actorFromContext(r.Context(), r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) revokeSeal(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSealRequest(w, r)
	if !ok {
		return
	}
	result, err := rt.seals.Revoke(r.Context(), req.SubscriberID, req.OTP, actorFromContext(r.Context(), r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) fetchSealOTP(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSealRequest(w, r)
	if !ok {
		return
	}
	result, err := rt.seals.FetchOTP(r.Context(), req.SubscriberID, req.FileCount, req.OTP, actorFromContext(r.Context(), r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type sealPDFRequest struct {
	SubscriberID  string               `json:"subscriber_id"`
	OTP           string               `json:"otp"`
	FileCount     int                  `json:"file_count"`
	Visualization domain.Visualization `json:"visualization"`
	PDFBase64     string               `json:"pdf_base64"`
}

func (rt *Router) sealPDF(w http.ResponseWriter, r *http.Request) {
	var req sealPDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrValidation, "decode seal request", err))
		return
	}
	if strings.TrimSpace(req.SubscriberID) == "" {
		writeError(w, domain.WrapError(domain.ErrValidation, "decode seal request",
			errors.New("subscriber_id is required")))
		return
	}
	pdf, err := decodeBase64Field("pdf_base64", req.PDFBase64)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := rt.seals.Seal(r.Context(), domain.SealRequest{
		SubscriberID:  req.SubscriberID,
		OTP:           req.OTP,
		FileCount:     req.FileCount,
		Visualization: req.Visualization,
		PDF:           pdf,
	}, actorFromContext(r.Context(), r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"sealed_pdf_base64": base64.StdEncoding.EncodeToString(result.SealedPDF),
	})
}

func decodeSealRequest(w http.ResponseWriter, r *http.Request) (sealRequest, bool) {
	var req sealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrValidation, "decode seal request", err))
		return sealRequest{}, false
	}
	if strings.TrimSpace(req.SubscriberID) == "" {
		writeError(w, domain.WrapError(domain.ErrValidation, "decode seal request",
			errors.New("subscriber_id is required")))
		return sealRequest{}, false
	}
	return req, true
}

func (rt *Router) checkUserStatus(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrValidation, "decode user status request", err))
		return
	}
	result, err := rt.users.CheckStatus(r.Context(), domain.OTPRequest{
		GovtID: req.GovtID,
		Email:  req.Email,
	}, actorFromContext(r.Context(), r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type registerUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (rt *Router) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrValidation, "decode user registration", err))
		return
	}
	result, err := rt.users.Register(r.Context(), domain.RegisterUserRequest{
		Name:  req.Name,
		Email: req.Email,
	}, actorFromContext(r.Context(), r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type registerApplicationRequest struct {
	Name    string   `json:"name"`
	Origins []string `json:"origins"`
}

type registerApplicationResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Origins      []string `json:"origins"`
}

// registerApplication issues credentials for a new caller. The secret
// is returned exactly once and stored server side only.
func (rt *Router) registerApplication(w http.ResponseWriter, r *http.Request) {
	var req registerApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrValidation, "decode application registration", err))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, domain.WrapError(domain.ErrValidation, "decode application registration",
			errors.New("name is required")))
		return
	}

	secret, err := generateSecret()
	if err != nil {
		writeError(w, err)
		return
	}
	now := time.Now().UTC()
	app := &domain.Application{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		ClientID:     uuid.NewString(),
		ClientSecret: secret,
		Origins:      req.Origins,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if app.Origins == nil {
		app.Origins = []string{}
	}
	if err := rt.apps.Create(r.Context(), app); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerApplicationResponse{
		ID:           app.ID,
		Name:         app.Name,
		ClientID:     app.ClientID,
		ClientSecret: secret,
		Origins:      app.Origins,
	})
}

type updateOriginsRequest struct {
	Origins []string `json:"origins"`
}

func (rt *Router) updateApplicationOrigins(w http.ResponseWriter, r *http.Request) {
	var req updateOriginsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrValidation, "decode origins update", err))
		return
	}
	if err := rt.apps.UpdateOrigins(r.Context(), r.PathValue("id"), req.Origins); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func decodeBase64Field(field, value string) ([]byte, error) {
	if strings.TrimSpace(value) == "" {
		return nil, domain.WrapError(domain.ErrValidation, "decode request",
			errors.New(field+" is required"))
	}
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, domain.WrapError(domain.ErrValidation, "decode request",
			errors.New(field+" is not valid base64"))
	}
	return raw, nil
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
