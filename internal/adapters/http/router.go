package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/avansign/avansign/internal/core/ports"
	"github.com/avansign/avansign/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	workflow ports.DocumentWorkflow
	verifier ports.Verifier
	seals    ports.SealManager
	users    ports.UserDirectory
	apps     ports.ApplicationRepository
	audit    ports.AuditLog
	metrics  *metrics.Metrics

	adminAPIKey string
}

func NewRouter(
	workflow ports.DocumentWorkflow,
	verifier ports.Verifier,
	seals ports.SealManager,
	users ports.UserDirectory,
	apps ports.ApplicationRepository,
	audit ports.AuditLog,
	m *metrics.Metrics,
	adminAPIKey string,
) *Router {
	return &Router{
		workflow:    workflow,
		verifier:    verifier,
		seals:       seals,
		users:       users,
		apps:        apps,
		audit:       audit,
		metrics:     m,
		adminAPIKey: adminAPIKey,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	admin := http.NewServeMux()
	admin.HandleFunc("POST /v1/applications", rt.registerApplication)
	admin.HandleFunc("PUT /v1/applications/{id}/origins", rt.updateApplicationOrigins)
	mux.Handle("/v1/applications", rt.adminKeyMiddleware(admin))
	mux.Handle("/v1/applications/", rt.adminKeyMiddleware(admin))

	workflow := http.NewServeMux()
	workflow.HandleFunc("POST /v1/documents", rt.submitDocument)
	workflow.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	workflow.HandleFunc("GET /v1/documents/{id}/audit", rt.getDocumentAudit)
	workflow.HandleFunc("POST /v1/documents/{id}/signatures", rt.processSignature)
	workflow.HandleFunc("POST /v1/documents/{id}/cancel", rt.cancelDocument)
	workflow.HandleFunc("POST /v1/verify", rt.verifyPDF)
	workflow.HandleFunc("POST /v1/otp", rt.fetchSigningOTP)
	workflow.HandleFunc("POST /v1/seal/activation", rt.activateSeal)
	workflow.HandleFunc("POST /v1/seal/refresh", rt.refreshSeal)
	workflow.HandleFunc("POST /v1/seal/revocation", rt.revokeSeal)
	workflow.HandleFunc("POST /v1/seal/otp", rt.fetchSealOTP)
	workflow.HandleFunc("POST /v1/seal/pdf", rt.sealPDF)
	workflow.HandleFunc("POST /v1/users/status", rt.checkUserStatus)
	workflow.HandleFunc("POST /v1/users/registration", rt.registerUser)
	mux.Handle("/v1/", rt.credentialGateMiddleware(workflow))

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]errorBody{
		"error": {
			Kind:    errorKind(err),
			Message: err.Error(),
		},
	})
}
