package httpadapter

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avansign/avansign/internal/core/domain"
)

type appContextKey struct{}

func actorFromContext(ctx context.Context, r *http.Request) domain.Actor {
	app, _ := ctx.Value(appContextKey{}).(*domain.Application)
	actor := domain.Actor{UserID: strings.TrimSpace(r.Header.Get("X-App-User-Id"))}
	if app != nil {
		actor.AppID = app.ID
		actor.AppName = app.Name
	}
	return actor
}

// credentialGateMiddleware authenticates the calling application from a
// Basic Authorization header (client id / client secret). Failed
// attempts leave one audit entry and nothing else; the attempted client
// id is recorded but never the secret.
func (rt *Router) credentialGateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID, clientSecret, err := parseBasicCredentials(r.Header.Get("Authorization"))
		if err != nil {
			rt.auditAuthFailure(r, "", err)
			writeError(w, err)
			return
		}

		app, lookupErr := rt.apps.GetByClientID(r.Context(), clientID)
		if lookupErr != nil {
			if domain.IsKind(lookupErr, domain.ErrApplicationNotFound) {
				authErr := domain.WrapError(domain.ErrInvalidCredentials, "authenticate",
					fmt.Errorf("unknown client id %s", clientID))
				rt.auditAuthFailure(r, clientID, authErr)
				writeError(w, authErr)
				return
			}
			writeError(w, lookupErr)
			return
		}

		if subtle.ConstantTimeCompare([]byte(app.ClientSecret), []byte(clientSecret)) != 1 {
			authErr := domain.WrapError(domain.ErrInvalidCredentials, "authenticate",
				fmt.Errorf("secret mismatch for client id %s", clientID))
			rt.auditAuthFailure(r, clientID, authErr)
			writeError(w, authErr)
			return
		}

		ctx := context.WithValue(r.Context(), appContextKey{}, app)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func parseBasicCredentials(header string) (clientID, clientSecret string, err error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", "", domain.WrapError(domain.ErrMissingCredentials, "authenticate",
			errors.New("authorization header is required"))
	}

	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", domain.WrapError(domain.ErrMalformedCredentials, "authenticate",
			errors.New("authorization scheme must be Basic"))
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(strings.TrimPrefix(header, prefix)))
	if err != nil {
		return "", "", domain.WrapError(domain.ErrMalformedCredentials, "authenticate",
			errors.New("authorization token is not valid base64"))
	}

	clientID, clientSecret, ok := strings.Cut(string(raw), ":")
	if !ok || clientID == "" || clientSecret == "" {
		return "", "", domain.WrapError(domain.ErrMalformedCredentials, "authenticate",
			errors.New("expected client_id:client_secret"))
	}
	return clientID, clientSecret, nil
}

func (rt *Router) auditAuthFailure(r *http.Request, clientID string, authErr error) {
	message := "authentication rejected"
	if clientID != "" {
		message = fmt.Sprintf("authentication rejected for client id %s", clientID)
	}
	entry := &domain.AuditEntry{
		ID:        uuid.NewString(),
		AppUserID: strings.TrimSpace(r.Header.Get("X-App-User-Id")),
		EventType: domain.EventGeneralFailure,
		Message:   fmt.Sprintf("%s: %v", message, authErr),
		Timestamp: time.Now().UTC(),
	}
	if err := rt.audit.Append(r.Context(), entry); err != nil {
		// The request is already rejected; losing this entry only
		// costs forensics, not correctness.
		logAuditFailure(r.Context(), err)
	}
}

// adminKeyMiddleware protects application registration. A missing
// configured key disables the endpoint entirely.
func (rt *Router) adminKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rt.adminAPIKey == "" {
			writeError(w, domain.WrapError(domain.ErrInvalidCredentials, "admin authenticate",
				errors.New("administrative API is disabled")))
			return
		}
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(header, bearerPrefix) {
			writeError(w, domain.WrapError(domain.ErrMissingCredentials, "admin authenticate",
				errors.New("bearer admin key is required")))
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if subtle.ConstantTimeCompare([]byte(token), []byte(rt.adminAPIKey)) != 1 {
			writeError(w, domain.WrapError(domain.ErrInvalidCredentials, "admin authenticate",
				errors.New("admin key mismatch")))
			return
		}
		next.ServeHTTP(w, r)
	})
}
