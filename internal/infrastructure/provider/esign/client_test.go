package esign

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avansign/avansign/internal/core/domain"
	"github.com/avansign/avansign/internal/infrastructure/resilience"
)

func fastExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
		RetryMultiplier:     1.0,
		BreakerEnabled:      false,
	})
}

func testClient(srv *httptest.Server, observer Observer) *Client {
	return New(srv.URL, "client-id", "client-secret", Options{
		Timeout:  2 * time.Second,
		Executor: fastExecutor(),
		Observer: observer,
	})
}

func TestSignSendsBasicAuthAndDecodesFile(t *testing.T) {
	var gotPath, gotUser, gotPass string
	var gotBody signRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(signResponse{
			Status: "success",
			Files:  []string{base64.StdEncoding.EncodeToString([]byte("signed bytes"))},
		})
	}))
	defer srv.Close()

	client := testClient(srv, nil)
	result, err := client.Sign(context.Background(), domain.SignRequest{
		GovtID: "1111",
		Auth:   domain.AuthMaterial{Passphrase: "secret", OTP: "123456"},
		Visualization: domain.Visualization{
			Visibility: domain.VisibilityVisible,
			Page:       1,
			Width:      100,
			Height:     40,
		},
		PDF: []byte("%PDF"),
	})
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	if gotPath != "/api/v2/sign/pdf" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotUser != "client-id" || gotPass != "client-secret" {
		t.Fatalf("basic auth = %q/%q", gotUser, gotPass)
	}
	if gotBody.GovtID != "1111" || gotBody.OTP != "123456" {
		t.Fatalf("request body = %+v", gotBody)
	}
	if len(gotBody.Properties) != 1 || gotBody.Properties[0].Display != "VISIBLE" {
		t.Fatalf("signature properties = %+v", gotBody.Properties)
	}
	if string(result.SignedPDF) != "signed bytes" {
		t.Fatalf("signed pdf = %q", result.SignedPDF)
	}
}

func TestUnauthorizedBecomesAuthFailureWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := testClient(srv, nil)
	_, err := client.Sign(context.Background(), domain.SignRequest{GovtID: "1111", PDF: []byte("%PDF")})
	if !domain.IsKind(err, domain.ErrAuthFailure) {
		t.Fatalf("expected ErrAuthFailure, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("auth rejection must not be retried, calls = %d", calls.Load())
	}
}

func TestServerErrorBecomesTransientAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := testClient(srv, nil)
	_, err := client.FetchOTP(context.Background(), domain.OTPRequest{GovtID: "1111"})
	if !domain.IsKind(err, domain.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one retry, calls = %d", calls.Load())
	}
}

func TestBadRequestBecomesPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := testClient(srv, nil)
	_, err := client.Verify(context.Background(), domain.VerifyRequest{PDF: []byte("junk")})
	if !domain.IsKind(err, domain.ErrPermanent) {
		t.Fatalf("expected ErrPermanent, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("permanent failure must not be retried, calls = %d", calls.Load())
	}
}

func TestEmptyFileListIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(signResponse{Status: "success"})
	}))
	defer srv.Close()

	client := testClient(srv, nil)
	_, err := client.Sign(context.Background(), domain.SignRequest{GovtID: "1111", PDF: []byte("%PDF")})
	if !domain.IsKind(err, domain.ErrPermanent) {
		t.Fatalf("expected ErrPermanent for missing file, got %v", err)
	}
}

func TestObserverSeesEveryCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(otpResponse{OTP: "123456", ExpiresIn: 300})
	}))
	defer srv.Close()

	var observed []string
	client := testClient(srv, func(operation string, _ time.Duration, err error) {
		if err != nil {
			t.Errorf("observer got error: %v", err)
		}
		observed = append(observed, operation)
	})

	if _, err := client.FetchOTP(context.Background(), domain.OTPRequest{GovtID: "1111"}); err != nil {
		t.Fatalf("FetchOTP() error = %v", err)
	}
	if len(observed) != 1 || observed[0] != "esign.fetch_otp" {
		t.Fatalf("observed = %v", observed)
	}
}

func TestSealEndpointsUseSubscriberPaths(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_ = json.NewEncoder(w).Encode(sealActivationResponse{Status: "success", Message: "ok"})
	}))
	defer srv.Close()

	client := testClient(srv, nil)
	ctx := context.Background()
	if _, err := client.ActivateSeal(ctx, "sub-1"); err != nil {
		t.Fatalf("ActivateSeal() error = %v", err)
	}
	revoked, err := client.RevokeSeal(ctx, "sub-1", "123456")
	if err != nil {
		t.Fatalf("RevokeSeal() error = %v", err)
	}
	if revoked.Active {
		t.Fatalf("revoked seal must not be active")
	}

	want := []string{"/api/v2/seal/get/activation", "/api/v2/seal/revoke/activation"}
	if len(paths) != len(want) || paths[0] != want[0] || paths[1] != want[1] {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
}
