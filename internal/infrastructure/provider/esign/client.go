package esign

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/avansign/avansign/internal/core/domain"
	"github.com/avansign/avansign/internal/infrastructure/resilience"
)

// Observer receives one measurement per provider call.
type Observer func(operation string, duration time.Duration, err error)

// Client talks to the remote e-signature provider. All calls go through
// an outbound rate limiter and the resilience executor; errors come back
// normalized into the domain taxonomy.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
	observe    Observer
}

type Options struct {
	Timeout   time.Duration
	RateLimit rate.Limit
	RateBurst int
	Executor  *resilience.Executor
	Observer  Observer
}

func New(baseURL, username, password string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	limit := options.RateLimit
	if limit <= 0 {
		limit = rate.Inf
	}
	burst := options.RateBurst
	if burst <= 0 {
		burst = 1
	}
	executor := options.Executor
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		executor:   executor,
		observe:    options.Observer,
	}
}

func (c *Client) FetchOTP(ctx context.Context, req domain.OTPRequest) (*domain.OTPResult, error) {
	var resp otpResponse
	err := c.call(ctx, "esign.fetch_otp", "/api/v2/sign/get/totp", otpRequest{
		GovtID: req.GovtID,
		Email:  req.Email,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &domain.OTPResult{OTP: resp.OTP, ExpiresIn: resp.ExpiresIn}, nil
}

func (c *Client) Sign(ctx context.Context, req domain.SignRequest) (*domain.SignResult, error) {
	var resp signResponse
	err := c.call(ctx, "esign.sign", "/api/v2/sign/pdf", signRequest{
		GovtID:     req.GovtID,
		Email:      req.Email,
		Passphrase: req.Auth.Passphrase,
		OTP:        req.Auth.OTP,
		Properties: []signatureProperty{propertyFromVisualization(req.Visualization)},
		Files:      []string{base64.StdEncoding.EncodeToString(req.PDF)},
	}, &resp)
	if err != nil {
		return nil, err
	}

	signed, err := decodeSingleFile("esign.sign", resp.Files)
	if err != nil {
		return nil, err
	}
	return &domain.SignResult{SignedPDF: signed}, nil
}

func (c *Client) ActivateSeal(ctx context.Context, subscriberID string) (*domain.SealActivation, error) {
	var resp sealActivationResponse
	err := c.call(ctx, "esign.activate_seal", "/api/v2/seal/get/activation", sealActivationRequest{
		SubscriberID: subscriberID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &domain.SealActivation{SubscriberID: subscriberID, Active: true, Message: resp.Message}, nil
}

func (c *Client) RefreshSeal(ctx context.Context, subscriberID, otp string) (*domain.SealActivation, error) {
	var resp sealActivationResponse
	err := c.call(ctx, "esign.refresh_seal", "/api/v2/seal/get/activation", sealActivationRequest{
		SubscriberID: subscriberID,
		OTP:          otp,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &domain.SealActivation{SubscriberID: subscriberID, Active: true, Message: resp.Message}, nil
}

func (c *Client) RevokeSeal(ctx context.Context, subscriberID, otp string) (*domain.SealActivation, error) {
	var resp sealActivationResponse
	err := c.call(ctx, "esign.revoke_seal", "/api/v2/seal/revoke/activation", sealActivationRequest{
		SubscriberID: subscriberID,
		OTP:          otp,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &domain.SealActivation{SubscriberID: subscriberID, Active: false, Message: resp.Message}, nil
}

func (c *Client) FetchSealOTP(ctx context.Context, subscriberID string, fileCount int, otp string) (*domain.OTPResult, error) {
	var resp otpResponse
	err := c.call(ctx, "esign.fetch_seal_otp", "/api/v2/seal/get/totp", sealOTPRequest{
		SubscriberID: subscriberID,
		FileCount:    fileCount,
		OTP:          otp,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &domain.OTPResult{OTP: resp.OTP, ExpiresIn: resp.ExpiresIn}, nil
}

func (c *Client) Seal(ctx context.Context, req domain.SealRequest) (*domain.SealResult, error) {
	var resp signResponse
	err := c.call(ctx, "esign.seal", "/api/v2/seal/pdf", sealRequest{
		SubscriberID: req.SubscriberID,
		OTP:          req.OTP,
		FileCount:    req.FileCount,
		Properties:   []signatureProperty{propertyFromVisualization(req.Visualization)},
		Files:        []string{base64.StdEncoding.EncodeToString(req.PDF)},
	}, &resp)
	if err != nil {
		return nil, err
	}

	sealed, err := decodeSingleFile("esign.seal", resp.Files)
	if err != nil {
		return nil, err
	}
	return &domain.SealResult{SealedPDF: sealed}, nil
}

func (c *Client) CheckUserStatus(ctx context.Context, req domain.OTPRequest) (*domain.UserStatus, error) {
	var resp userStatusResponse
	err := c.call(ctx, "esign.check_user_status", "/api/v2/user/check/status", userStatusRequest{
		GovtID: req.GovtID,
		Email:  req.Email,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &domain.UserStatus{
		GovtID:     req.GovtID,
		Email:      req.Email,
		Registered: resp.Registered,
		Message:    resp.Message,
	}, nil
}

func (c *Client) RegisterUser(ctx context.Context, req domain.RegisterUserRequest) (*domain.UserStatus, error) {
	var resp userStatusResponse
	err := c.call(ctx, "esign.register_user", "/api/v2/user/registration", registerUserRequest{
		Name:  req.Name,
		Email: req.Email,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &domain.UserStatus{
		Email:      req.Email,
		Registered: true,
		Message:    resp.Message,
	}, nil
}

func (c *Client) Verify(ctx context.Context, req domain.VerifyRequest) (*domain.VerifyResult, error) {
	var resp verifyResponse
	err := c.call(ctx, "esign.verify", "/api/v2/verify/pdf", verifyRequest{
		File:     base64.StdEncoding.EncodeToString(req.PDF),
		Password: req.Password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &domain.VerifyResult{
		Valid:      resp.Valid,
		Signatures: resp.Signatures,
		Details:    resp.Details,
	}, nil
}

func (c *Client) call(ctx context.Context, operation, path string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	err := c.executor.Execute(ctx, operation, func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, payload, out, operation)
	}, classifyProviderError)
	if c.observe != nil {
		c.observe(operation, time.Since(start), err)
	}
	return normalizeError(operation, err)
}

func propertyFromVisualization(vis domain.Visualization) signatureProperty {
	display := "INVISIBLE"
	if vis.Visibility == domain.VisibilityVisible {
		display = "VISIBLE"
	}
	return signatureProperty{
		Display:     display,
		ImageBase64: vis.ImageBase64,
		Page:        vis.Page,
		OriginX:     vis.OriginX,
		OriginY:     vis.OriginY,
		Width:       vis.Width,
		Height:      vis.Height,
		Reason:      vis.Reason,
	}
}

func decodeSingleFile(operation string, files []string) ([]byte, error) {
	if len(files) == 0 {
		return nil, domain.WrapError(domain.ErrPermanent, operation, errors.New("provider returned no file"))
	}
	raw, err := base64.StdEncoding.DecodeString(files[0])
	if err != nil {
		return nil, domain.WrapError(domain.ErrPermanent, operation, fmt.Errorf("decode provider file: %w", err))
	}
	return raw, nil
}
