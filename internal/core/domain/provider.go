package domain

// AuthMaterial is the second-factor material a signer supplies for one
// signing attempt. Never persisted and never logged.
type AuthMaterial struct {
	Passphrase string `json:"passphrase,omitempty"`
	OTP        string `json:"otp,omitempty"`
}

// SignRequest is one sign call against the remote provider.
type SignRequest struct {
	GovtID        string
	Email         string
	Auth          AuthMaterial
	Visualization Visualization
	PDF           []byte
}

type SignResult struct {
	SignedPDF []byte
}

type OTPRequest struct {
	GovtID string
	Email  string
}

type OTPResult struct {
	OTP       string
	ExpiresIn int
}

// Seal operations address an organizational subscriber rather than an
// individual signer.
type SealRequest struct {
	SubscriberID  string
	OTP           string
	FileCount     int
	Visualization Visualization
	PDF           []byte
}

type SealResult struct {
	SealedPDF []byte
}

type SealActivation struct {
	SubscriberID string
	Active       bool
	Message      string
}

type UserStatus struct {
	GovtID     string
	Email      string
	Registered bool
	Message    string
}

type RegisterUserRequest struct {
	Name  string
	Email string
}

type VerifyRequest struct {
	PDF      []byte
	Password string
}

// VerifyResult is the provider's verification outcome, surfaced to the
// caller unmodified.
type VerifyResult struct {
	Valid      bool              `json:"valid"`
	Signatures int               `json:"signatures"`
	Details    map[string]string `json:"details,omitempty"`
}

// PDFInfo is what submit validation needs to know about an upload.
type PDFInfo struct {
	Pages int
}
