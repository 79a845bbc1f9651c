package esign

// Wire types for the remote e-signature provider. Field names follow
// the provider contract; the rest of the system only sees the
// normalized domain types.

type signatureProperty struct {
	Display     string  `json:"display"`
	ImageBase64 string  `json:"image_base64,omitempty"`
	Page        int     `json:"page,omitempty"`
	OriginX     float64 `json:"origin_x,omitempty"`
	OriginY     float64 `json:"origin_y,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

type otpRequest struct {
	GovtID string `json:"nik,omitempty"`
	Email  string `json:"email,omitempty"`
}

type otpResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	OTP       string `json:"totp"`
	ExpiresIn int    `json:"expires_in"`
}

type signRequest struct {
	GovtID     string              `json:"nik,omitempty"`
	Email      string              `json:"email,omitempty"`
	Passphrase string              `json:"passphrase,omitempty"`
	OTP        string              `json:"totp,omitempty"`
	Properties []signatureProperty `json:"signatureProperties"`
	Files      []string            `json:"file"`
}

type signResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Files   []string `json:"file"`
}

type sealActivationRequest struct {
	SubscriberID string `json:"idSubscriber"`
	OTP          string `json:"totp,omitempty"`
}

type sealActivationResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type sealOTPRequest struct {
	SubscriberID string `json:"idSubscriber"`
	FileCount    int    `json:"data"`
	OTP          string `json:"totp,omitempty"`
}

type sealRequest struct {
	SubscriberID string              `json:"idSubscriber"`
	OTP          string              `json:"totp"`
	FileCount    int                 `json:"data"`
	Properties   []signatureProperty `json:"signatureProperties"`
	Files        []string            `json:"file"`
}

type userStatusRequest struct {
	GovtID string `json:"nik,omitempty"`
	Email  string `json:"email,omitempty"`
}

type userStatusResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Registered bool   `json:"registered"`
}

type registerUserRequest struct {
	Name  string `json:"nama"`
	Email string `json:"email"`
}

type verifyRequest struct {
	File     string `json:"file"`
	Password string `json:"password,omitempty"`
}

type verifyResponse struct {
	Status     string            `json:"status"`
	Message    string            `json:"message"`
	Valid      bool              `json:"valid"`
	Signatures int               `json:"signatures"`
	Details    map[string]string `json:"details,omitempty"`
}
