package types

// SuccessEnvelope wraps every successful API payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public shape of a failed request. Notice is the short title
// clients show on the dismissable failure dialog ("Empty Cart", "Checkout Failed").
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Notice    string `json:"notice,omitempty"`
	Retryable bool   `json:"retryable"`
	Details   any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps APIError.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
