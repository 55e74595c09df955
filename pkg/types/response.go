package types

// SuccessEnvelope wraps every successful response body. The mobile client
// tolerates both bare and enveloped payloads from the ERP; this service
// always envelopes.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape. Details carries field-level
// validation messages when the code allows them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
