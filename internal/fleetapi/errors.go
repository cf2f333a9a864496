package fleetapi

import "fmt"

// Kind classifies failures at the fleet backend boundary.
type Kind int

const (
	// KindNetwork covers connectivity failures and timeouts.
	KindNetwork Kind = iota
	// KindServer covers 5xx responses.
	KindServer
	// KindValidation covers 4xx responses carrying field detail.
	KindValidation
	// KindUnauthorized covers 401 responses.
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NETWORK_ERROR"
	case KindServer:
		return "SERVER_ERROR"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "UNKNOWN"
	}
}

// APIError is the typed error returned by all Client operations.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Fields     map[string][]string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a user-initiated retry is worth offering.
// Network and server failures are transient; validation and authorization
// failures are not.
func (e *APIError) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindServer
}

// networkError wraps a transport-level failure.
func networkError(err error) *APIError {
	return &APIError{
		Kind:    KindNetwork,
		Message: err.Error(),
		Err:     err,
	}
}

// statusError classifies a non-2xx response by status code.
func statusError(code int, message string, fields map[string][]string) *APIError {
	apiErr := &APIError{
		StatusCode: code,
		Message:    message,
		Fields:     fields,
	}
	switch {
	case code == 401:
		apiErr.Kind = KindUnauthorized
	case code >= 500:
		apiErr.Kind = KindServer
	default:
		apiErr.Kind = KindValidation
	}
	return apiErr
}
