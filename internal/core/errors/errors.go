package errors

const (
	HttpInternalError    = "internal_error"
	HttpValidationError  = "validation_error"
	HttpBackendDownError = "backend_unavailable"
)

// ErrorResponse is the error response body for all API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
