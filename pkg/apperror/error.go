package apperror

import "mediflash/pkg/apperror/status"

// ErrorResponse is the standardized HTTP error payload
type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func (e *ErrorResponse) Error() string { return e.Message }

func New(code status.ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{Code: code.String(), Message: message}
}

func (e *ErrorResponse) WithField(field string) *ErrorResponse {
	e.Field = field
	return e
}

func (e *ErrorResponse) WithDetails(details any) *ErrorResponse {
	e.Details = details
	return e
}
