package gobinder

import "github.com/ehrlich-b/gobinder/internal/status"

// ServiceError is the exception an OnTransactFunc returns to signal a
// service-specific failure (spec.md §4.6's exception-reply convention)
// rather than a generic transport error.
type ServiceError = status.ServiceError

// NewServiceError builds a ServiceError with the given application-defined
// code and message.
func NewServiceError(code int32, message string) *ServiceError {
	return &status.ServiceError{Code: code, Message: message}
}
