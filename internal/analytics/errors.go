package analytics

import "fmt"

// ErrorKind classifies request failures for the HTTP boundary.
type ErrorKind string

const (
	ErrInvalidProjectID ErrorKind = "invalid_project_id"
	ErrInvalidFilter    ErrorKind = "invalid_filter"
	ErrForbidden        ErrorKind = "forbidden"
	ErrNotFound         ErrorKind = "not_found"
	ErrStoreUnavailable ErrorKind = "store_unavailable"
)

// RequestError carries a machine-readable kind and a human-readable message.
// The wrapped cause stays server-side; handlers only surface Kind and Message.
type RequestError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewInvalidProjectIDError reports a project ID that is not a valid UUID.
func NewInvalidProjectIDError(projectID string) *RequestError {
	return &RequestError{
		Kind:    ErrInvalidProjectID,
		Message: "The provided project ID is not a valid UUID",
	}
}

// NewInvalidFilterError reports an unsupported time range filter.
func NewInvalidFilterError(filter string) *RequestError {
	return &RequestError{
		Kind:    ErrInvalidFilter,
		Message: "The specified filter is not valid",
	}
}

// NewForbiddenError reports a requester outside the project's team.
func NewForbiddenError() *RequestError {
	return &RequestError{
		Kind:    ErrForbidden,
		Message: "You do not have access to this project",
	}
}

// NewNotFoundError reports a project that does not exist.
func NewNotFoundError(projectID string) *RequestError {
	return &RequestError{
		Kind:    ErrNotFound,
		Message: "Project not found",
	}
}

// NewStoreUnavailableError wraps an unexpected store failure.
func NewStoreUnavailableError(err error) *RequestError {
	return &RequestError{
		Kind:    ErrStoreUnavailable,
		Message: "Failed to fetch analytics",
		Err:     err,
	}
}
