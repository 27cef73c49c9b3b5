package app

import (
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-esp-partition/pkg/partitiontable"
)

// CommonError represents application-level errors
type CommonError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CommonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CommonError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeParseFailed      = "PARSE_FAILED"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeIOFailed         = "IO_FAILED"
	ErrCodeNotFound         = "NOT_FOUND"
)

// NewError creates a new CommonError
func NewError(code, message string, cause error) *CommonError {
	return &CommonError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode returns the code of the first CommonError in err's chain, or
// classifies partition table errors that were not wrapped yet
func ErrorCode(err error) string {
	var common *CommonError
	if errors.As(err, &common) {
		return common.Code
	}

	var (
		parseErr    *partitiontable.ParseError
		validateErr *partitiontable.ValidationError
	)
	switch {
	case errors.As(err, &parseErr), errors.Is(err, partitiontable.ErrChecksumMismatch):
		return ErrCodeParseFailed
	case errors.As(err, &validateErr):
		return ErrCodeValidationFailed
	}
	return ""
}

// WrapTableError wraps an error returned by partitiontable with the matching code
func WrapTableError(message string, err error) *CommonError {
	code := ErrorCode(err)
	if code == "" {
		code = ErrCodeInvalidInput
	}
	return NewError(code, message, err)
}
