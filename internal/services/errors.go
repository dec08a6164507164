package services

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a client-facing input problem.
type ErrorCode string

const (
	ErrCodeMissingFile           ErrorCode = "MISSING_FILE"
	ErrCodeFileTooLarge          ErrorCode = "FILE_TOO_LARGE"
	ErrCodeUnsupportedFormat     ErrorCode = "UNSUPPORTED_FORMAT"
	ErrCodeContentTypeMismatch   ErrorCode = "CONTENT_TYPE_MISMATCH"
	ErrCodeExtractionFailed      ErrorCode = "EXTRACTION_FAILED"
	ErrCodeTextTooShort          ErrorCode = "TEXT_TOO_SHORT"
	ErrCodeInvalidMode           ErrorCode = "INVALID_MODE"
	ErrCodeMissingJobDescription ErrorCode = "MISSING_JOB_DESCRIPTION"
	ErrCodeInvalidReferenceDate  ErrorCode = "INVALID_REFERENCE_DATE"
	ErrCodeInvalidInput          ErrorCode = "INVALID_INPUT"
)

// ClientInputError is always surfaced to the caller.
type ClientInputError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *ClientInputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ClientInputError) Unwrap() error {
	return e.Cause
}

func newClientError(code ErrorCode, message string, cause error) *ClientInputError {
	return &ClientInputError{Code: code, Message: message, Cause: cause}
}

// AsClientInputError reports whether err is, or wraps, a ClientInputError.
func AsClientInputError(err error) (*ClientInputError, bool) {
	var clientErr *ClientInputError
	if errors.As(err, &clientErr) {
		return clientErr, true
	}
	return nil, false
}

// GenerationFailure covers request errors and undecodable responses from the generation service.
type GenerationFailure struct {
	Task  string
	Cause error
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("generation failed for task %s: %v", e.Task, e.Cause)
}

func (e *GenerationFailure) Unwrap() error {
	return e.Cause
}
