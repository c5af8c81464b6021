// Package errors provides structured error handling for palimpsest.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitAuth       = 3 // Decryption or credential failure
	ExitNotFound   = 4 // Resource not found
	ExitContention = 5 // Lock contention or concurrent-update failure
)

// PalimpsestError is the structured error type for palimpsest.
type PalimpsestError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *PalimpsestError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *PalimpsestError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for PalimpsestError.
func (e *PalimpsestError) Is(target error) bool {
	var t *PalimpsestError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &PalimpsestError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &PalimpsestError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	// ErrDecryptionFailed deliberately carries no detail about which stage
	// failed. Wrong password, wrong credential, and absent document all
	// surface as this one error.
	ErrDecryptionFailed = &PalimpsestError{
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed",
		ExitCode: ExitAuth,
	}

	ErrContainerNotFound = &PalimpsestError{
		Code:     "CONTAINER_NOT_FOUND",
		Message:  "container file not found",
		ExitCode: ExitNotFound,
	}

	ErrContainerExists = &PalimpsestError{
		Code:     "CONTAINER_EXISTS",
		Message:  "container file already exists",
		ExitCode: ExitInput,
	}

	ErrFormat = &PalimpsestError{
		Code:     "FORMAT_ERROR",
		Message:  "unrecognized container format",
		ExitCode: ExitInput,
	}

	ErrInvalidMnemonic = &PalimpsestError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitInput,
	}

	ErrLockTimeout = &PalimpsestError{
		Code:     "LOCK_TIMEOUT",
		Message:  "could not acquire container lock",
		ExitCode: ExitContention,
	}

	ErrRollbackFailed = &PalimpsestError{
		Code:     "ROLLBACK_FAILED",
		Message:  "update rollback failed - container may need manual recovery",
		ExitCode: ExitContention,
	}

	ErrIO = &PalimpsestError{
		Code:     "IO_ERROR",
		Message:  "file operation failed",
		ExitCode: ExitGeneral,
	}

	// Config-specific errors.
	ErrConfigNotFound = &PalimpsestError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &PalimpsestError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrUnknownConfigKey = &PalimpsestError{
		Code:     "UNKNOWN_CONFIG_KEY",
		Message:  "unknown config key",
		ExitCode: ExitInput,
	}
)

// New creates a new PalimpsestError with the given code and message.
func New(code, message string) *PalimpsestError {
	return &PalimpsestError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var pe *PalimpsestError
	if errors.As(err, &pe) {
		return &PalimpsestError{
			Code:       pe.Code,
			Message:    fmt.Sprintf("%s: %s", msg, pe.Message),
			Details:    pe.Details,
			Suggestion: pe.Suggestion,
			Cause:      err,
			ExitCode:   pe.ExitCode,
		}
	}

	return &PalimpsestError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var pe *PalimpsestError
	if errors.As(err, &pe) {
		return &PalimpsestError{
			Code:       pe.Code,
			Message:    pe.Message,
			Details:    details,
			Suggestion: pe.Suggestion,
			Cause:      pe.Cause,
			ExitCode:   pe.ExitCode,
		}
	}

	return &PalimpsestError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var pe *PalimpsestError
	if errors.As(err, &pe) {
		return &PalimpsestError{
			Code:       pe.Code,
			Message:    pe.Message,
			Details:    pe.Details,
			Suggestion: suggestion,
			Cause:      pe.Cause,
			ExitCode:   pe.ExitCode,
		}
	}

	return &PalimpsestError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var pe *PalimpsestError
	if errors.As(err, &pe) {
		return pe.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var pe *PalimpsestError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
