// Package apperr defines the user-recoverable error kinds shared by the
// ledger, workout and conversation packages.
//
// Both kinds carry a message that is safe to show to the user. The router
// reads Code() when it logs handler summaries.
package apperr

import (
	"errors"
	"fmt"
)

// ParseError reports malformed user input that could not be decoded.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Input, e.Reason)
}

// Code identifies the error kind in logs.
func (e *ParseError) Code() string { return "parse_error" }

// ValidationError reports well-formed input that cannot be applied.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Code identifies the error kind in logs.
func (e *ValidationError) Code() string { return "validation_error" }

// Parse builds a ParseError.
func Parse(input, reason string) error {
	return &ParseError{Input: input, Reason: reason}
}

// Invalid builds a ValidationError with a user-facing message.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsParse reports whether err wraps a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UserMessage extracts the user-facing message of a ValidationError.
func UserMessage(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	return "", false
}
