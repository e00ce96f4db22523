// Package errors provides structured error handling for the scout CLI.
// It includes categorized errors with actionable remediation guidance.
package errors

import "fmt"

// Kind represents the type of error that occurred.
type Kind int

const (
	// Usage errors are caused by invalid or missing command arguments.
	Usage Kind = iota
	// Configuration errors are caused by invalid or missing configuration,
	// including a configured metadata path that does not resolve to a directory.
	Configuration
	// Prerequisite errors occur when required tools or files are missing.
	Prerequisite
	// Acquisition errors occur while cloning, checking out, or copying
	// test sources into the working directory.
	Acquisition
	// TreeNotFound errors occur when the resolved metadata root does not
	// exist after acquisition.
	TreeNotFound
	// Selection errors occur while scanning or querying the metadata tree.
	Selection
	// Diff errors occur while adding, fetching, or diffing against the
	// reference repository.
	Diff
	// Dependency errors occur when the library dependency resolver fails.
	Dependency
)

// String returns a human-readable name for the error kind.
func (k Kind) String() string {
	switch k {
	case Usage:
		return "Usage Error"
	case Configuration:
		return "Configuration Error"
	case Prerequisite:
		return "Prerequisite Error"
	case Acquisition:
		return "Acquisition Error"
	case TreeNotFound:
		return "Metadata Tree Error"
	case Selection:
		return "Selection Error"
	case Diff:
		return "Reference Diff Error"
	case Dependency:
		return "Dependency Error"
	default:
		return "Error"
	}
}

// DiscoveryError is a structured error with kind and remediation guidance.
type DiscoveryError struct {
	// Kind is the type of error (Configuration, Acquisition, etc.)
	Kind Kind
	// Message is a human-readable description of what went wrong.
	Message string
	// Remediation is a list of actionable steps to resolve the error.
	Remediation []string
	// UsageLine shows the correct command syntax (optional, for usage errors).
	UsageLine string
	// Err is the underlying cause, preserved for errors.Is/As chains.
	Err error
}

// Error implements the error interface.
func (e *DiscoveryError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// NewUsageError creates a new usage error with the given message and remediation steps.
func NewUsageError(message string, remediation ...string) *DiscoveryError {
	return &DiscoveryError{
		Kind:        Usage,
		Message:     message,
		Remediation: remediation,
	}
}

// NewUsageErrorWithSyntax creates a new usage error that includes correct command syntax.
func NewUsageErrorWithSyntax(message, usage string, remediation ...string) *DiscoveryError {
	return &DiscoveryError{
		Kind:        Usage,
		Message:     message,
		UsageLine:   usage,
		Remediation: remediation,
	}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, remediation ...string) *DiscoveryError {
	return &DiscoveryError{
		Kind:        Configuration,
		Message:     message,
		Remediation: remediation,
	}
}

// NewPrerequisiteError creates a new prerequisite error.
func NewPrerequisiteError(message string, remediation ...string) *DiscoveryError {
	return &DiscoveryError{
		Kind:        Prerequisite,
		Message:     message,
		Remediation: remediation,
	}
}

// NewTreeNotFoundError creates a new metadata tree error.
func NewTreeNotFoundError(message string, remediation ...string) *DiscoveryError {
	return &DiscoveryError{
		Kind:        TreeNotFound,
		Message:     message,
		Remediation: remediation,
	}
}

// Wrap wraps an existing error with a DiscoveryError, preserving the original message.
func Wrap(err error, kind Kind, remediation ...string) *DiscoveryError {
	if err == nil {
		return nil
	}
	return &DiscoveryError{
		Kind:        kind,
		Message:     err.Error(),
		Remediation: remediation,
		Err:         err,
	}
}

// WrapWithMessage wraps an error with a custom message and kind.
func WrapWithMessage(err error, kind Kind, message string, remediation ...string) *DiscoveryError {
	if err == nil {
		return nil
	}
	return &DiscoveryError{
		Kind:        kind,
		Message:     fmt.Sprintf("%s: %v", message, err),
		Remediation: remediation,
		Err:         err,
	}
}

// IsDiscoveryError checks if an error is a DiscoveryError.
func IsDiscoveryError(err error) bool {
	_, ok := err.(*DiscoveryError)
	return ok
}

// AsDiscoveryError attempts to convert an error to a DiscoveryError.
// Returns nil if the error is not a DiscoveryError.
func AsDiscoveryError(err error) *DiscoveryError {
	discErr, ok := err.(*DiscoveryError)
	if ok {
		return discErr
	}
	return nil
}
