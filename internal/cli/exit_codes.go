package cli

import (
	"fmt"

	"github.com/pipeforge/scout/internal/errors"
)

// Exit codes for the scout CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitDiscoveryFailed indicates discovery failed for at least one plan
	ExitDiscoveryFailed = 1

	// ExitUsage indicates the command line could not be parsed
	ExitUsage = 2

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitMissingPrerequisites indicates required tools or paths are missing
	ExitMissingPrerequisites = 4
)

// exitError is a custom error type that carries an exit code.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// ExitCode returns the exit code from an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if e, ok := err.(*exitError); ok {
		return e.code
	}
	return ExitDiscoveryFailed
}

// exitCodeForKind maps a discovery error kind onto an exit code. Bad
// arguments and missing prerequisites get their own codes; everything
// else is a discovery failure.
func exitCodeForKind(kind errors.Kind) int {
	switch kind {
	case errors.Usage:
		return ExitInvalidArguments
	case errors.Prerequisite:
		return ExitMissingPrerequisites
	default:
		return ExitDiscoveryFailed
	}
}
