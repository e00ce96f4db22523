package errors

import "fmt"

// Common error messages for the scout CLI.
// These templates ensure consistent, actionable error messages.

// PathNotDirectory creates an error for a configured metadata path that is
// not a directory on disk.
func PathNotDirectory(path string) *DiscoveryError {
	return NewConfigError(
		fmt.Sprintf("Provided path '%s' is not a directory.", path),
		"Check that the path exists and points to a directory",
		"Relative paths resolve against the current working directory",
	)
}

// TreePathNotFound creates an error for a metadata root missing after
// acquisition. When the path came from configuration the error is a
// configuration error, otherwise a metadata tree error.
func TreePathNotFound(treeRoot string, configured bool) *DiscoveryError {
	msg := fmt.Sprintf("Metadata tree path '%s' not found.", treeRoot)
	if configured {
		return NewConfigError(msg,
			"Check the 'path' option against the repository layout",
			"The path is resolved inside the acquired sources",
		)
	}
	return NewTreeNotFoundError(msg,
		"Check that the acquired sources contain a metadata tree",
	)
}

// GitNotFound creates an error when the git binary is not installed.
func GitNotFound() *DiscoveryError {
	return NewPrerequisiteError(
		"git command not found",
		"Install git with your package manager (e.g., dnf install git)",
		"Or check that git is in your PATH",
		"Verify installation with: git --version",
	)
}

// PlanFileNotFound creates an error for a missing plan file.
func PlanFileNotFound(path string) *DiscoveryError {
	return NewConfigError(
		fmt.Sprintf("plan file not found: %s", path),
		"Check the path passed to --plan",
		"Plan files are YAML documents with a 'discover' block",
	)
}

// PlanParseError creates an error for an invalid plan file.
func PlanParseError(path string, err error) *DiscoveryError {
	return WrapWithMessage(err, Configuration,
		fmt.Sprintf("failed to parse plan file: %s", path),
		"Check the file for YAML syntax errors",
		"Legacy JSON plans must be valid JSON documents",
	)
}

// CloneFailed creates an error when cloning the test source repository fails.
func CloneFailed(url string, err error) *DiscoveryError {
	return WrapWithMessage(err, Acquisition,
		fmt.Sprintf("failed to clone '%s'", url),
		"Check that the URL is reachable from this host",
		"Authentication setup is out of scope; use an accessible URL",
	)
}

// CheckoutFailed creates an error when checking out the requested ref fails.
func CheckoutFailed(ref string, err error) *DiscoveryError {
	return WrapWithMessage(err, Acquisition,
		fmt.Sprintf("failed to checkout ref '%s'", ref),
		"Check that the ref exists in the acquired repository",
		"List refs with: git ls-remote <url>",
	)
}

// CopyFailed creates an error when copying local sources into the workdir fails.
func CopyFailed(src string, err error) *DiscoveryError {
	return WrapWithMessage(err, Acquisition,
		fmt.Sprintf("failed to copy sources from '%s'", src),
		"Check permissions on the source tree and the working directory",
	)
}

// ReferenceFailed creates an error when adding or fetching the reference
// repository fails.
func ReferenceFailed(url string, err error) *DiscoveryError {
	return WrapWithMessage(err, Diff,
		fmt.Sprintf("failed to fetch reference repository '%s'", url),
		"Check that the reference URL is reachable",
		"Drop --reference-url to diff against a local ref instead",
	)
}

// DiffFailed creates an error when listing changed files fails.
func DiffFailed(ref string, err error) *DiscoveryError {
	return WrapWithMessage(err, Diff,
		fmt.Sprintf("failed to list changes since '%s'", ref),
		"Check that the reference ref exists in the acquired repository",
	)
}

// DependencyResolveFailed creates an error when the library dependency
// resolver fails for a test.
func DependencyResolveFailed(testName string, err error) *DiscoveryError {
	return WrapWithMessage(err, Dependency,
		fmt.Sprintf("failed to resolve library dependencies for test '%s'", testName),
		"Check the test's require/recommend entries",
	)
}

// InvalidNamePattern creates an error for a test name pattern that does not
// compile as a regular expression.
func InvalidNamePattern(pattern string, err error) *DiscoveryError {
	return WrapWithMessage(err, Selection,
		fmt.Sprintf("invalid test name pattern '%s'", pattern),
		"Name patterns are regular expressions",
		"Quote shell metacharacters: scout discover -t '^/tests/smoke$'",
	)
}

// InvalidFilter creates an error for an unparsable filter expression.
func InvalidFilter(filter string, err error) *DiscoveryError {
	return WrapWithMessage(err, Selection,
		fmt.Sprintf("invalid filter expression '%s'", filter),
		"Filters use 'key: value' terms joined with '&' and '|'",
		"Example: scout discover -F 'tier: 1 & tags: smoke'",
	)
}

// WorkdirNotWritable creates an error when the working directory cannot be
// created or written.
func WorkdirNotWritable(path string, err error) *DiscoveryError {
	return WrapWithMessage(err, Acquisition,
		fmt.Sprintf("cannot write to working directory '%s'", path),
		"Check permissions: ls -la "+path,
		"Override the location with --workdir",
	)
}

// WatchRequiresLocalSource creates an error when --watch is combined with a
// remote url.
func WatchRequiresLocalSource() *DiscoveryError {
	return NewUsageError(
		"--watch requires a local source (url must be unset)",
		"Drop --watch, or discover from a local path instead of a url",
	)
}

// InvalidFlagCombination creates an error for incompatible flag combinations.
func InvalidFlagCombination(flags string, reason string) *DiscoveryError {
	return NewUsageError(
		fmt.Sprintf("invalid flag combination: %s", flags),
		reason,
		"Use 'scout <command> --help' to see valid options",
	)
}
