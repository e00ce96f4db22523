package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FakeBinary writes an executable stub under a temp directory. The stub
// appends its arguments to the returned args file (one invocation per
// line), prints the given streams, and exits with code. Point
// vcs.WithBinary at the returned path to simulate git outcomes without
// a repository.
func FakeBinary(t *testing.T, name string, code int, stdout, stderr string) (path, argsFile string) {
	t.Helper()

	dir := t.TempDir()
	path = filepath.Join(dir, name)
	argsFile = filepath.Join(dir, name+".args")

	script := fmt.Sprintf(`#!/bin/sh
echo "$@" >> %s
printf '%%s' %s
printf '%%s' %s >&2
exit %d
`, shellQuote(argsFile), shellQuote(stdout), shellQuote(stderr), code)

	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fake %s: %v", name, err)
	}
	return path, argsFile
}

// RecordedArgs returns the argument lines the fake binary captured so
// far, one invocation per element.
func RecordedArgs(t *testing.T, argsFile string) []string {
	t.Helper()

	data, err := os.ReadFile(argsFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("reading recorded args: %v", err)
	}

	var lines []string
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// shellQuote single-quotes s for safe embedding in a shell script.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
