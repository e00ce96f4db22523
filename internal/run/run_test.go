package run

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSlug(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input    string
		expected string
	}{
		"plain name": {
			input:    "smoke",
			expected: "smoke",
		},
		"name with spaces": {
			input:    "Smoke Tests v1",
			expected: "smoke-tests-v1",
		},
		"tree-style plan name": {
			input:    "/plans/nightly",
			expected: "plans-nightly",
		},
		"consecutive special chars": {
			input:    "foo---bar___baz",
			expected: "foo-bar-baz",
		},
		"empty name falls back": {
			input:    "",
			expected: "default",
		},
		"special characters only": {
			input:    "!@#$%^&*()",
			expected: "default",
		},
		"truncation at limit": {
			input:    "this is a very long plan name that exceeds the fifty character limit for slugs",
			expected: "this-is-a-very-long-plan-name-that-exceeds-the-fif",
		},
		"numbers preserved": {
			input:    "v1.2.3 nightly",
			expected: "v1-2-3-nightly",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := Slug(tt.input)
			if got != tt.expected {
				t.Errorf("Slug(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNextRunDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	first, err := NextRunDir(root)
	if err != nil {
		t.Fatalf("NextRunDir() error = %v", err)
	}
	if filepath.Base(first) != "run-001" {
		t.Errorf("first run dir = %q, want run-001", filepath.Base(first))
	}

	second, err := NextRunDir(root)
	if err != nil {
		t.Fatalf("NextRunDir() error = %v", err)
	}
	if filepath.Base(second) != "run-002" {
		t.Errorf("second run dir = %q, want run-002", filepath.Base(second))
	}

	info, err := os.Stat(second)
	if err != nil || !info.IsDir() {
		t.Errorf("run dir %q was not created", second)
	}
}

func TestNextRunDir_SkipsGaps(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{"run-001", "run-007"} {
		if err := os.Mkdir(filepath.Join(root, name), 0o755); err != nil {
			t.Fatalf("creating fixture dir: %v", err)
		}
	}

	dir, err := NextRunDir(root)
	if err != nil {
		t.Fatalf("NextRunDir() error = %v", err)
	}
	if filepath.Base(dir) != "run-008" {
		t.Errorf("run dir = %q, want run-008 (one past the highest)", filepath.Base(dir))
	}
}

func TestNextRunDir_IgnoresForeignEntries(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "not-a-run"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "run-999"), []byte("a file, not a dir"), 0o644); err != nil {
		t.Fatal(err)
	}

	dir, err := NextRunDir(root)
	if err != nil {
		t.Fatalf("NextRunDir() error = %v", err)
	}
	if filepath.Base(dir) != "run-001" {
		t.Errorf("run dir = %q, want run-001", filepath.Base(dir))
	}
}

func TestNextRunDir_CreatesRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "nested", "runs")

	dir, err := NextRunDir(root)
	if err != nil {
		t.Fatalf("NextRunDir() error = %v", err)
	}
	if !strings.HasPrefix(dir, root) {
		t.Errorf("run dir %q not under root %q", dir, root)
	}
}

func TestStepDir(t *testing.T) {
	t.Parallel()

	got := StepDir("/runs/run-001", "Smoke Tests", "discover")
	want := filepath.Join("/runs/run-001", "smoke-tests", "discover")
	if got != want {
		t.Errorf("StepDir() = %q, want %q", got, want)
	}
}

func TestDefaultRoot(t *testing.T) {
	t.Parallel()

	root, err := DefaultRoot()
	if err != nil {
		t.Fatalf("DefaultRoot() error = %v", err)
	}
	if !strings.HasSuffix(root, filepath.Join(".scout", "runs")) {
		t.Errorf("DefaultRoot() = %q, want a path ending in .scout/runs", root)
	}
}
