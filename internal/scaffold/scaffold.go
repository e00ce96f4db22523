// Package scaffold writes starter plan and test files so a fresh
// project can run discovery immediately.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
)

// Template selects how much scaffolding Init writes.
type Template string

const (
	// TemplateMini writes a minimal local plan.
	TemplateMini Template = "mini"
	// TemplateBase adds an example test to the mini plan.
	TemplateBase Template = "base"
	// TemplateFull adds a remote plan showing clone mode selection.
	TemplateFull Template = "full"
)

// ParseTemplate validates a template name. The empty string selects the
// base template.
func ParseTemplate(name string) (Template, error) {
	switch Template(name) {
	case "":
		return TemplateBase, nil
	case TemplateMini, TemplateBase, TemplateFull:
		return Template(name), nil
	default:
		return "", fmt.Errorf("unknown template %q (available: mini, base, full)", name)
	}
}

// Options configure Init.
type Options struct {
	// Root is the directory receiving the scaffolding.
	Root string
	// Template picks the file set; empty means base.
	Template Template
	// Force overwrites existing files.
	Force bool
}

// Result lists what Init wrote and what it left alone, as root-relative
// paths in creation order.
type Result struct {
	Created []string
	Skipped []string
}

type starterFile struct {
	path    string
	content string
}

// fileSet returns the scaffolding for a template in creation order.
func fileSet(template Template) []starterFile {
	set := []starterFile{
		{path: filepath.Join("plans", "default.yaml"), content: defaultPlan},
	}
	if template == TemplateBase || template == TemplateFull {
		set = append(set, starterFile{
			path:    filepath.Join("tests", "example", "test.yaml"),
			content: exampleTest,
		})
	}
	if template == TemplateFull {
		set = append(set, starterFile{
			path:    filepath.Join("plans", "remote.yaml"),
			content: remotePlan,
		})
	}
	return set
}

// Init writes the starter files for the chosen template. Existing files
// are skipped unless Force is set, so re-running init never destroys
// local edits.
func Init(opts Options) (*Result, error) {
	template := opts.Template
	if template == "" {
		template = TemplateBase
	}
	root := opts.Root
	if root == "" {
		root = "."
	}

	result := &Result{}
	for _, f := range fileSet(template) {
		dest := filepath.Join(root, f.path)
		if !opts.Force {
			if _, err := os.Stat(dest); err == nil {
				result.Skipped = append(result.Skipped, f.path)
				continue
			}
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, []byte(f.content), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", dest, err)
		}
		result.Created = append(result.Created, f.path)
	}
	return result, nil
}

const defaultPlan = `# Discovery plan for this repository. Try it with:
#   scout discover --plan plans/default.yaml
summary: Discover every local test
discover:
  path: .
`

const exampleTest = `test: ./run.sh
summary: Example test, replace with something real
tier: 1
tags:
  - example
`

const remotePlan = `# Clone mode: acquire tests from another repository at a fixed ref,
# then keep only tier 1 tests.
summary: Discover tier 1 tests from a remote repository
discover:
  url: https://example.com/tests.git
  ref: main
  filter:
    - "tier: 1"
`
