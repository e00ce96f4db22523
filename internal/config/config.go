// Package config loads discovery plans for the scout CLI using koanf.
// A plan is a YAML document with a summary and a discover block; legacy
// JSON plans are still accepted with a deprecation warning. Values load
// with priority: environment variables > plan file > defaults, with
// command-line flags applied on top by the CLI.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pipeforge/scout/internal/errors"
)

// DefaultRef is the branch assumed when a ref is required but not given.
const DefaultRef = "main"

// Discover holds the discovery step configuration. It is immutable after
// load and finalize; the step never writes it back.
type Discover struct {
	// URL is the repository to clone tests from. Empty selects local mode.
	URL string `koanf:"url"`
	// Ref is the revision to check out after acquisition. Defaults to
	// DefaultRef only when URL is set; empty otherwise.
	Ref string `koanf:"ref"`
	// Path points at the metadata tree root inside the sources. In local
	// mode it doubles as the source directory to copy from.
	Path string `koanf:"path"`
	// Tests holds regular expressions selecting tests by name.
	Tests []string `koanf:"test"`
	// Filters holds attribute filter expressions; all must match.
	Filters []string `koanf:"filter"`
	// OnlyModified restricts selection to tests under directories touched
	// since ReferenceRef.
	OnlyModified bool `koanf:"only_modified"`
	// ReferenceURL is an extra repository fetched under the remote name
	// "reference" before diffing.
	ReferenceURL string `koanf:"reference_url"`
	// ReferenceRef is the revision the modified set is computed against.
	ReferenceRef string `koanf:"reference_ref"`

	// DEPRECATED: Use url instead.
	Repository string `koanf:"repository"`
	// DEPRECATED: Use ref instead.
	Revision string `koanf:"revision"`
}

// Plan is a named discovery plan loaded from a plan file.
type Plan struct {
	// Name is the plan file stem, or "default" for flag-only plans.
	Name string `koanf:"-"`
	// Summary is a one-line description of the plan.
	Summary string `koanf:"summary"`
	// Discover is the discovery step configuration.
	Discover Discover `koanf:"discover"`
}

// LoadOptions configures how plans are loaded.
type LoadOptions struct {
	// WarningWriter receives deprecation warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses deprecation warnings
	SkipWarnings bool
}

// LoadPlan loads a plan file with default options.
func LoadPlan(path string) (*Plan, error) {
	return LoadPlanWithOptions(path, LoadOptions{})
}

// LoadPlanWithOptions loads a plan file, layering defaults, the file
// itself, and SCOUT_* environment overrides, then finalizing the
// discover block.
func LoadPlanWithOptions(path string, opts LoadOptions) (*Plan, error) {
	warningWriter := getWarningWriter(opts.WarningWriter)

	if !fileExists(path) {
		return nil, errors.PlanFileNotFound(path)
	}

	k := koanf.New(".")
	loadDefaults(k)

	if err := loadPlanFile(k, path, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}
	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	if !k.Exists("discover") {
		return nil, errors.NewConfigError(
			fmt.Sprintf("plan file '%s' has no 'discover' block", path),
			"Add a discover block with at least a url or path entry",
		)
	}

	plan, err := finalizePlan(k, warningWriter, opts.SkipWarnings)
	if err != nil {
		return nil, errors.PlanParseError(path, err)
	}
	plan.Name = PlanName(path)
	return plan, nil
}

// EmptyPlan builds the anonymous plan used when no plan file is given:
// defaults plus environment overrides, ready for flag overrides.
func EmptyPlan() (*Plan, error) {
	k := koanf.New(".")
	loadDefaults(k)

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	plan, err := finalizePlan(k, io.Discard, true)
	if err != nil {
		return nil, errors.Wrap(err, errors.Configuration)
	}
	plan.Name = "default"
	return plan, nil
}

// PlanName derives a plan name from the plan file path: the base name
// without its extension.
func PlanName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadPlanFile loads a single plan file. YAML is the native format;
// .json files still load for backward compatibility with a warning.
func loadPlanFile(k *koanf.Koanf, path string, warningWriter io.Writer, skipWarnings bool) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return errors.PlanParseError(path, err)
		}
		if !skipWarnings {
			fmt.Fprintf(warningWriter, "Warning: Using deprecated JSON plan at %s\n", path)
			fmt.Fprintf(warningWriter, "  Rewrite it as YAML; JSON plan support will be removed.\n\n")
		}
		return nil
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return errors.PlanParseError(path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider("SCOUT_", ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// envTransform converts environment variable names to discover keys.
// Example: SCOUT_ONLY_MODIFIED -> discover.only_modified
func envTransform(s string) string {
	return "discover." + strings.ToLower(strings.TrimPrefix(s, "SCOUT_"))
}

// finalizePlan normalizes list keys, unmarshals, and resolves legacy
// aliases on the discover block.
func finalizePlan(k *koanf.Koanf, warningWriter io.Writer, skipWarnings bool) (*Plan, error) {
	normalizeListKeys(k)

	var plan Plan
	if err := k.Unmarshal("", &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}

	resolveAliases(&plan.Discover, warningWriter, skipWarnings)
	plan.Discover.Finalize()
	return &plan, nil
}

// normalizeListKeys rewrites scalar test/filter values into one-element
// lists so plans can say `test: ^/smoke$` without the list syntax.
func normalizeListKeys(k *koanf.Koanf) {
	for _, key := range []string{"discover.test", "discover.filter"} {
		if value, ok := k.Get(key).(string); ok {
			k.Set(key, []string{value})
		}
	}
}

// resolveAliases maps the deprecated repository/revision keys onto
// url/ref. Canonical keys win when both are present; warnings only fire
// when a legacy key actually takes effect.
func resolveAliases(d *Discover, warningWriter io.Writer, skipWarnings bool) {
	if d.URL == "" && d.Repository != "" {
		d.URL = d.Repository
		if !skipWarnings {
			fmt.Fprintf(warningWriter, "Warning: 'repository' is deprecated. Use 'url' instead.\n")
		}
	}
	if d.Ref == "" && d.Revision != "" {
		d.Ref = d.Revision
		if !skipWarnings {
			fmt.Fprintf(warningWriter, "Warning: 'revision' is deprecated. Use 'ref' instead.\n")
		}
	}
	d.Repository = ""
	d.Revision = ""
}

// Finalize applies defaulting to a discover config assembled outside the
// plan loader, for example from command-line flags. Ref only defaults
// when a url is set: local sources are used as they are.
func (d *Discover) Finalize() {
	if d.URL != "" && d.Ref == "" {
		d.Ref = DefaultRef
	}
	if d.ReferenceRef == "" {
		d.ReferenceRef = DefaultRef
	}
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
