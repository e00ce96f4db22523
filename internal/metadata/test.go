package metadata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MetadataFile is the per-directory file that marks a test.
const MetadataFile = "test.yaml"

// Test is a single test case discovered in a metadata tree.
//
// Name is the tree-rooted identity (`/suite/case`). Path starts equal to
// Name and is rewritten into the execution namespace exactly once by the
// discovery step. Attributes is a flattened view of every scalar or list
// key in the metadata file, used by filter evaluation; map-valued keys
// such as environment do not appear there.
type Test struct {
	Name        string
	Path        string
	Summary     string
	Test        string
	Duration    string
	Environment map[string]string
	Tags        []string
	Tier        string
	Require     []string
	Recommend   []string
	Attributes  map[string][]string
}

// loadTest reads and parses the metadata file at path into a Test named
// name. Unknown scalar and list keys are preserved in Attributes so that
// filters can match on them.
func loadTest(path, name string) (*Test, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	test := &Test{
		Name:       name,
		Path:       name,
		Attributes: make(map[string][]string),
	}

	for key, value := range raw {
		switch key {
		case "summary":
			test.Summary = scalarString(value)
		case "test":
			test.Test = scalarString(value)
		case "duration":
			test.Duration = scalarString(value)
		case "tier":
			test.Tier = scalarString(value)
		case "environment":
			test.Environment = stringMap(value)
		case "tags":
			test.Tags = stringList(value)
		case "require":
			test.Require = stringList(value)
		case "recommend":
			test.Recommend = stringList(value)
		}

		if vals := stringList(value); vals != nil {
			test.Attributes[key] = vals
		}
	}

	return test, nil
}

// scalarString renders a scalar YAML value (string, number, bool) as a
// string. Non-scalar values render empty.
func scalarString(value any) string {
	switch v := value.(type) {
	case nil, map[string]any, []any:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// stringList normalizes a scalar into a one-element list and a YAML
// sequence into its scalar elements. Maps and null values yield nil.
func stringList(value any) []string {
	switch v := value.(type) {
	case nil, map[string]any:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{scalarString(value)}
	}
}

// stringMap converts a YAML mapping with scalar values into a string map.
func stringMap(value any) map[string]string {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for key, item := range m {
		out[key] = scalarString(item)
	}
	return out
}
