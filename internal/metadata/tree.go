// Package metadata implements the metadata tree: a directory hierarchy in
// which every directory holding a test.yaml file is a test. Trees are
// scanned eagerly and queried with name patterns and filter expressions.
package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Tree is a scanned metadata tree rooted at a directory.
type Tree struct {
	root  string
	tests []*Test
}

// NewTree scans the tree rooted at root. Directories are visited in
// sorted order so repeated scans of the same tree yield identical
// results. Hidden directories and .git are skipped. An unreadable
// directory or invalid metadata file fails the whole scan.
func NewTree(root string) (*Tree, error) {
	tree := &Tree{root: root}
	if err := tree.scan(root, "/"); err != nil {
		return nil, err
	}
	sort.Slice(tree.tests, func(i, j int) bool {
		return tree.tests[i].Name < tree.tests[j].Name
	})
	return tree, nil
}

// Root returns the directory the tree was scanned from.
func (t *Tree) Root() string {
	return t.root
}

func (t *Tree) scan(dir, name string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			child := name + "/" + entry.Name()
			if name == "/" {
				child = "/" + entry.Name()
			}
			if err := t.scan(filepath.Join(dir, entry.Name()), child); err != nil {
				return err
			}
			continue
		}
		if entry.Name() != MetadataFile {
			continue
		}
		test, err := loadTest(filepath.Join(dir, entry.Name()), name)
		if err != nil {
			return err
		}
		t.tests = append(t.tests, test)
	}

	return nil
}

// Tests returns the tests selected by the given name patterns and filter
// expressions, in name order. With no patterns every test passes the name
// check; with patterns at least one must match. Every filter expression
// must match. An invalid regex or filter aborts the query.
func (t *Tree) Tests(names, filters []string) ([]*Test, error) {
	patterns := make([]*regexp.Regexp, 0, len(names))
	for _, name := range names {
		re, err := regexp.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("invalid test name pattern %q: %w", name, err)
		}
		patterns = append(patterns, re)
	}

	matchers := make([]*Filter, 0, len(filters))
	for _, expr := range filters {
		f, err := ParseFilter(expr)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, f)
	}

	var selected []*Test
	for _, test := range t.tests {
		if len(patterns) > 0 && !matchesName(patterns, test.Name) {
			continue
		}
		if !matchesFilters(matchers, test.Attributes) {
			continue
		}
		selected = append(selected, test)
	}
	return selected, nil
}

// matchesName reports whether any pattern matches the test name or one of
// its ancestor directory names. Matching ancestors lets a pattern anchored
// on a directory, like ^/suite$, select every test below that directory
// without accidentally catching /suite-extra.
func matchesName(patterns []*regexp.Regexp, name string) bool {
	candidates := ancestry(name)
	for _, re := range patterns {
		for _, candidate := range candidates {
			if re.MatchString(candidate) {
				return true
			}
		}
	}
	return false
}

// ancestry lists name and every ancestor directory above it, excluding
// the tree root itself: /a/b/c yields [/a/b/c /a/b /a].
func ancestry(name string) []string {
	candidates := []string{name}
	for {
		idx := strings.LastIndex(name, "/")
		if idx <= 0 {
			return candidates
		}
		name = name[:idx]
		candidates = append(candidates, name)
	}
}

func matchesFilters(filters []*Filter, attrs map[string][]string) bool {
	for _, f := range filters {
		if !f.Match(attrs) {
			return false
		}
	}
	return true
}
