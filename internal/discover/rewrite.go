package discover

import (
	"path"
	"strings"
)

// Rewriter moves test paths under an execution namespace prefix. The
// step applies it exactly once per selected test; Applied makes a
// double application detectable.
type Rewriter struct {
	// Prefix is the namespace prepended to every path, e.g. /tests/suite.
	Prefix string
}

// Apply returns p moved under the prefix. The result is always rooted
// and normalized; an empty prefix leaves the path unchanged apart from
// normalization.
func (r Rewriter) Apply(p string) string {
	return path.Clean("/" + r.Prefix + "/" + strings.TrimPrefix(p, "/"))
}

// Applied reports whether p already lives under the prefix.
func (r Rewriter) Applied(p string) bool {
	prefix := path.Clean("/" + r.Prefix)
	if prefix == "/" {
		return true
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
