package filter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// compiledPattern is a validated doublestar glob with rsync-style anchoring.
type compiledPattern struct {
	glob     string
	original string
	dirOnly  bool // pattern ends with /
}

// compilePattern turns an rsync-style pattern into a doublestar glob.
// A leading / or any inner / anchors the pattern at the root; otherwise it
// may match at any depth.
func compilePattern(pattern string) (*compiledPattern, error) {
	cp := &compiledPattern{original: pattern}

	p := pattern
	if strings.HasSuffix(p, "/") {
		cp.dirOnly = true
		p = strings.TrimSuffix(p, "/")
	}
	if p == "" {
		return nil, fmt.Errorf("empty pattern %q", pattern)
	}

	switch {
	case strings.HasPrefix(p, "/"):
		p = strings.TrimPrefix(p, "/")
	case strings.Contains(p, "/"):
		// Inner slash anchors as well, rsync rules.
	default:
		p = "**/" + p
	}

	if !doublestar.ValidatePattern(p) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	cp.glob = p
	return cp, nil
}

// match tests whether a relative path matches this pattern.
func (cp *compiledPattern) match(relPath string, isDir bool) bool {
	if cp.dirOnly && !isDir {
		return false
	}
	ok, err := doublestar.Match(cp.glob, filepath.ToSlash(relPath))
	return err == nil && ok
}

func (cp *compiledPattern) String() string { return cp.original }
