// Package filter decides which entries a tree operation sees.
package filter

import "strings"

// HiddenPrefix marks a hidden entry on Unix-like systems.
const HiddenPrefix = "."

// Rule is a single include or exclude rule.
type Rule struct {
	Pattern *compiledPattern
	Include bool
}

// Chain holds an ordered list of rules, an optional hidden-entry rule and
// size bounds. A nil *Chain matches everything.
type Chain struct {
	rules         []Rule
	excludeHidden bool
	minSize       int64
	maxSize       int64
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude adds an exclude rule for the given pattern.
func (c *Chain) AddExclude(pattern string) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp})
	return nil
}

// AddInclude adds an include rule for the given pattern.
func (c *Chain) AddInclude(pattern string) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp, Include: true})
	return nil
}

// SetExcludeHidden drops every entry whose name starts with HiddenPrefix,
// along with everything beneath it. It is checked before any rule.
func (c *Chain) SetExcludeHidden(v bool) {
	c.excludeHidden = v
}

// SetMinSize sets the minimum file size filter.
func (c *Chain) SetMinSize(n int64) {
	c.minSize = n
}

// SetMaxSize sets the maximum file size filter.
func (c *Chain) SetMaxSize(n int64) {
	c.maxSize = n
}

// Empty reports whether the chain would let every entry through.
func (c *Chain) Empty() bool {
	return c == nil || (len(c.rules) == 0 && !c.excludeHidden && c.minSize == 0 && c.maxSize == 0)
}

// MatchName applies only the hidden-entry rule. It needs no metadata, so
// the engine calls it before classifying an entry.
func (c *Chain) MatchName(name string) bool {
	if c == nil || !c.excludeHidden {
		return true
	}
	return !IsHidden(name)
}

// Match returns true if the entry should be INCLUDED. relPath is relative
// to the operation root, isDir marks directories and size is ignored for
// them.
func (c *Chain) Match(relPath string, isDir bool, size int64) bool {
	if c == nil {
		return true
	}
	if !c.MatchName(baseName(relPath)) {
		return false
	}

	if !isDir {
		if c.minSize > 0 && size < c.minSize {
			return false
		}
		if c.maxSize > 0 && size > c.maxSize {
			return false
		}
	}

	// First matching rule wins.
	for _, rule := range c.rules {
		if rule.Pattern.match(relPath, isDir) {
			return rule.Include
		}
	}
	return true
}

// IsHidden reports whether name is a hidden entry name.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, HiddenPrefix)
}

func baseName(relPath string) string {
	relPath = strings.TrimRight(relPath, "/")
	if i := strings.LastIndexAny(relPath, `/\`); i >= 0 {
		return relPath[i+1:]
	}
	return relPath
}
