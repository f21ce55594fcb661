package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadFile reads filter rules from a file and adds them to the chain.
func (c *Chain) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open filter file: %w", err)
	}
	defer f.Close()

	if err := c.ReadRules(f); err != nil {
		return fmt.Errorf("filter file %s: %w", path, err)
	}
	return nil
}

// ReadRules parses one rule per line:
//
//	- pattern   exclude
//	+ pattern   include
//	pattern     exclude
//	hidden      exclude hidden entries
//	# comment
//
// Blank lines are skipped.
func (c *Chain) ReadRules(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var err error
		switch {
		case line == "hidden":
			c.SetExcludeHidden(true)
		case strings.HasPrefix(line, "+ "):
			err = c.AddInclude(strings.TrimSpace(line[2:]))
		case strings.HasPrefix(line, "- "):
			err = c.AddExclude(strings.TrimSpace(line[2:]))
		default:
			err = c.AddExclude(line)
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	return scanner.Err()
}
