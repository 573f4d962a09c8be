// Package prefixes loads prefix lists from plain-text sources, one prefix
// per line. The whole list is read into memory before the matcher is built.
package prefixes

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads prefixes from r. Lines are trimmed of surrounding whitespace
// and empty lines are dropped.
func Load(r io.Reader) ([]string, error) {
	var prefixes []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		prefixes = append(prefixes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading prefixes: %w", err)
	}

	return prefixes, nil
}

// LoadFile reads prefixes from the file at path.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening prefix file: %w", err)
	}
	defer f.Close()

	prefixes, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("prefix file %s: %w", path, err)
	}
	return prefixes, nil
}
