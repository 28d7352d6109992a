// Package longevity aggregates line lifetime records into per-author and
// repository-wide average line age statistics.
package longevity

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Identities is the explicit set of tracked author identities. Each tracked
// identity owns one or more lowercase names and emails; matching is loose,
// so a commit matches when either its author name or email is known.
type Identities struct {
	dict  map[string]int
	names []string
}

// ParseIdentities builds the tracked set from entries of the form
// "Display Name|email|alias@example.com". A bare entry with no separator is
// matched as both name and email.
func ParseIdentities(entries []string) *Identities {
	ids := &Identities{dict: make(map[string]int)}

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, "|")
		idx := len(ids.names)
		ids.names = append(ids.names, parts[0])

		for _, part := range parts {
			ids.dict[strings.ToLower(strings.TrimSpace(part))] = idx
		}
	}

	return ids
}

// LoadIdentities reads one identity entry per line from a file, in the same
// "Name|email|email" format as ParseIdentities. Blank lines and lines
// starting with '#' are skipped.
func LoadIdentities(path string) (*Identities, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load identities: %w", err)
	}
	defer file.Close()

	var entries []string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entries = append(entries, line)
	}

	if scanErr := scanner.Err(); scanErr != nil {
		return nil, fmt.Errorf("load identities: %w", scanErr)
	}

	return ParseIdentities(entries), nil
}

// Match resolves an author signature to a tracked identity index.
func (ids *Identities) Match(name, email string) (int, bool) {
	if ids == nil {
		return 0, false
	}

	idx, ok := ids.dict[strings.ToLower(email)]
	if !ok {
		idx, ok = ids.dict[strings.ToLower(name)]
	}

	return idx, ok
}

// Count returns the number of tracked identities.
func (ids *Identities) Count() int {
	if ids == nil {
		return 0
	}

	return len(ids.names)
}

// Name returns the display name of the identity at idx.
func (ids *Identities) Name(idx int) string {
	return ids.names[idx]
}
