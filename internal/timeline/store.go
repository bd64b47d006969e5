// Package timeline holds the process-wide report configuration: the ordered
// set of HH:MM points and their annotation labels.
package timeline

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

var clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// IsValidPoint reports whether s is a zero-padded 24-hour HH:MM string.
func IsValidPoint(s string) bool {
	return clockRe.MatchString(s)
}

// Config pairs a timeline with its annotations. Points are unique and sorted
// ascending; lexicographic order is chronological for zero-padded HH:MM.
type Config struct {
	Points      []string          `json:"timeline"`
	Annotations map[string]string `json:"annotations"`
}

// Clone returns a deep copy so callers can hold a snapshot safely.
func (c Config) Clone() Config {
	out := Config{
		Points:      append([]string(nil), c.Points...),
		Annotations: make(map[string]string, len(c.Annotations)),
	}
	for k, v := range c.Annotations {
		out.Annotations[k] = v
	}
	return out
}

// Store is the mutable configuration shared by all jobs. Jobs snapshot it at
// submission; a write only affects later submissions.
type Store struct {
	mu      sync.RWMutex
	current Config
}

// NewStore seeds the store from the built-in defaults. Defaults pass through
// the same sanitization as writes.
func NewStore(defaults Config) *Store {
	return &Store{current: sanitize(defaults)}
}

// Read returns a snapshot of the current configuration.
func (s *Store) Read() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Write validates the candidate and replaces the configuration wholesale.
// Invalid points and annotations are silently discarded rather than failing
// the write. The accepted, sanitized configuration is returned.
func (s *Store) Write(candidate Config) Config {
	next := sanitize(candidate)

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	return next.Clone()
}

// sanitize trims, validates, deduplicates and sorts the timeline, and keeps
// only annotations with a valid HH:MM key and a non-empty trimmed label.
func sanitize(c Config) Config {
	out := Config{Annotations: make(map[string]string)}

	seen := make(map[string]bool)
	for _, p := range c.Points {
		p = strings.TrimSpace(p)
		if !IsValidPoint(p) || seen[p] {
			continue
		}
		seen[p] = true
		out.Points = append(out.Points, p)
	}
	sort.Strings(out.Points)

	for k, v := range c.Annotations {
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if !IsValidPoint(k) || v == "" {
			continue
		}
		out.Annotations[k] = v
	}
	return out
}
