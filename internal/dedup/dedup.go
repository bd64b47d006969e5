// Package dedup resolves the identity key used to count distinct attendees.
// The strategy is chosen once per table, not per row.
package dedup

import (
	"fmt"
	"strconv"
	"strings"

	"webinar-counter-backend/internal/tabular"
)

// Strategy identifies how attendee identity keys are derived.
type Strategy int

const (
	// StrategyEmail keys rows by the lower-cased, trimmed Email column.
	StrategyEmail Strategy = iota
	// StrategyName keys rows by the first available name column.
	StrategyName
	// StrategyRowIndex keys rows by their ordinal position. Every row counts
	// as a distinct attendee; deduplication is effectively disabled.
	StrategyRowIndex
)

func (s Strategy) String() string {
	switch s {
	case StrategyEmail:
		return "email"
	case StrategyName:
		return "name"
	case StrategyRowIndex:
		return "row-index"
	}
	return "unknown"
}

// nameColumns are tried in order when no Email column exists.
var nameColumns = []string{"Name", "Name (Original Name)", "Full Name"}

// Resolution carries the chosen strategy and the per-row identity keys,
// aligned with the table's row order.
type Resolution struct {
	Strategy Strategy
	Column   string
	Keys     []string
}

// Degraded reports whether the resolver fell back to row ordinals, which
// defeats deduplication. Callers should surface this to the user.
func (r Resolution) Degraded() bool {
	return r.Strategy == StrategyRowIndex
}

// Describe returns a short human-readable note about the chosen key, suitable
// for a job log line.
func (r Resolution) Describe() string {
	if r.Degraded() {
		return "no Email or Name column; using row index as dedup key"
	}
	return fmt.Sprintf("using %q as dedup key", r.Column)
}

// Resolve picks the identity strategy for a normalized table and derives one
// key per row. Precedence: Email column, then the first of the known name
// columns, then the row ordinal.
func Resolve(t *tabular.Table) Resolution {
	column := ""
	strategy := StrategyRowIndex

	switch {
	case t.HasColumn("Email"):
		column = "Email"
		strategy = StrategyEmail
	default:
		for _, c := range nameColumns {
			if t.HasColumn(c) {
				column = c
				strategy = StrategyName
				break
			}
		}
	}

	keys := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if strategy == StrategyRowIndex {
			keys[i] = strconv.Itoa(i)
			continue
		}
		keys[i] = strings.ToLower(strings.TrimSpace(row[column]))
	}

	return Resolution{Strategy: strategy, Column: column, Keys: keys}
}
