// Package tabular holds the generic text table that uploaded attendee lists
// are decoded into, and the header normalization applied before processing.
package tabular

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Required columns after normalization.
const (
	ColumnJoinTime  = "Join Time"
	ColumnLeaveTime = "Leave Time"
)

// Row maps a column header to the cell value. All cells are text; no type
// inference happens before the interval builder.
type Row map[string]string

// Table is an ordered set of text columns with one Row per ingested record.
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the table carries the given header.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// SchemaError reports required columns that are absent after normalization.
// It is fatal for the job that raised it.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// Normalize rewrites every header by trimming surrounding whitespace and
// title-casing each word ("join time" becomes "Join Time"), then re-keys all
// rows accordingly. It fails with a *SchemaError unless both "Join Time" and
// "Leave Time" are present afterwards.
func Normalize(t *Table) error {
	caser := cases.Title(language.English)

	renamed := make(map[string]string, len(t.Columns))
	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = caser.String(strings.TrimSpace(c))
		renamed[c] = columns[i]
	}
	t.Columns = columns

	for i, row := range t.Rows {
		next := make(Row, len(row))
		for k, v := range row {
			if nk, ok := renamed[k]; ok {
				next[nk] = v
			} else {
				next[k] = v
			}
		}
		t.Rows[i] = next
	}

	var missing []string
	for _, required := range []string{ColumnJoinTime, ColumnLeaveTime} {
		if !t.HasColumn(required) {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}
