// Package interval parses attendee join/leave timestamps and partitions the
// surviving rows by calendar date.
package interval

import (
	"errors"
	"sort"
	"strings"
	"time"

	"webinar-counter-backend/internal/tabular"
)

// ErrNoValidRows means every row was dropped during timestamp parsing, or no
// distinct event date remained. Fatal for the job.
var ErrNoValidRows = errors.New("no valid rows after parsing join/leave times")

// Record is one attendee session with parsed timestamps. Date is the calendar
// date of Join, at midnight in the parse location.
type Record struct {
	Key   string
	Join  time.Time
	Leave time.Time
	Date  time.Time
}

// Intervals is the output of Build: parsed records, the sorted distinct event
// dates, and how many rows were dropped as unparsable.
type Intervals struct {
	Records []Record
	Dates   []time.Time
	Dropped int
}

// ForDate returns the records whose event date equals the given date.
func (iv *Intervals) ForDate(date time.Time) []Record {
	var out []Record
	for _, r := range iv.Records {
		if r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	return out
}

// DateKey formats an event date the way results and reports key it.
func DateKey(date time.Time) string {
	return date.Format("2006-01-02")
}

// dayFirstLayouts are tried in order. Ambiguous numeric dates are read
// day-before-month: "03/04/2024" is 3 April, not March 4th. ISO forms are
// unambiguous and accepted as-is.
var dayFirstLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"02/01/2006 03:04:05 PM",
	"02/01/2006 3:04 PM",
	"2/1/2006 3:04:05 PM",
	"2/1/2006 3:04 PM",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseTimestamp parses one join/leave cell in the given location, trying the
// day-first layouts in order.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dayFirstLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Build parses the Join Time and Leave Time columns of a normalized table.
// keys must align with the table rows (one identity key per row). Rows where
// either timestamp fails to parse are dropped and counted, never identified.
func Build(t *tabular.Table, keys []string, loc *time.Location) (*Intervals, error) {
	iv := &Intervals{}
	seen := make(map[time.Time]bool)

	for i, row := range t.Rows {
		join, err := ParseTimestamp(row[tabular.ColumnJoinTime], loc)
		if err != nil {
			iv.Dropped++
			continue
		}
		leave, err := ParseTimestamp(row[tabular.ColumnLeaveTime], loc)
		if err != nil {
			iv.Dropped++
			continue
		}

		y, m, d := join.Date()
		date := time.Date(y, m, d, 0, 0, 0, 0, loc)
		if !seen[date] {
			seen[date] = true
			iv.Dates = append(iv.Dates, date)
		}

		iv.Records = append(iv.Records, Record{
			Key:   keys[i],
			Join:  join,
			Leave: leave,
			Date:  date,
		})
	}

	if len(iv.Records) == 0 || len(iv.Dates) == 0 {
		return nil, ErrNoValidRows
	}

	sort.Slice(iv.Dates, func(a, b int) bool { return iv.Dates[a].Before(iv.Dates[b]) })
	return iv, nil
}
