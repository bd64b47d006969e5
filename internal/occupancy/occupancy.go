// Package occupancy computes distinct-attendee counts at a set of timeline
// points for one event date.
package occupancy

import (
	"fmt"
	"strconv"
	"time"

	"webinar-counter-backend/internal/interval"
)

// Point is the evaluated occupancy at one timeline entry. Display carries the
// annotation overlay when present; Count is always the bare number.
type Point struct {
	Time    string `json:"time"`
	Count   int    `json:"count"`
	Label   string `json:"label,omitempty"`
	Display string `json:"display"`
}

// Count evaluates every timeline point, in order, against the records of one
// event date. The first point is checked at base+59s so attendees joining at
// or just after that exact minute are included; every later point is checked
// at the minute boundary itself. A record is present when
// Join <= check <= Leave, inclusive on both ends. The count is the number of
// distinct identity keys, not rows. Output length always equals the timeline
// length.
func Count(records []interval.Record, date time.Time, points []string, annotations map[string]string) []Point {
	out := make([]Point, 0, len(points))
	for i, ts := range points {
		check := checkInstant(date, ts, i == 0)

		present := make(map[string]struct{})
		for _, r := range records {
			if !r.Join.After(check) && !r.Leave.Before(check) {
				present[r.Key] = struct{}{}
			}
		}
		count := len(present)

		p := Point{Time: ts, Count: count, Display: strconv.Itoa(count)}
		if label, ok := annotations[ts]; ok {
			p.Label = label
			p.Display = fmt.Sprintf("%d (%s)", count, label)
		}
		out = append(out, p)
	}
	return out
}

// checkInstant combines the event date with an HH:MM point. Points reach this
// code already validated by the configuration store; an unparsable point
// degrades to midnight rather than dropping the output entry.
func checkInstant(date time.Time, point string, first bool) time.Time {
	clock, err := time.Parse("15:04", point)
	if err != nil {
		clock = time.Time{}
	}
	y, m, d := date.Date()
	base := time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, date.Location())
	if first {
		// The first listed point is read as "end of that minute".
		return base.Add(59 * time.Second)
	}
	return base
}
