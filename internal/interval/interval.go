// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

// Package interval provides the pure interval arithmetic that slot generation
// is built on: timezone conversion, overlap testing, intersection, ordered
// subtraction, and the sort/dedup pass used by busy-time aggregation.
// Intervals are closed: touching endpoints count as overlap, so back-to-back
// busy events can never be double-booked at an exact boundary.
package interval

import (
	"fmt"
	"sort"
	"time"

	"github.com/rtcamp/appointment-service/internal/domain/models"
)

const localDateTimeLayout = "2006-01-02T15:04:05"

// ConvertToUTC parses an event timestamp and normalizes it to UTC. Timestamps
// with an explicit offset are taken as-is; offset-less timestamps are
// interpreted in the named IANA timezone, which resolves DST correctly.
func ConvertToUTC(value, timezone string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}

	loc := time.UTC
	if timezone != "" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown timezone %q: %w", timezone, err)
		}
	}

	t, err := time.ParseInLocation(localDateTimeLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}

// ConvertFromUTC returns the instant expressed in the named IANA timezone.
func ConvertFromUTC(t time.Time, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}
	return t.In(loc), nil
}

// Overlaps reports whether two closed intervals overlap. Touching endpoints
// count as overlap.
func Overlaps(a, b models.Interval) bool {
	if a.End.Before(b.Start) || b.End.Before(a.Start) {
		return false
	}
	return true
}

// Intersect returns the intersection of two closed intervals. The second
// return value is false when the intervals do not overlap.
func Intersect(a, b models.Interval) (models.Interval, bool) {
	if !Overlaps(a, b) {
		return models.Interval{}, false
	}

	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	return models.Interval{Start: start, End: end}, true
}

// Sort orders intervals by end ascending, tie-broken by start ascending.
// Deduplication and gap merging scan rightward from the earliest-ending
// interval, so they depend on this ordering.
func Sort(intervals []models.Interval) {
	sort.SliceStable(intervals, func(i, j int) bool {
		if intervals[i].End.Equal(intervals[j].End) {
			return intervals[i].Start.Before(intervals[j].Start)
		}
		return intervals[i].End.Before(intervals[j].End)
	})
}

// DedupAdjacent drops intervals whose start and end exactly equal the
// immediately preceding kept interval. The scan is adjacent-only, matching a
// single linear merge pass: two identical intervals separated by a distinct
// third interval are both kept. It is idempotent on sorted input.
func DedupAdjacent(intervals []models.Interval) []models.Interval {
	if len(intervals) <= 1 {
		return intervals
	}

	kept := make([]models.Interval, 0, len(intervals))
	kept = append(kept, intervals[0])
	last := 0

	for current := 1; current < len(intervals); current++ {
		if intervals[current].Start.Equal(intervals[last].Start) &&
			intervals[current].End.Equal(intervals[last].End) {
			continue
		}
		kept = append(kept, intervals[current])
		last = current
	}

	return kept
}

// Subtract removes the busy intervals from the window, returning the free
// gaps in ascending order. Zero-length gaps are dropped.
func Subtract(window models.Interval, busy []models.Interval) []models.Interval {
	if !window.End.After(window.Start) {
		return nil
	}

	ordered := make([]models.Interval, len(busy))
	copy(ordered, busy)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start.Equal(ordered[j].Start) {
			return ordered[i].End.Before(ordered[j].End)
		}
		return ordered[i].Start.Before(ordered[j].Start)
	})

	var gaps []models.Interval
	cursor := window.Start

	for _, b := range ordered {
		if !b.End.After(cursor) {
			continue
		}
		if b.Start.After(window.End) {
			break
		}
		if b.Start.After(cursor) {
			end := b.Start
			if end.After(window.End) {
				end = window.End
			}
			if end.After(cursor) {
				gaps = append(gaps, models.Interval{Start: cursor, End: end})
			}
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
		if !cursor.Before(window.End) {
			return gaps
		}
	}

	if window.End.After(cursor) {
		gaps = append(gaps, models.Interval{Start: cursor, End: window.End})
	}

	return gaps
}

// IntersectAll reduces multiple interval sets to their common intervals via
// repeated pairwise intersection. Intersection is associative and commutative,
// so the reduction is order-independent. An empty input yields nil.
func IntersectAll(sets ...[]models.Interval) []models.Interval {
	if len(sets) == 0 {
		return nil
	}

	common := sets[0]
	for _, set := range sets[1:] {
		var next []models.Interval
		for _, a := range common {
			for _, b := range set {
				if overlap, ok := Intersect(a, b); ok && overlap.End.After(overlap.Start) {
					next = append(next, overlap)
				}
			}
		}
		common = next
		if len(common) == 0 {
			return nil
		}
	}
	return common
}
