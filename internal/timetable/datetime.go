package timetable

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// dayOffsets maps full English day names to their Monday-first offset.
// Matching is case-sensitive; anything else is a hard failure (the source
// site emits English day names in its group identifiers).
var dayOffsets = map[string]int{
	"Monday":    0,
	"Tuesday":   1,
	"Wednesday": 2,
	"Thursday":  3,
	"Friday":    4,
	"Saturday":  5,
	"Sunday":    6,
}

// ResolveActivityDate combines a week anchor (the Monday of a week) with a
// day name into an absolute calendar date. The result always falls within
// [anchor, anchor+6 days].
func ResolveActivityDate(anchor time.Time, dayName string) (time.Time, error) {
	offset, ok := dayOffsets[dayName]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownDayName, dayName)
	}
	return anchor.AddDate(0, 0, offset), nil
}

// ResolveTimeRange parses a raw "HH:MM-HH:MM" range and combines it with the
// resolved activity date to produce absolute start and end datetimes. Colons
// and hyphens are the only structural delimiters; extra whitespace is
// tolerated. The range must yield exactly four integers.
//
// A range whose end-of-day precedes its start-of-day is returned as-is. The
// source never emits cross-midnight activities, so no wrap correction is
// applied.
func ResolveTimeRange(raw string, date time.Time) (time.Time, time.Time, error) {
	cleaned := strings.NewReplacer(":", " ", "-", " ").Replace(raw)
	fields := strings.Fields(cleaned)
	if len(fields) != 4 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimeRange, raw)
	}

	parts := make([]int, 4)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimeRange, raw)
		}
		parts[i] = n
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), parts[0], parts[1], 0, 0, date.Location())
	end := time.Date(date.Year(), date.Month(), date.Day(), parts[2], parts[3], 0, 0, date.Location())

	return start, end, nil
}

// ResolveGeo extracts a latitude/longitude pair from a location map link. The
// link carries the coordinates in its "query" URL parameter, either comma or
// whitespace separated, e.g. "...?query=54.77,-1.58".
func ResolveGeo(rawURL string) (Geo, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Geo{}, fmt.Errorf("parsing location URL: %w", err)
	}

	query := u.Query().Get("query")
	if query == "" {
		return Geo{}, fmt.Errorf("%w: %q", ErrMissingGeoQuery, rawURL)
	}

	fields := strings.Fields(strings.ReplaceAll(query, ",", " "))
	if len(fields) != 2 {
		return Geo{}, fmt.Errorf("parsing geo coordinates %q: expected 2 values, found %d", query, len(fields))
	}

	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Geo{}, fmt.Errorf("parsing latitude %q: %w", fields[0], err)
	}
	lon, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Geo{}, fmt.Errorf("parsing longitude %q: %w", fields[1], err)
	}

	return Geo{Lat: lat, Lon: lon}, nil
}
