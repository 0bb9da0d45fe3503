// Package timetable implements the timetable-to-calendar conversion core.
//
// It walks a date range week by week, extracts activity blocks from the
// weekly timetable markup, reconstructs absolute start/end datetimes from a
// week anchor plus a day name plus a textual time range, and emits one
// occurrence per activity into a caller-supplied sink. Fetching pages and
// serializing the resulting calendar are collaborators injected through the
// Fetcher and Sink interfaces.
package timetable
