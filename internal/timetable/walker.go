package timetable

import (
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Markup anchors for the weekly timetable page. Day groups carry an id of the
// form "DD-MM-YYYY-DayName" where the date part is the Monday of the week.
const (
	dayGroupSelector   = "div.activity-list-group-title"
	activitySelector   = "div.activity"
	noActivitySelector = "div.activity-none"

	weekAnchorLayout = "02-01-2006"
	weekAnchorLen    = len(weekAnchorLayout)
)

// Window is the user-requested inclusive date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a Window, rejecting a range whose end precedes its start.
func NewWindow(start, end time.Time) (Window, error) {
	if end.Before(start) {
		return Window{}, fmt.Errorf("end date %s precedes start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return Window{Start: start, End: end}, nil
}

// Contains reports whether date falls within the window, inclusive.
func (w Window) Contains(date time.Time) bool {
	return !date.Before(w.Start) && !date.After(w.End)
}

// Fetcher retrieves the weekly timetable page containing the given date.
type Fetcher interface {
	FetchWeek(date time.Time) (*goquery.Document, error)
}

// Sink receives each reconstructed occurrence, in page order.
type Sink interface {
	Add(occ Occurrence)
}

// ProgressFunc is invoked once per week iteration with the week bounds
// clipped to the requested window.
type ProgressFunc func(weekStart, weekEnd time.Time)

// Walker drives the date range week by week, delegating extraction and
// reconstruction for every in-window activity and appending the results to
// the sink. It owns the week cursor and performs one fetch at a time with a
// pacing delay between requests.
type Walker struct {
	fetcher  Fetcher
	sink     Sink
	delay    time.Duration
	progress ProgressFunc
}

// NewWalker creates a Walker. The delay is slept after every page fetch to
// stay within the upstream service's acceptable request rate; progress may be
// nil.
func NewWalker(fetcher Fetcher, sink Sink, delay time.Duration, progress ProgressFunc) *Walker {
	return &Walker{
		fetcher:  fetcher,
		sink:     sink,
		delay:    delay,
		progress: progress,
	}
}

// Walk iterates week by week from window.Start. The loop runs while the
// cursor is before End+7 days: iteration is driven by week boundaries, not
// day boundaries, so the final partial week must be visited at least once.
// Any fetch or parse failure aborts the walk immediately.
func (w *Walker) Walk(window Window) error {
	processing := window.Start

	for processing.Before(window.End.AddDate(0, 0, 7)) {
		weekStart, weekEnd := weekBounds(processing)
		if weekStart.Before(window.Start) {
			weekStart = window.Start
		}
		if window.End.Before(weekEnd) {
			weekEnd = window.End
		}
		if w.progress != nil {
			w.progress(weekStart, weekEnd)
		}

		doc, err := w.fetcher.FetchWeek(processing)
		if err != nil {
			return fmt.Errorf("fetching week of %s: %w", processing.Format("2006-01-02"), err)
		}

		if err := w.processWeek(doc, window); err != nil {
			return err
		}

		if w.delay > 0 {
			time.Sleep(w.delay)
		}
		processing = processing.AddDate(0, 0, 7)
	}

	return nil
}

// weekBounds returns the Monday and Sunday of the week containing date.
func weekBounds(date time.Time) (time.Time, time.Time) {
	weekday := (int(date.Weekday()) + 6) % 7 // Monday = 0
	return date.AddDate(0, 0, -weekday), date.AddDate(0, 0, 6-weekday)
}

// processWeek locates every per-day activity group on a weekly page, resolves
// the date each group represents, and processes the groups whose date falls
// inside the requested window.
func (w *Walker) processWeek(doc *goquery.Document, window Window) error {
	var walkErr error

	doc.Find(dayGroupSelector).EachWithBreak(func(_ int, group *goquery.Selection) bool {
		id, ok := group.Attr("id")
		if !ok || len(id) < weekAnchorLen+2 {
			walkErr = fmt.Errorf("%w: day group id %q", ErrMalformedActivity, id)
			return false
		}

		anchor, err := time.Parse(weekAnchorLayout, id[:weekAnchorLen])
		if err != nil {
			walkErr = fmt.Errorf("%w: week anchor in day group id %q", ErrMalformedActivity, id)
			return false
		}

		date, err := ResolveActivityDate(anchor, id[weekAnchorLen+1:])
		if err != nil {
			walkErr = err
			return false
		}

		// Fetched weeks may only partially overlap the requested range.
		if !window.Contains(date) {
			return true
		}

		if err := w.processDay(date, group.Next()); err != nil {
			walkErr = err
			return false
		}
		return true
	})

	return walkErr
}

// processDay extracts every activity in a day group's activity list and
// pushes the reconstructed occurrences into the sink. An explicit "no
// activity" marker row terminates the group's remaining rows.
func (w *Walker) processDay(date time.Time, list *goquery.Selection) error {
	var dayErr error

	list.Find(activitySelector).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		if node.Find(noActivitySelector).Length() > 0 {
			return false
		}

		act, err := ExtractActivity(node)
		if err != nil {
			dayErr = err
			return false
		}

		start, end, err := ResolveTimeRange(act.TimeRange, date)
		if err != nil {
			dayErr = err
			return false
		}

		occ := Occurrence{
			Type:         act.Type,
			Start:        start,
			End:          end,
			Title:        act.Title,
			LocationName: act.LocationName,
			LocationURL:  act.LocationURL,
			Staff:        act.Staff,
		}

		if act.LocationURL != "" {
			geo, err := ResolveGeo(act.LocationURL)
			if err != nil {
				dayErr = err
				return false
			}
			occ.Geo = &geo
		}

		w.sink.Add(occ)
		return true
	})

	return dayErr
}
