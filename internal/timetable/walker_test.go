package timetable

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const mondayTuesdayWeek = `
<html><body>
<div class="activity-list-group-title" id="08-01-2024-Monday">Monday</div>
<div class="activity-list-group">` + activityWithLink + `</div>
<div class="activity-list-group-title" id="08-01-2024-Tuesday">Tuesday</div>
<div class="activity-list-group">` + activityWithoutLink + `</div>
</body></html>`

const emptyWeek = `<html><body></body></html>`

type fakeFetcher struct {
	pages map[string]string // keyed by requested date, YYYY-MM-DD
	calls []time.Time
	err   error
}

func (f *fakeFetcher) FetchWeek(date time.Time) (*goquery.Document, error) {
	f.calls = append(f.calls, date)
	if f.err != nil {
		return nil, f.err
	}
	html, ok := f.pages[date.Format("2006-01-02")]
	if !ok {
		html = emptyWeek
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

type collectorSink struct {
	occurrences []Occurrence
}

func (c *collectorSink) Add(occ Occurrence) {
	c.occurrences = append(c.occurrences, occ)
}

func mustWindow(t *testing.T, start, end string) Window {
	t.Helper()
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		t.Fatal(err)
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		t.Fatal(err)
	}
	w, err := NewWindow(s, e)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestNewWindowRejectsInvertedRange(t *testing.T) {
	end := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	if _, err := NewWindow(end.AddDate(0, 0, 1), end); err == nil {
		t.Error("expected an error for end date before start date")
	}
}

func TestWalkSingleDayWindow(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{"2024-01-08": mondayTuesdayWeek}}
	sink := &collectorSink{}

	walker := NewWalker(fetcher, sink, 0, nil)
	if err := walker.Walk(mustWindow(t, "2024-01-08", "2024-01-08")); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	// A single-day window is exactly one week iteration.
	if len(fetcher.calls) != 1 {
		t.Fatalf("expected 1 fetch, got %d", len(fetcher.calls))
	}

	// The fetched week also has a Tuesday group; only Monday is in-window.
	if len(sink.occurrences) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(sink.occurrences))
	}

	occ := sink.occurrences[0]
	if occ.Title != "Introduction to Programming" {
		t.Errorf("Title = %q", occ.Title)
	}
	if occ.Type != "Lecture" {
		t.Errorf("Type = %q", occ.Type)
	}
	wantStart := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	if !occ.Start.Equal(wantStart) {
		t.Errorf("Start = %s, expected %s", occ.Start, wantStart)
	}
	wantEnd := time.Date(2024, 1, 8, 10, 30, 0, 0, time.UTC)
	if !occ.End.Equal(wantEnd) {
		t.Errorf("End = %s, expected %s", occ.End, wantEnd)
	}
	if occ.Geo == nil {
		t.Fatal("expected geo coordinates from the location link")
	}
	if occ.Geo.Lat != 54.77 || occ.Geo.Lon != -1.58 {
		t.Errorf("Geo = (%v, %v), expected (54.77, -1.58)", occ.Geo.Lat, occ.Geo.Lon)
	}
	if occ.Staff != "Dr J. Smith" {
		t.Errorf("Staff = %q", occ.Staff)
	}
}

func TestWalkNeverEmitsOutsideWindow(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{"2024-01-09": mondayTuesdayWeek}}
	sink := &collectorSink{}

	// Window starts on the Tuesday; the Monday group on the same page must
	// be skipped even though the fetched week contains it.
	walker := NewWalker(fetcher, sink, 0, nil)
	if err := walker.Walk(mustWindow(t, "2024-01-09", "2024-01-09")); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if len(sink.occurrences) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(sink.occurrences))
	}
	if sink.occurrences[0].Title != "Networks Lab" {
		t.Errorf("Title = %q, expected the Tuesday activity", sink.occurrences[0].Title)
	}
	if sink.occurrences[0].Geo != nil {
		t.Error("expected nil geo for an activity with no location link")
	}
	if sink.occurrences[0].LocationURL != "" {
		t.Error("expected empty location URL for an activity with no link")
	}
}

func TestWalkWeekIterations(t *testing.T) {
	fetcher := &fakeFetcher{}
	walker := NewWalker(fetcher, &collectorSink{}, 0, nil)

	// The loop intentionally runs one week past the end date so the final
	// partial week is always visited.
	if err := walker.Walk(mustWindow(t, "2024-01-08", "2024-01-21")); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	want := []string{"2024-01-08", "2024-01-15", "2024-01-22"}
	if len(fetcher.calls) != len(want) {
		t.Fatalf("expected %d fetches, got %d", len(want), len(fetcher.calls))
	}
	for i, call := range fetcher.calls {
		if got := call.Format("2006-01-02"); got != want[i] {
			t.Errorf("fetch %d = %s, expected %s", i, got, want[i])
		}
	}
}

func TestWalkProgressClippedToWindow(t *testing.T) {
	fetcher := &fakeFetcher{}
	var starts, ends []string

	walker := NewWalker(fetcher, &collectorSink{}, 0, func(weekStart, weekEnd time.Time) {
		starts = append(starts, weekStart.Format("2006-01-02"))
		ends = append(ends, weekEnd.Format("2006-01-02"))
	})

	// Wednesday to Thursday of the same week: bounds clip to the window,
	// not the full Monday-Sunday week. The loop runs while the cursor is
	// before End+7 days, so the following week is visited too, its bounds
	// clipped against the window.
	if err := walker.Walk(mustWindow(t, "2024-01-10", "2024-01-11")); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if len(starts) != 2 {
		t.Fatalf("expected 2 progress reports, got %d", len(starts))
	}
	if starts[0] != "2024-01-10" || ends[0] != "2024-01-11" {
		t.Errorf("progress = %s to %s, expected 2024-01-10 to 2024-01-11", starts[0], ends[0])
	}
	if starts[1] != "2024-01-15" || ends[1] != "2024-01-11" {
		t.Errorf("progress = %s to %s, expected 2024-01-15 to 2024-01-11", starts[1], ends[1])
	}
}

func TestWalkNoActivityMarker(t *testing.T) {
	page := `
<html><body>
<div class="activity-list-group-title" id="08-01-2024-Monday">Monday</div>
<div class="activity-list-group">` + activityWithoutLink + `
  <div class="activity"><div class="activity-none">No activities</div></div>
  ` + activityWithLink + `
</div>
</body></html>`

	fetcher := &fakeFetcher{pages: map[string]string{"2024-01-08": page}}
	sink := &collectorSink{}

	walker := NewWalker(fetcher, sink, 0, nil)
	if err := walker.Walk(mustWindow(t, "2024-01-08", "2024-01-08")); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	// The marker row ends the group: rows after it are not processed.
	if len(sink.occurrences) != 1 {
		t.Fatalf("expected 1 occurrence before the marker, got %d", len(sink.occurrences))
	}
	if sink.occurrences[0].Title != "Networks Lab" {
		t.Errorf("Title = %q", sink.occurrences[0].Title)
	}
}

func TestWalkFetchErrorAborts(t *testing.T) {
	fetchErr := fmt.Errorf("connection refused")
	fetcher := &fakeFetcher{err: fetchErr}
	sink := &collectorSink{}

	walker := NewWalker(fetcher, sink, 0, nil)
	err := walker.Walk(mustWindow(t, "2024-01-08", "2024-01-21"))
	if !errors.Is(err, fetchErr) {
		t.Fatalf("Walk error = %v, expected wrapped fetch error", err)
	}

	if len(fetcher.calls) != 1 {
		t.Errorf("expected the walk to stop after the first failed fetch, got %d fetches", len(fetcher.calls))
	}
	if len(sink.occurrences) != 0 {
		t.Errorf("expected no occurrences after an aborted walk, got %d", len(sink.occurrences))
	}
}

func TestWalkMalformedActivityAborts(t *testing.T) {
	page := `
<html><body>
<div class="activity-list-group-title" id="08-01-2024-Monday">Monday</div>
<div class="activity-list-group">
  <div class="activity">
    <div class="activity-type-title">Lecture</div>
  </div>
</div>
</body></html>`

	fetcher := &fakeFetcher{pages: map[string]string{"2024-01-08": page}}
	sink := &collectorSink{}

	walker := NewWalker(fetcher, sink, 0, nil)
	err := walker.Walk(mustWindow(t, "2024-01-08", "2024-01-08"))
	if !errors.Is(err, ErrMalformedActivity) {
		t.Fatalf("Walk error = %v, expected ErrMalformedActivity", err)
	}
	if len(sink.occurrences) != 0 {
		t.Errorf("expected no occurrences, got %d", len(sink.occurrences))
	}
}

func TestWalkMalformedDayGroupID(t *testing.T) {
	pages := map[string]string{
		"bad anchor":   `<div class="activity-list-group-title" id="99-99-9999-Monday"></div>`,
		"unknown day":  `<div class="activity-list-group-title" id="08-01-2024-Festivus"></div>`,
		"truncated id": `<div class="activity-list-group-title" id="08-01"></div>`,
	}

	for name, page := range pages {
		t.Run(name, func(t *testing.T) {
			fetcher := &fakeFetcher{pages: map[string]string{"2024-01-08": page}}
			walker := NewWalker(fetcher, &collectorSink{}, 0, nil)
			if err := walker.Walk(mustWindow(t, "2024-01-08", "2024-01-08")); err == nil {
				t.Error("expected an error for a malformed day group")
			}
		})
	}
}
