package timetable

import (
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Parsing and reconstruction errors. A single malformed activity aborts the
// whole export; a garbled calendar is worse than a clear failure.
var (
	ErrMalformedActivity  = errors.New("malformed activity markup")
	ErrUnknownDayName     = errors.New("unknown day name")
	ErrMalformedTimeRange = errors.New("malformed time range")
	ErrMissingGeoQuery    = errors.New("missing geo query parameter")
)

// Activity holds the raw fields extracted from one activity block. It lives
// only long enough to be reconstructed into an Occurrence.
type Activity struct {
	Type         string
	TimeRange    string // raw, e.g. "09:00-10:30"
	Title        string
	LocationName string
	LocationURL  string // empty when the location carries no hyperlink
	Staff        string
}

// Occurrence is a fully reconstructed activity: absolute start/end datetimes
// plus the fields a calendar event needs. Immutable once built.
type Occurrence struct {
	Type         string
	Start        time.Time
	End          time.Time
	Title        string
	LocationName string
	LocationURL  string
	Geo          *Geo
	Staff        string
}

// Geo is a latitude/longitude pair resolved from a location map link.
type Geo struct {
	Lat float64
	Lon float64
}

// ExtractActivity pulls the six activity fields out of one div.activity
// selection. Field positions are identified by structural role only: a type
// block, a time block, and three ordered "content label -> value" sibling
// pairs for title, location and staff. Label wording varies between sites,
// the ordering does not.
func ExtractActivity(node *goquery.Selection) (Activity, error) {
	typeBlock := node.Find("div.activity-type-title").First()
	if typeBlock.Length() == 0 {
		return Activity{}, fmt.Errorf("%w: missing activity type block", ErrMalformedActivity)
	}

	timeBlock := node.Find("div.activity-time").First()
	if timeBlock.Length() == 0 {
		return Activity{}, fmt.Errorf("%w: missing activity time block", ErrMalformedActivity)
	}

	labels := node.Find("div.activity-content-label")
	if labels.Length() < 3 {
		return Activity{}, fmt.Errorf("%w: expected 3 content labels, found %d", ErrMalformedActivity, labels.Length())
	}

	titleValue := labels.Eq(0).Next()
	if titleValue.Length() == 0 {
		return Activity{}, fmt.Errorf("%w: title label has no value sibling", ErrMalformedActivity)
	}

	locationValue := labels.Eq(1).Next()
	if locationValue.Length() == 0 {
		return Activity{}, fmt.Errorf("%w: location label has no value sibling", ErrMalformedActivity)
	}

	staffValue := labels.Eq(2).Next()
	if staffValue.Length() == 0 {
		return Activity{}, fmt.Errorf("%w: staff label has no value sibling", ErrMalformedActivity)
	}

	act := Activity{
		Type:         NormalizeText(typeBlock.Text()),
		TimeRange:    NormalizeText(timeBlock.Text()),
		Title:        NormalizeText(titleValue.Text()),
		LocationName: NormalizeText(locationValue.Text()),
		Staff:        NormalizeText(staffValue.Text()),
	}

	// A hyperlink on the location is optional; its absence is not an error.
	if href, ok := locationValue.Find("a").First().Attr("href"); ok {
		act.LocationURL = href
	}

	return act, nil
}
