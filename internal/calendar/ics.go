// Package calendar maps reconstructed timetable occurrences onto an
// RFC 5545 calendar and serializes it to the .ics wire format.
package calendar

import (
	"fmt"
	"os"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/pfrederiksen/mytimetable-export/internal/timetable"
)

// ProdID identifies this exporter in the generated calendar.
const ProdID = "-//pfrederiksen//mytimetable-export//EN"

// Start/end times are written as floating local datetimes. The timetable has
// no timezone information of its own and the exported events should land on
// the wall-clock times the site displays.
const localTimeLayout = "20060102T150405"

// Export is the root calendar collection. Events are appended throughout the
// week loop and serialized once at the end; an Export is never mutated after
// serialization.
type Export struct {
	cal   *ics.Calendar
	count int

	now    func() time.Time
	newUID func() string
}

// NewExport creates a calendar carrying the fixed product metadata required
// for RFC 5545 compliance.
func NewExport() *Export {
	cal := ics.NewCalendar()
	cal.SetProductId(ProdID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)

	return &Export{
		cal:    cal,
		now:    time.Now,
		newUID: uuid.NewString,
	}
}

// Add builds one calendar event from an occurrence and appends it. Every
// event gets a fresh UID; identity is not stable across runs. Building never
// fails on reconstructed input.
func (e *Export) Add(occ timetable.Occurrence) {
	evt := e.cal.AddEvent(e.newUID())
	evt.SetDtStampTime(e.now())

	// Text property values are passed raw: the library escapes them per
	// RFC 5545 at serialization.
	evt.SetProperty(ics.ComponentPropertySummary, fmt.Sprintf("%s (%s)", occ.Title, occ.Type))
	evt.SetProperty(ics.ComponentPropertyDtStart, occ.Start.Format(localTimeLayout))
	evt.SetProperty(ics.ComponentPropertyDtEnd, occ.End.Format(localTimeLayout))
	evt.SetTimeTransparency(ics.TransparencyOpaque)

	evt.SetProperty(ics.ComponentPropertyLocation, occ.LocationName)
	if occ.Geo != nil {
		evt.SetGeo(occ.Geo.Lat, occ.Geo.Lon)
	}

	evt.SetProperty(ics.ComponentPropertyDescription, description(occ))

	e.count++
}

// Len returns the number of events added so far.
func (e *Export) Len() int {
	return e.count
}

// Serialize renders the calendar in iCalendar format. RFC 5545 requires CRLF
// line delimiters; the library's default is the OS newline.
func (e *Export) Serialize() string {
	return e.cal.Serialize(ics.WithNewLineWindows)
}

// WriteFile serializes the calendar and writes it to path in one shot.
func (e *Export) WriteFile(path string) error {
	if err := os.WriteFile(path, []byte(e.Serialize()), 0644); err != nil {
		return fmt.Errorf("writing calendar file: %w", err)
	}
	return nil
}

// description composes the event description: the staff line plus, when the
// location has a map link, a hyperlink line pointing at it.
func description(occ timetable.Occurrence) string {
	desc := fmt.Sprintf("With %s", occ.Staff)
	if occ.LocationURL != "" {
		desc += fmt.Sprintf("\n\n<a href=%s>View %s on Google Maps</a>", occ.LocationURL, occ.LocationName)
	}
	return desc
}
