// Package calendar renders a race weekend as an iCalendar feed, so fans can
// subscribe to the session times from their own calendar app.
package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/trentd187/f1-fansite/internal/models"
	"github.com/trentd187/f1-fansite/internal/sessions"
)

// ProductID identifies this service in the PRODID property.
const ProductID = "-//f1-fansite//race weekend//IT"

// durations are the nominal lengths of each session. The data files only carry
// start times, and calendar apps need an end.
var durations = map[models.SessionKey]time.Duration{
	models.SessionFP1:        time.Hour,
	models.SessionFP2:        time.Hour,
	models.SessionFP3:        time.Hour,
	models.SessionQualifying: time.Hour,
	models.SessionRace:       2 * time.Hour,
}

// Render returns the weekend as a VCALENDAR with one VEVENT per session whose
// start time parses. stamp is written as DTSTAMP on every event.
func Render(event models.RaceEvent, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName(event.Name)

	for _, s := range sessions.Schedule(event) {
		ev := cal.AddEvent(fmt.Sprintf("%d-%s@f1-fansite", event.Round, s.Kind.Key))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(s.Start)
		ev.SetEndAt(s.Start.Add(durations[s.Kind.Key]))
		ev.SetSummary(fmt.Sprintf("%s - %s", event.Name, s.Kind.FullName))
		ev.SetLocation(event.Circuit)
		ev.SetDescription(fmt.Sprintf("Round %d, %s (%s)", event.Round, event.Location, event.Country))
	}

	return cal.Serialize()
}
