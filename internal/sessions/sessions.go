// Package sessions works out which on-track session of a race weekend comes next.
//
// A weekend's sessions always run in the same real-world order: three free
// practices, then qualifying, then the race. The data file stores them as a JSON
// object, and object keys carry no order, so the order lives here in Order and
// every lookup walks it explicitly.
package sessions

import (
	"time"

	"github.com/trentd187/f1-fansite/internal/models"
)

// Kind is the display metadata for one session key.
type Kind struct {
	Key      models.SessionKey
	Name     string // Short label shown in the countdown widget
	FullName string // Long label shown in the schedule
}

// Order lists every session key in precedence order, earliest first.
// Labels are Italian: the site is written for an Italian audience.
var Order = []Kind{
	{Key: models.SessionFP1, Name: "FP1", FullName: "Prove Libere 1"},
	{Key: models.SessionFP2, Name: "FP2", FullName: "Prove Libere 2"},
	{Key: models.SessionFP3, Name: "FP3", FullName: "Prove Libere 3"},
	{Key: models.SessionQualifying, Name: "Qualifiche", FullName: "Qualifiche"},
	{Key: models.SessionRace, Name: "Gara", FullName: "Gara"},
}

// ScheduledSession is a session whose start time parsed successfully.
type ScheduledSession struct {
	Kind  Kind
	Raw   string // Timestamp as written in the data file
	Start time.Time
}

// Next returns the first session, in precedence order, that starts strictly
// after now. The boolean is false when the event has no sessions or every
// session has already started; that is a normal answer, not an error.
//
// Timestamps that fail to parse are skipped as if the key were missing, so a
// single bad entry never hides the sessions around it.
func Next(event models.RaceEvent, now time.Time) (models.ResolvedSession, bool) {
	for _, s := range Schedule(event) {
		// A session starting exactly at now is already under way.
		if s.Start.After(now) {
			return resolve(event, s), true
		}
	}
	return models.ResolvedSession{}, false
}

// First returns the earliest session of the weekend regardless of the clock.
// The next-session endpoint serves it when next-race.json can't be read.
func First(event models.RaceEvent) (models.ResolvedSession, bool) {
	scheduled := Schedule(event)
	if len(scheduled) == 0 {
		return models.ResolvedSession{}, false
	}
	return resolve(event, scheduled[0]), true
}

func resolve(event models.RaceEvent, s ScheduledSession) models.ResolvedSession {
	return models.ResolvedSession{
		Type:            s.Kind.Key,
		DisplayName:     s.Kind.Name,
		FullDisplayName: s.Kind.FullName,
		Date:            s.Raw,
		StartTime:       s.Start,
		Event:           event.Name,
		Location:        event.Location,
		Country:         event.Country,
		Circuit:         event.Circuit,
		Round:           event.Round,
	}
}

// Schedule returns the event's sessions with a parsable start time, in precedence order.
func Schedule(event models.RaceEvent) []ScheduledSession {
	out := make([]ScheduledSession, 0, len(Order))
	for _, kind := range Order {
		raw, ok := event.Sessions[kind.Key]
		if !ok || raw == "" {
			continue
		}
		start, err := ParseTime(raw)
		if err != nil {
			continue
		}
		out = append(out, ScheduledSession{Kind: kind, Raw: raw, Start: start})
	}
	return out
}

// ParseTime parses a session timestamp. RFC 3339 covers both "Z" and numeric
// offsets, and time.Parse accepts fractional seconds with this layout too.
func ParseTime(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, raw)
}
