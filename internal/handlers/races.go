package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/f1-fansite/internal/calendar"
	"github.com/trentd187/f1-fansite/internal/datastore"
	"github.com/trentd187/f1-fansite/internal/models"
	"github.com/trentd187/f1-fansite/internal/sessions"
)

// NextRace handles GET /api/next-race.json.
// It relays next-race.json, or the configured fallback weekend.
func NextRace(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return relay(c, d, datasetNextRace, raceFallback{RaceEvent: d.Fallbacks.NextRace}, defaultCache)
	}
}

// NextSession handles GET /api/next-session.json.
//
//   - next-race.json readable, a session still ahead → 200 with that session
//   - next-race.json readable, nothing left this weekend → 202 "no session" payload
//   - next-race.json missing/unreadable → 202 with the first session of the fallback weekend
//
// A file flagged "available": false is still resolved, but answered with 202.
func NextSession(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := datastore.Load(d.Store, datasetNextRace, models.RaceEvent{})
		if err != nil {
			return internalError(c, d, err, "could not read next race")
		}

		if res.Fallback {
			if first, ok := sessions.First(d.Fallbacks.NextRace); ok {
				return respond(c, false, defaultCache, sessionPayload{ResolvedSession: first})
			}
			return respond(c, false, defaultCache, noSessionPayload{Message: d.Fallbacks.Messages.NoSession})
		}

		next, ok := sessions.Next(res.Value, d.Now())
		if !ok {
			return respond(c, false, defaultCache, noSessionPayload{Message: d.Fallbacks.Messages.NoSession})
		}
		return respond(c, res.Available, defaultCache, sessionPayload{ResolvedSession: next, Available: res.Available})
	}
}

// NextRaceCalendar handles GET /api/next-race.ics: the weekend's sessions as an
// iCalendar feed. It uses the fallback weekend when next-race.json is missing,
// with the same 200/202 split as the JSON endpoints.
func NextRaceCalendar(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := datastore.Load(d.Store, datasetNextRace, d.Fallbacks.NextRace)
		if err != nil {
			if errors.Is(err, datastore.ErrInvalidName) {
				return badRequest(c, "invalid dataset name")
			}
			return internalError(c, d, err, "could not read next race")
		}

		status := setCache(c, res.Available, defaultCache)
		c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
		return c.Status(status).SendString(calendar.Render(res.Value, d.Now()))
	}
}
