package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/f1-fansite/internal/datastore"
)

// F1Data handles GET /api/f1-data?type=<type>, a single entry point for every dataset:
//
//	latest-session  (default)  latest-session.json
//	next-race                  next-race.json
//	current-season             current-season.json
//	driver   &driver_id=16     drivers/driver_16.json
//	race     &race_id=monza    races/monza.json
//	archive  &year=2024        archive/2024.json
//
// Missing ids, non-numeric numbers and unknown types answer 400.
func F1Data(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fb := d.Fallbacks

		switch c.Query("type", datasetLatestSession) {
		case datasetLatestSession:
			return relay(c, d, datasetLatestSession, latestFallback(d), defaultCache)

		case datasetNextRace:
			return relay(c, d, datasetNextRace, raceFallback{RaceEvent: fb.NextRace}, defaultCache)

		case datasetCurrentSeason:
			return relay(c, d, datasetCurrentSeason, currentSeasonPayload{
				Season:      d.Now().Year(),
				Message:     fb.Messages.CurrentSeason,
				Drivers:     []any{},
				Constructor: constructorSummary{Team: fb.Team},
			}, defaultCache)

		case "driver":
			id := c.Query("driver_id")
			if id == "" {
				return badRequest(c, "driver_id is required")
			}
			number, err := strconv.Atoi(id)
			if err != nil || number < 0 {
				return badRequest(c, "driver_id must be a car number")
			}
			payload := driverPayload{
				Message:      fb.Messages.Driver,
				DriverNumber: number,
			}
			if name, ok := fb.DriverNames[strconv.Itoa(number)]; ok {
				payload.Name = &name
			}
			return relay(c, d, "drivers/driver_"+strconv.Itoa(number), payload, defaultCache)

		case "race":
			id := c.Query("race_id")
			if id == "" {
				return badRequest(c, "race_id is required")
			}
			// A race id is a single path segment: no slashes, no dot-prefixed names.
			if strings.Contains(id, "/") || !datastore.ValidName(id) {
				return badRequest(c, "invalid race_id")
			}
			return relay(c, d, "races/"+id, raceResultsPayload{
				Message: fb.Messages.Race,
				Results: []any{},
			}, defaultCache)

		case "archive":
			year := fb.DefaultArchiveYear
			if v := c.Query("year"); v != "" {
				parsed, err := strconv.Atoi(v)
				if err != nil || parsed < 1950 {
					return badRequest(c, "year must be a season number")
				}
				year = parsed
			}
			return relay(c, d, "archive/"+strconv.Itoa(year), archivePayload{
				Season:         year,
				Message:        fb.Messages.Archive,
				FinalStandings: finalStandings{Drivers: []any{}},
			}, defaultCache)

		default:
			return badRequest(c, "invalid data type")
		}
	}
}
