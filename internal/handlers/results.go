package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"

	"github.com/trentd187/f1-fansite/internal/datastore"
)

// LatestSession handles GET /api/latest.json: results of the most recent session.
func LatestSession(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return relay(c, d, datasetLatestSession, latestFallback(d), defaultCache)
	}
}

func latestFallback(d *Deps) latestSessionPayload {
	return latestSessionPayload{
		Message: d.Fallbacks.Messages.LatestSession,
		Results: []any{},
	}
}

func driverStandingsDataset(season int) string {
	return fmt.Sprintf("driver-standings-%d", season)
}

func constructorStandingsDataset(season int) string {
	return fmt.Sprintf("constructor-standings-%d", season)
}

// combinedStandings merges the two standings files. Values are copied as raw
// JSON so the data job's shapes pass through untouched.
type combinedStandings struct {
	Season         json.RawMessage `json:"season"`
	LastUpdated    json.RawMessage `json:"last_updated"`
	CompletedRaces json.RawMessage `json:"completed_races"`
	Drivers        json.RawMessage `json:"drivers"`
	Constructors   json.RawMessage `json:"constructors"`
}

// Standings handles GET /api/standings.json.
// Both driver-standings-<season>.json and constructor-standings-<season>.json
// must be readable; if either is missing the whole answer is the fallback.
func Standings(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		season := d.StandingsSeason

		drivers, err := datastore.Load(d.Store, driverStandingsDataset(season), json.RawMessage(nil))
		if err != nil {
			return internalError(c, d, err, "could not read driver standings")
		}
		constructors, err := datastore.Load(d.Store, constructorStandingsDataset(season), json.RawMessage(nil))
		if err != nil {
			return internalError(c, d, err, "could not read constructor standings")
		}

		if drivers.Fallback || constructors.Fallback {
			return respond(c, false, standingsCache, standingsPayload{
				Message:      d.Fallbacks.Messages.Standings,
				Season:       season,
				LastUpdated:  d.Now().UTC(),
				Drivers:      []any{},
				Constructors: []any{},
			})
		}

		combined := combinedStandings{
			Season:         rawField(drivers.Value, "season"),
			LastUpdated:    rawField(drivers.Value, "last_updated"),
			CompletedRaces: rawField(drivers.Value, "completed_races"),
			Drivers:        rawField(drivers.Value, "standings"),
			Constructors:   rawField(constructors.Value, "standings"),
		}
		return respond(c, drivers.Available && constructors.Available, standingsCache, combined)
	}
}

// rawField returns the raw JSON of path in doc, or null when it's absent.
func rawField(doc []byte, path string) json.RawMessage {
	r := gjson.GetBytes(doc, path)
	if !r.Exists() {
		return json.RawMessage("null")
	}
	return json.RawMessage(r.Raw)
}
