package handlers

import (
	"time"

	"github.com/trentd187/f1-fansite/internal/models"
)

// Fallback payloads. Their shapes match what the front-end reads from the live
// files, with every value the data job would fill in set to null, zero or [].
// All of them carry "available": false.

// raceFallback is next-race.json's stand-in.
type raceFallback struct {
	models.RaceEvent
	Available bool `json:"available"`
}

// sessionPayload is the next-session answer, live or fallback.
type sessionPayload struct {
	models.ResolvedSession
	Available bool `json:"available"`
}

// noSessionPayload is served when the weekend has no session left.
type noSessionPayload struct {
	Message   string  `json:"message"`
	Event     *string `json:"event"`
	Type      *string `json:"type"`
	Name      *string `json:"name"`
	Date      *string `json:"date"`
	Available bool    `json:"available"`
}

type latestSessionPayload struct {
	Message      string  `json:"message"`
	Event        *string `json:"event"`
	Location     *string `json:"location"`
	Country      *string `json:"country"`
	Round        *int    `json:"round"`
	SessionType  *string `json:"session_type"`
	Date         *string `json:"date"`
	Results      []any   `json:"results"`
	TotalDrivers int     `json:"total_drivers"`
	Available    bool    `json:"available"`
}

type constructorSummary struct {
	Team     string `json:"team"`
	Points   int    `json:"points"`
	Position *int   `json:"position"`
}

type currentSeasonPayload struct {
	Season      int                `json:"season"`
	Message     string             `json:"message"`
	Drivers     []any              `json:"drivers"`
	Constructor constructorSummary `json:"constructor"`
	Available   bool               `json:"available"`
}

type driverSeason struct {
	Points   int  `json:"points"`
	Position *int `json:"position"`
	Wins     int  `json:"wins"`
	Podiums  int  `json:"podiums"`
}

type driverPayload struct {
	Message       string       `json:"message"`
	DriverNumber  int          `json:"driver_number"`
	Name          *string      `json:"name"`
	CurrentSeason driverSeason `json:"current_season"`
	Available     bool         `json:"available"`
}

type raceResultsPayload struct {
	Message   string  `json:"message"`
	Event     *string `json:"event"`
	Results   []any   `json:"results"`
	Available bool    `json:"available"`
}

type finalStandings struct {
	Drivers     []any   `json:"drivers"`
	Constructor *string `json:"constructor"`
}

type archivePayload struct {
	Season         int            `json:"season"`
	Message        string         `json:"message"`
	FinalStandings finalStandings `json:"final_standings"`
	Available      bool           `json:"available"`
}

// standingsPayload is the fallback of /api/standings.json.
type standingsPayload struct {
	Message        string    `json:"message"`
	Season         int       `json:"season"`
	LastUpdated    time.Time `json:"last_updated"`
	CompletedRaces int       `json:"completed_races"`
	Drivers        []any     `json:"drivers"`
	Constructors   []any     `json:"constructors"`
	Available      bool      `json:"available"`
}
