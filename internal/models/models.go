// Package models defines the data structures shared across the F1 fan site API.
// Most of them describe the JSON files produced by the offline data job (race
// weekends, sessions) and the payloads the API sends back. DataUpdate is the one
// GORM model: it maps to the data_updates table used as an audit trail of uploads.
//
// The data model is deliberately thin:
//   - A RaceEvent is one race weekend (name, circuit, round) plus its session times
//   - A SessionMap holds the start time of each on-track session of that weekend
//   - A ResolvedSession is the answer to "what is the next session?"
package models

import (
	"time"

	// uuid gives DataUpdate rows a globally unique primary key.
	"github.com/google/uuid"
	// gjson walks the "sessions" object without committing to a value type per key.
	"github.com/tidwall/gjson"
)

// --- Enums ---

// SessionKey identifies one on-track session of a race weekend.
// The values match the keys used in the "sessions" object of next-race.json.
type SessionKey string

const (
	SessionFP1        SessionKey = "fp1"        // First free practice
	SessionFP2        SessionKey = "fp2"        // Second free practice
	SessionFP3        SessionKey = "fp3"        // Third free practice
	SessionQualifying SessionKey = "qualifying" // Qualifying, sets the starting grid
	SessionRace       SessionKey = "race"       // The Grand Prix itself
)

// SessionMap maps a session key to its start time as written in the data file:
// an ISO-8601 timestamp with a UTC offset, e.g. "2025-07-27T15:00:00+02:00".
// The raw string is kept so that one bad entry doesn't make the whole file
// unreadable; parsing happens when a session is resolved.
// Not every key needs to be present (sprint weekends have no fp2/fp3).
type SessionMap map[SessionKey]string

// UnmarshalJSON keeps the string entries of a "sessions" object and drops the rest.
// A number, object or null under one key makes only that key absent, and a
// "sessions" value that isn't an object decodes to an empty map.
func (m *SessionMap) UnmarshalJSON(data []byte) error {
	out := SessionMap{}
	r := gjson.ParseBytes(data)
	if r.IsObject() {
		r.ForEach(func(key, value gjson.Result) bool {
			if value.Type == gjson.String {
				out[SessionKey(key.String())] = value.String()
			}
			return true
		})
	}
	*m = out
	return nil
}

// RaceEvent describes a single race weekend, as stored in next-race.json.
// It's loaded fresh for each request and never mutated.
type RaceEvent struct {
	Name     string     `json:"name"`           // e.g. "Belgian Grand Prix"
	Location string     `json:"location"`       // e.g. "Spa-Francorchamps"
	Country  string     `json:"country"`        // e.g. "Belgium"
	Date     string     `json:"date,omitempty"` // Race start, duplicated from sessions.race by the data job
	Circuit  string     `json:"circuit"`        // e.g. "Circuit de Spa-Francorchamps"
	Round    int        `json:"round"`          // Round number within the season
	Sessions SessionMap `json:"sessions"`       // Session start times; may be missing or empty
}

// ResolvedSession is the next upcoming session of a race weekend.
// The JSON names (name, fullName, date) are the ones the site's front-end already reads.
type ResolvedSession struct {
	Type            SessionKey `json:"type"`     // Which session this is, e.g. "qualifying"
	DisplayName     string     `json:"name"`     // Short label, e.g. "FP1" or "Qualifiche"
	FullDisplayName string     `json:"fullName"` // Long label, e.g. "Prove Libere 1"
	Date            string     `json:"date"`     // Start time exactly as written in the data file
	StartTime       time.Time  `json:"-"`        // Date parsed, for comparisons and the calendar
	Event           string     `json:"event"`    // Name of the race weekend
	Location        string     `json:"location"`
	Country         string     `json:"country"`
	Circuit         string     `json:"circuit"`
	Round           int        `json:"round"`
}

// DataUpdate records one dataset upload accepted through the admin API.
// Rows are append-only: they're written once and only ever listed afterwards.
type DataUpdate struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Dataset   string    `gorm:"not null;index" json:"dataset"` // Dataset name, e.g. "next-race" or "drivers/driver_16"
	Bytes     int       `gorm:"not null" json:"bytes"`         // Size of the stored JSON document
	Subject   string    `gorm:"not null" json:"subject"`       // JWT subject of the uploader
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName pins the table name so it matches the migration regardless of GORM's pluralisation rules.
func (DataUpdate) TableName() string { return "data_updates" }
