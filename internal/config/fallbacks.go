package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/trentd187/f1-fansite/internal/models"
)

// Fallbacks collects every constant the API serves when a data file is missing,
// unreadable or stale. Handlers build their fallback payloads from this one
// structure instead of embedding literals of their own.
type Fallbacks struct {
	// NextRace is served by /api/next-race.json when next-race.json can't be read.
	// Its first session is also the fallback answer of /api/next-session.json.
	NextRace models.RaceEvent `yaml:"next_race"`

	// Messages are the user-facing notes attached to each fallback payload.
	Messages Messages `yaml:"messages"`

	// Team is the constructor the season summary follows.
	Team string `yaml:"team"`

	// DriverNames maps a car number to the driver's name for the driver fallback.
	DriverNames map[string]string `yaml:"driver_names"`

	// DefaultArchiveYear is used by /api/f1-data?type=archive when no year is given.
	DefaultArchiveYear int `yaml:"default_archive_year"`
}

// Messages holds one note per fallback payload.
type Messages struct {
	NoSession     string `yaml:"no_session"`
	LatestSession string `yaml:"latest_session"`
	CurrentSeason string `yaml:"current_season"`
	Driver        string `yaml:"driver"`
	Race          string `yaml:"race"`
	Archive       string `yaml:"archive"`
	Standings     string `yaml:"standings"`
}

// DefaultFallbacks returns the built-in fallback values: the 2025 Belgian Grand
// Prix weekend and Italian notes, matching what the site shipped with.
func DefaultFallbacks() *Fallbacks {
	return &Fallbacks{
		NextRace: models.RaceEvent{
			Name:     "Belgian Grand Prix",
			Location: "Spa-Francorchamps",
			Country:  "Belgium",
			Date:     "2025-07-27T15:00:00+02:00",
			Circuit:  "Circuit de Spa-Francorchamps",
			Round:    13,
			Sessions: models.SessionMap{
				models.SessionFP1:        "2025-07-25T12:30:00+02:00",
				models.SessionFP2:        "2025-07-25T16:30:00+02:00",
				models.SessionFP3:        "2025-07-26T12:00:00+02:00",
				models.SessionQualifying: "2025-07-26T16:00:00+02:00",
				models.SessionRace:       "2025-07-27T15:00:00+02:00",
			},
		},
		Messages: Messages{
			NoSession:     "Nessuna sessione programmata",
			LatestSession: "Dati ultima sessione non ancora disponibili",
			CurrentSeason: "Classifiche non ancora disponibili",
			Driver:        "Dati pilota non ancora disponibili",
			Race:          "Risultati gara non ancora disponibili",
			Archive:       "Archivio non ancora disponibile",
			Standings:     "Dati classifiche non ancora disponibili",
		},
		Team: "Ferrari",
		DriverNames: map[string]string{
			"16": "Charles Leclerc",
			"44": "Lewis Hamilton",
		},
		DefaultArchiveYear: 2024,
	}
}

// LoadFallbacks returns the defaults, overlaid with the YAML file at path when
// path is non-empty. Only the values present in the file replace a default;
// a next_race block with a name replaces the whole race, sessions included,
// so a stale session from the default weekend can never leak into a new one.
func LoadFallbacks(path string) (*Fallbacks, error) {
	fb := DefaultFallbacks()
	if path == "" {
		return fb, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fallbacks file: %w", err)
	}

	var overlay Fallbacks
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse fallbacks file %s: %w", path, err)
	}
	fb.merge(overlay)

	return fb, nil
}

// merge copies every non-zero value of o onto f.
func (f *Fallbacks) merge(o Fallbacks) {
	if o.NextRace.Name != "" {
		f.NextRace = o.NextRace
	}
	if o.Team != "" {
		f.Team = o.Team
	}
	if o.DriverNames != nil {
		f.DriverNames = o.DriverNames
	}
	if o.DefaultArchiveYear != 0 {
		f.DefaultArchiveYear = o.DefaultArchiveYear
	}

	m := &f.Messages
	override(&m.NoSession, o.Messages.NoSession)
	override(&m.LatestSession, o.Messages.LatestSession)
	override(&m.CurrentSeason, o.Messages.CurrentSeason)
	override(&m.Driver, o.Messages.Driver)
	override(&m.Race, o.Messages.Race)
	override(&m.Archive, o.Messages.Archive)
	override(&m.Standings, o.Messages.Standings)
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
