// Package handlers contains the HTTP route handler functions for the F1 fan site API.
// Each handler reads one or more datasets through the datastore gateway and answers
// with the live data, or with a fallback payload built from config.Fallbacks.
//
// Every exported function follows the "handler factory" pattern: it takes the
// shared *Deps and returns a fiber.Handler, so dependencies are injected
// instead of living in package globals.
//
// --- Status codes ---
//
//	200 OK        live data, cached for a few minutes
//	202 Accepted  fallback or data flagged "available": false, cached briefly
//	400           invalid query parameters
//	500           anything unexpected (never cached)
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/trentd187/f1-fansite/internal/broadcast"
	"github.com/trentd187/f1-fansite/internal/config"
	"github.com/trentd187/f1-fansite/internal/database"
	"github.com/trentd187/f1-fansite/internal/datastore"
)

// Deps bundles what the handlers need.
type Deps struct {
	Store           *datastore.Gateway
	Fallbacks       *config.Fallbacks
	Updates         database.UpdateLog
	Hub             *broadcast.Hub
	Logger          *zap.Logger
	Now             func() time.Time // Injected so tests can pin the clock
	StandingsSeason int
}

// CachePolicy is the Cache-Control max-age used for each kind of answer.
type CachePolicy struct {
	Fresh       time.Duration // for 200 responses
	Unavailable time.Duration // for 202 responses
}

var (
	// defaultCache applies to every endpoint except standings.
	defaultCache = CachePolicy{Fresh: 5 * time.Minute, Unavailable: time.Minute}
	// standingsCache is longer: standings only move once per race.
	standingsCache = CachePolicy{Fresh: 30 * time.Minute, Unavailable: 5 * time.Minute}
)

// Dataset names of the files written by the data job.
const (
	datasetNextRace      = "next-race"
	datasetLatestSession = "latest-session"
	datasetCurrentSeason = "current-season"
)

// Datasets lists the fixed dataset names, for the freshness report.
func Datasets(season int) []string {
	return []string{
		datasetNextRace,
		datasetLatestSession,
		datasetCurrentSeason,
		driverStandingsDataset(season),
		constructorStandingsDataset(season),
	}
}

// setCache writes the Cache-Control header and returns the status for available/unavailable data.
func setCache(c *fiber.Ctx, available bool, policy CachePolicy) int {
	status, maxAge := fiber.StatusOK, policy.Fresh
	if !available {
		status, maxAge = fiber.StatusAccepted, policy.Unavailable
	}
	c.Set(fiber.HeaderCacheControl, fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
	return status
}

// respond sends body as JSON with the status and cache header matching its availability.
// json.RawMessage bodies are sent as they are, byte for byte.
func respond(c *fiber.Ctx, available bool, policy CachePolicy, body any) error {
	status := setCache(c, available, policy)
	if raw, ok := body.(json.RawMessage); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(status).Send(raw)
	}
	return c.Status(status).JSON(body)
}

// relay serves a dataset verbatim, or fallback when it can't be read.
func relay(c *fiber.Ctx, d *Deps, dataset string, fallback any, policy CachePolicy) error {
	fb, err := json.Marshal(fallback)
	if err != nil {
		return internalError(c, d, err, "could not encode fallback data")
	}

	res, err := datastore.Load(d.Store, dataset, json.RawMessage(fb))
	if err != nil {
		if errors.Is(err, datastore.ErrInvalidName) {
			return badRequest(c, "invalid dataset name")
		}
		return internalError(c, d, err, "could not read data")
	}
	return respond(c, res.Available, policy, res.Value)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// internalError logs err and answers 500 without a cache header.
func internalError(c *fiber.Ctx, d *Deps, err error, msg string) error {
	d.Logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "internal server error",
		"message": msg,
	})
}
