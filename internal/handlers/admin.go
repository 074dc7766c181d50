package handlers

// The write side of the API, used by the offline data job.
// Both routes sit behind middleware.Auth + middleware.RequireRole("admin").

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/trentd187/f1-fansite/internal/datastore"
	"github.com/trentd187/f1-fansite/internal/middleware"
	"github.com/trentd187/f1-fansite/internal/models"
)

// updateNotice is the data of a "dataset-updated" event on /api/updates.
type updateNotice struct {
	Dataset   string    `json:"dataset"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PutDataset handles PUT /api/v1/admin/data/<dataset>.
// The request body must be a JSON document; it replaces the dataset file,
// is recorded in the update log and announced to /api/updates subscribers.
// Answers 201 with the update log entry.
func PutDataset(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("*")
		if !datastore.ValidName(name) {
			return badRequest(c, "invalid dataset name")
		}

		body := c.Body()
		if len(body) == 0 {
			return badRequest(c, "request body is required")
		}

		if err := d.Store.Write(name, body); err != nil {
			if errors.Is(err, datastore.ErrMalformed) {
				return badRequest(c, "request body must be valid JSON")
			}
			return internalError(c, d, err, "could not store dataset")
		}

		subject, _ := c.Locals(middleware.LocalSubject).(string)
		update := &models.DataUpdate{
			Dataset:   name,
			Bytes:     len(body),
			Subject:   subject,
			CreatedAt: d.Now().UTC(),
		}
		// The file is already in place; a failed audit write shouldn't turn the upload into an error.
		if err := d.Updates.Record(c.UserContext(), update); err != nil {
			d.Logger.Error("update log write failed", zap.String("dataset", name), zap.Error(err))
		}

		notice, err := json.Marshal(updateNotice{Dataset: name, UpdatedAt: update.CreatedAt})
		if err == nil && !d.Hub.Publish(name, notice) {
			d.Logger.Warn("update notice dropped", zap.String("dataset", name))
		}

		d.Logger.Info("dataset stored",
			zap.String("dataset", name),
			zap.Int("bytes", len(body)),
			zap.String("subject", subject),
		)
		return c.Status(fiber.StatusCreated).JSON(update)
	}
}

// ListUpdates handles GET /api/v1/admin/updates?limit=20: the most recent uploads, newest first.
func ListUpdates(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)

		updates, err := d.Updates.Recent(c.UserContext(), limit)
		if err != nil {
			return internalError(c, d, err, "could not read update log")
		}
		return c.JSON(fiber.Map{"updates": updates})
	}
}
