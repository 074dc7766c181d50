package handlers

import (
	"bufio"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/trentd187/f1-fansite/internal/broadcast"
	"github.com/trentd187/f1-fansite/internal/datastore"
)

// keepAliveInterval is how often an idle stream gets a comment line, so proxies
// don't time it out and dead connections are noticed on the next write.
const keepAliveInterval = 15 * time.Second

// Updates handles GET /api/updates, a Server-Sent Events stream announcing
// dataset uploads. ?dataset=next-race limits the stream to one dataset;
// without it every update is sent. Each event looks like:
//
//	event: dataset-updated
//	data: {"dataset":"next-race","updated_at":"2025-07-27T13:00:00Z"}
func Updates(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		topic := c.Query("dataset", broadcast.AllTopics)
		if topic != broadcast.AllTopics && !datastore.ValidName(topic) {
			return badRequest(c, "invalid dataset name")
		}

		client := broadcast.NewClient(topic)
		if !d.Hub.Register(client) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "server is shutting down",
			})
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		// Stops nginx from buffering the stream.
		c.Set("X-Accel-Buffering", "no")

		// The stream writer runs after the handler returns, on fasthttp's connection
		// goroutine. A failed Flush means the client went away.
		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer d.Hub.Unregister(client)

			ticker := time.NewTicker(keepAliveInterval)
			defer ticker.Stop()

			fmt.Fprint(w, ": connected\n\n")
			if err := w.Flush(); err != nil {
				return
			}

			for {
				select {
				case msg, ok := <-client.Send:
					if !ok {
						return
					}
					fmt.Fprintf(w, "event: dataset-updated\ndata: %s\n\n", msg)
				case <-ticker.C:
					fmt.Fprint(w, ": keep-alive\n\n")
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}))

		return nil
	}
}
