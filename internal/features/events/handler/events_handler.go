package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"dispatch-board/internal/core/logger"
	"dispatch-board/internal/features/events/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// keepAliveInterval is how often a comment line is sent so intermediaries
// do not close an idle stream.
const keepAliveInterval = 25 * time.Second

// EventsHandler streams assignment change events over SSE.
type EventsHandler struct {
	// broker fans change events out to connected consoles.
	broker *service.Broker
}

// NewEventsHandler creates a new instance of EventsHandler.
func NewEventsHandler(b *service.Broker) *EventsHandler {
	return &EventsHandler{broker: b}
}

// Stream handles the SSE subscription.
// @Summary Subscribe to assignment change events
// @Description Streams move, rollback and reload events as server-sent events.
// @Produce text/event-stream
// @Success 200
// @Router /events [get]
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	ch := h.broker.Subscribe()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.broker.Unsubscribe(ch)

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case evt, ok := <-ch:
				if !ok {
					return
				}
				payload, err := json.Marshal(evt)
				if err != nil {
					logger.Get().Warn("Failed to encode event", zap.Error(err))
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, payload)
				if err := w.Flush(); err != nil {
					// Client went away.
					return
				}
			case <-keepAlive.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
