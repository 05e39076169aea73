package alarms

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// heartbeatInterval keeps idle SSE connections alive through proxies.
const heartbeatInterval = 15 * time.Second

// streamEvents serves the engine's event feed as server-sent events.
// Each event is written as "event: <kind>" plus a JSON data line. The stream
// ends when the client disconnects or the bus shuts down.
func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)

		return
	}

	// Subscribe before the client sees the response headers so no event
	// published right after connect slips past the stream.
	sub := h.bus.Subscribe()
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	logger.DebugKV(ctx, "Event stream opened", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			logger.DebugKV(ctx, "Event stream closed", "remote", r.RemoteAddr)

			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}

			flusher.Flush()
		case event, open := <-sub.C():
			if !open {
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				logger.ErrorKV(ctx, "Failed to encode event", "error", err)

				continue
			}

			if _, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, data); err != nil {
				return
			}

			flusher.Flush()
		}
	}
}
