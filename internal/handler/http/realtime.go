package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/realtime"
	"github.com/go-chi/chi/v5"
)

// Subscriber is the part of realtime.Hub the stream needs.
type Subscriber interface {
	Subscribe(table string) (<-chan realtime.Change, func())
}

type RealtimeHandler interface {
	// Stream serves GET /realtime/{table}?token= as server-sent events
	Stream(w http.ResponseWriter, r *http.Request)
}

type realtimeHandlerImpl struct {
	jwtService jwt.Service
	hub        Subscriber
	keepalive  time.Duration
}

func NewRealtimeHandler(jwtService jwt.Service, hub Subscriber) RealtimeHandler {
	return &realtimeHandlerImpl{
		jwtService: jwtService,
		hub:        hub,
		keepalive:  30 * time.Second,
	}
}

// Stream implements RealtimeHandler. The table "all" streams every table.
func (h *realtimeHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if table == "all" {
		table = realtime.AllTables
	} else if !realtime.IsKnownTable(table) {
		response.NotFound(w, fmt.Sprintf("Unknown table '%s'", table))
		return
	}

	// EventSource cannot send headers, so the short-lived SSE token rides in the query
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}
	userID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	changes, cleanup := h.hub.Subscribe(table)
	defer cleanup()

	slog.Debug("realtime stream opened", "user_id", userID, "table", table)
	fmt.Fprintf(w, "event: connected\ndata: {\"table\":%q}\n\n", table)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case change, ok := <-changes:
			if !ok {
				return
			}
			data, err := json.Marshal(change)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: change\ndata: %s\n\n", change.ID, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			slog.Debug("realtime stream closed", "user_id", userID, "table", table)
			return
		}
	}
}
