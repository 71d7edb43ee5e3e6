package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vanta-site/internal/constants"

	"github.com/rs/zerolog"
)

// handleEvents streams re-render signals as server-sent events until the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	logger := zerolog.Ctx(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		logger.Error().Err(err).Msg("streaming unsupported")
		return
	}

	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	heartbeat := time.NewTicker(constants.SSEHeartbeat)
	defer heartbeat.Stop()

	fmt.Fprint(w, ": connected\n\n")
	rc.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			rc.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Error().Err(err).Str("type", ev.Type).Msg("failed to encode event")
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return
			}
			rc.Flush()
		}
	}
}
