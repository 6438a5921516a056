package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleStandingsStream upgrades the connection and pushes a standings
// snapshot whenever a round submission succeeds, starting with the current
// state.
func (s *Server) handleStandingsStream(w http.ResponseWriter, r *http.Request) {
	updates, cancel, err := s.board.Subscribe(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "not available")
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		// Discard inbound frames; the read loop only detects disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case standings, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(standings); err != nil {
				slog.Warn("ws write failed", "error", err)
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
