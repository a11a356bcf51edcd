package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The page is served from the same origin; tooling connects directly.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleSocket attaches one device to a session over a websocket. The
// current state is sent immediately as the initial sync, then one snapshot
// per accepted edit. Edits may also be submitted on the socket and follow
// the same translate-then-apply path as the HTTP edit endpoint.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if sessionID == "" {
		writeClientError(w, "missing session id")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub, initial := s.sync.Subscribe(sessionID)
	log := s.log.With(zap.String("session", sessionID))
	log.Info("device subscribed")

	// Writer: initial snapshot, then pushed updates, until unsubscribed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer conn.Close()

		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(initial); err != nil {
			log.Debug("initial snapshot write failed", zap.Error(err))
			return
		}

		for state := range sub.Updates() {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(state); err != nil {
				log.Debug("snapshot write failed", zap.Error(err))
				return
			}
		}
	}()

	// Reader: inbound edits until the device disconnects.
	for {
		var req editRequest
		if err := conn.ReadJSON(&req); err != nil {
			break
		}
		if _, err := s.applyEdit(r.Context(), sessionID, req); err != nil {
			log.Debug("socket edit rejected", zap.Error(err))
		}
	}

	s.sync.Unsubscribe(sub)
	<-done
	log.Info("device disconnected")
}
