package httpserver

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers connect straight from the frontend origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleRealtime upgrades the connection and hands it to the hub. The
// optional topics query parameter restricts delivery, for example
// /realtime?topics=posts,bucket. No parameter means every topic.
func (s *Server) handleRealtime(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	var topics []string
	if raw := r.URL.Query().Get("topics"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}

	s.hub.ServeConn(conn, topics)
}
