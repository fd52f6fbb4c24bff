// ABOUTME: Websocket endpoint streaming session status to clients
// ABOUTME: One writer per connection; a reader goroutine detects disconnects
package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pcmscope/pcmscope-go/internal/session"
)

const (
	writeDeadline = 10 * time.Second
	pingInterval  = 30 * time.Second
)

// handleWebSocket handles GET /ws
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.requireSession(w) {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()

	s.addClient(r.RemoteAddr)
	defer s.removeClient(r.RemoteAddr)

	log.Printf("New WebSocket connection from %s", r.RemoteAddr)
	s.streamStatus(conn)
	log.Printf("Client disconnected: %s", r.RemoteAddr)
}

// streamStatus writes the current status, then every published update
func (s *Server) streamStatus(conn *websocket.Conn) {
	defer conn.Close()

	updates, unsubscribe := s.session.Subscribe()
	defer unsubscribe()

	// Clients only send control frames; reading drives pong and close handling
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("WebSocket error: %v", err)
				}
				return
			}
		}
	}()

	if err := writeStatus(conn, s.session.Status()); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case st := <-updates:
			if err := writeStatus(conn, st); err != nil {
				log.Printf("Error writing status: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		case <-closed:
			return
		case <-s.stopChan:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			return
		}
	}
}

func writeStatus(conn *websocket.Conn, st session.Status) error {
	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return conn.WriteJSON(st)
}

func (s *Server) addClient(addr string) {
	s.clientsMu.Lock()
	s.clients[addr] = time.Now()
	s.clientsMu.Unlock()
	s.metrics.AddStreamClients(1)
}

func (s *Server) removeClient(addr string) {
	s.clientsMu.Lock()
	delete(s.clients, addr)
	s.clientsMu.Unlock()
	s.metrics.AddStreamClients(-1)
}
