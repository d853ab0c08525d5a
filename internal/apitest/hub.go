package apitest

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/fastorder/storefront/internal/auth"
	"github.com/fastorder/storefront/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// hub is a single-room broadcast hub. Every order status change is pushed to
// every connected client.
type hub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	events     chan []byte
	done       chan struct{}
}

func newHub() *hub {
	return &hub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		events:     make(chan []byte, 16),
		done:       make(chan struct{}),
	}
}

func (h *hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.clients[conn] = true
		case conn := <-h.unregister:
			if h.clients[conn] {
				delete(h.clients, conn)
				conn.Close()
			}
		case msg := <-h.events:
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					delete(h.clients, conn)
					conn.Close()
				}
			}
		case <-h.done:
			for conn := range h.clients {
				conn.Close()
			}
			return
		}
	}
}

func (h *hub) stop() { close(h.done) }

func (h *hub) broadcast(e ws.Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Printf("ERROR: failed to encode event: %v", err)
		return
	}
	select {
	case h.events <- msg:
	case <-h.done:
	}
}

func orderEvent(orderID int64, status string) ws.Event {
	payload, _ := json.Marshal(map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	return ws.Event{Type: "order_status", Payload: payload}
}

// serveWS upgrades the connection after validating the token query parameter.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if _, err := auth.ValidateToken(s.secret, token); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR: websocket upgrade: %v", err)
		return
	}

	s.hub.register <- conn

	// Read loop exists only to detect disconnects.
	go func() {
		defer func() { s.hub.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
