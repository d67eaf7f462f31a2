package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/quizarena/quizarena-backend/internal/matchmaking"
	wsPkg "github.com/quizarena/quizarena-backend/pkg/websocket"
)

// GeneralHandler serves the lobby-wide socket used for matchmaking pushes
// (match_found, match_ready). Closing it counts as leaving the queue.
type GeneralHandler struct {
	Hub   *wsPkg.GeneralHub
	queue *matchmaking.Service
}

func NewGeneralHandler(hub *wsPkg.GeneralHub, queue *matchmaking.Service) *GeneralHandler {
	return &GeneralHandler{
		Hub:   hub,
		queue: queue,
	}
}

func (h *GeneralHandler) ServeGeneralWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsPkg.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("General WS upgrade failed: %v", err)
		return
	}
	playerID := r.URL.Query().Get("playerId")

	if playerID == "" {
		log.Println("Player ID is missing in the request")
		conn.Close()
		return
	}
	client := &wsPkg.GeneralClient{
		ID:   playerID,
		Conn: conn,
		Send: make(chan []byte, 10),
	}
	h.Hub.AddClient(client)

	go h.read(client)
	go h.write(client)
}

func (h *GeneralHandler) read(c *wsPkg.GeneralClient) {
	defer func() {
		h.Hub.RemoveClient(c)
		// A dropped socket abandons the queue and any pending pairing.
		h.queue.Dequeue(c.ID)
		c.Conn.Close()
	}()
	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			log.Printf("General read error for %s: %v", c.ID, err)
			break
		}
		// Clients only listen on this socket.
	}
}

func (h *GeneralHandler) write(c *wsPkg.GeneralClient) {
	defer c.Conn.Close()

	for msg := range c.Send {
		err := c.Conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			log.Printf("General write error for %s: %v", c.ID, err)
			break
		}
	}
}
