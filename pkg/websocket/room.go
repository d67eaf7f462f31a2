package websocket

import (
	"log"
	"sync"
)

type Room struct {
	ID      string
	Clients map[string]*Client
	mu      sync.Mutex
}

func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		Clients: make(map[string]*Client),
	}
}

// Broadcast sends a message to every client in the room except senderID.
// Pass an empty senderID to reach everyone.
func (r *Room) Broadcast(senderID string, message []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, client := range r.Clients {
		if id == senderID {
			continue
		}
		select {
		case client.Send <- message:
		default:
			log.Printf("Dropped message for slow client %s in room %s", id, r.ID)
		}
	}
}

func (r *Room) AddClient(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Clients[c.ID] = c
	c.Room = r
	log.Printf("Client %s joined room %s", c.ID, r.ID)
}

func (r *Room) RemoveClient(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.Clients, c.ID)
	c.Room = nil
	log.Printf("Client %s left room %s", c.ID, r.ID)
}
