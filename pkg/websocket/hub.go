package websocket

import (
	"log"
	"sync"

	redisM "github.com/redis/go-redis/v9"

	"github.com/quizarena/quizarena-backend/pkg/redis"
)

type Hub struct {
	Rooms map[string]*Room
	mu    sync.Mutex
	rdb   *redisM.Client
}

func NewHub(rdb *redisM.Client) *Hub {
	return &Hub{
		Rooms: make(map[string]*Room),
		rdb:   rdb,
	}
}

// GetRoom returns the in-memory room, lazily creating it when the duel
// still exists in Redis (e.g. after a reconnect to another socket).
func (h *Hub) GetRoom(roomID string) (*Room, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, exists := h.Rooms[roomID]; exists {
		return room, true
	}

	exists, err := h.rdb.Exists(redis.Ctx, "room:"+roomID).Result()
	if err != nil {
		log.Printf("Failed to check room %s in Redis: %v", roomID, err)
		return nil, false
	}
	if exists == 0 {
		log.Printf("Room %s not found in Redis", roomID)
		return nil, false
	}

	room := NewRoom(roomID)
	h.Rooms[roomID] = room
	return room, true
}

func (h *Hub) DropRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.Rooms, roomID)
}
