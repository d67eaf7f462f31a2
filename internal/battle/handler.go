package battle

import (
	"encoding/json"
	"log"
	"net/http"
)

// Handler exposes read-only room lookups for clients rejoining a duel:
// by roomId, gameId, lobbyId or the player's own id.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		room *Room
		err  error
	)
	switch {
	case q.Get("roomId") != "":
		room, err = h.service.GetRoom(q.Get("roomId"))
	case q.Get("gameId") != "":
		room, err = h.service.RoomForGame(q.Get("gameId"))
	case q.Get("lobbyId") != "":
		room, err = h.service.RoomForLobby(q.Get("lobbyId"))
	case q.Get("playerId") != "":
		room, err = h.service.RoomForPlayer(q.Get("playerId"))
	default:
		http.Error(w, "roomId, gameId, lobbyId or playerId required", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(room); err != nil {
		log.Printf("Failed to encode room %s: %v", room.RoomID, err)
	}
}
