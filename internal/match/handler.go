package match

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/quizarena/quizarena-backend/internal/battle"
	"github.com/quizarena/quizarena-backend/internal/matchmaking"
)

// Handler exposes the matchmaking queue over HTTP and owns the wall-clock
// side of the acceptance protocol: one 30s timer per lobby that, on firing,
// synthesizes an abandonment into the queue.
type Handler struct {
	queue        *matchmaking.Service
	battles      *battle.Service
	names        matchmaking.NameResolver
	acceptWindow time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer // lobbyID -> acceptance deadline
}

func NewHandler(queue *matchmaking.Service, battles *battle.Service, names matchmaking.NameResolver, acceptWindow time.Duration) *Handler {
	return &Handler{
		queue:        queue,
		battles:      battles,
		names:        names,
		acceptWindow: acceptWindow,
		timers:       make(map[string]*time.Timer),
	}
}

func (h *Handler) JoinQueue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID string `json:"studentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StudentID == "" {
		http.Error(w, "studentId required", http.StatusBadRequest)
		return
	}

	result := h.queue.Enqueue(req.StudentID)
	if result.Matched {
		h.armAcceptTimer(result.LobbyID)
	}
	writeJSON(w, result)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID string `json:"studentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StudentID == "" {
		http.Error(w, "studentId required", http.StatusBadRequest)
		return
	}

	h.queue.Dequeue(req.StudentID)
	writeJSON(w, map[string]bool{"success": true})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("studentId")
	if studentID == "" {
		http.Error(w, "studentId required", http.StatusBadRequest)
		return
	}
	writeJSON(w, h.queue.Status(studentID))
}

// Accept handles both confirmations and client-reported timeouts. A timeout
// is a ban-worthy offense; a confirmation that completes the pair spins up
// the battle room.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID string `json:"studentId"`
		LobbyID   string `json:"lobbyId"`
		Timeout   bool   `json:"timeout"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StudentID == "" || req.LobbyID == "" {
		http.Error(w, "studentId and lobbyId required", http.StatusBadRequest)
		return
	}

	if req.Timeout {
		ban := h.queue.PenalizeAndRemove(req.StudentID)
		writeJSON(w, map[string]interface{}{"banned": true, "ban": ban})
		return
	}

	result := h.queue.Accept(req.LobbyID, req.StudentID)
	if !result.Ready {
		writeJSON(w, result)
		return
	}

	h.disarmAcceptTimer(req.LobbyID)

	room, err := h.battles.CreateRoom(req.LobbyID,
		battle.Seed{UserID: result.Players[0], Username: h.names.ResolvePlayerName(result.Players[0])},
		battle.Seed{UserID: result.Players[1], Username: h.names.ResolvePlayerName(result.Players[1])},
	)
	if err != nil {
		log.Printf("Failed to create room for lobby %s: %v", req.LobbyID, err)
		writeJSON(w, map[string]interface{}{"ready": true, "lobbyId": req.LobbyID})
		return
	}

	writeJSON(w, map[string]interface{}{
		"ready":   true,
		"lobbyId": req.LobbyID,
		"roomId":  room.RoomID,
		"gameId":  room.GameID,
	})
}

func (h *Handler) BanStatus(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("studentId")
	if studentID == "" {
		http.Error(w, "studentId required", http.StatusBadRequest)
		return
	}
	if ban, banned := h.queue.BanStatus(studentID); banned {
		writeJSON(w, map[string]interface{}{"banned": true, "ban": ban})
		return
	}
	writeJSON(w, map[string]bool{"banned": false})
}

func (h *Handler) armAcceptTimer(lobbyID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.timers[lobbyID]; exists {
		return
	}
	h.timers[lobbyID] = time.AfterFunc(h.acceptWindow, func() {
		h.queue.ExpireAcceptance(lobbyID)
		h.mu.Lock()
		delete(h.timers, lobbyID)
		h.mu.Unlock()
	})
}

func (h *Handler) disarmAcceptTimer(lobbyID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if timer, exists := h.timers[lobbyID]; exists {
		timer.Stop()
		delete(h.timers, lobbyID)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
