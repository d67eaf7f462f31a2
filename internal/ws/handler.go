package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quizarena/quizarena-backend/internal/battle"
	wsPkg "github.com/quizarena/quizarena-backend/pkg/websocket"
)

// Handler serves the per-duel socket: it routes client actions into the
// battle service and broadcasts the resulting state. It also owns the
// per-turn answer timer, which synthesizes a timeout answer when the
// defender never responds.
type Handler struct {
	Hub          *wsPkg.Hub
	battles      *battle.Service
	answerWindow time.Duration
}

func NewHandler(hub *wsPkg.Hub, battles *battle.Service, answerWindow time.Duration) *Handler {
	return &Handler{
		Hub:          hub,
		battles:      battles,
		answerWindow: answerWindow,
	}
}

type clientMessage struct {
	Type        string `json:"type"`
	CardID      string `json:"cardId"`
	Answer      string `json:"answer"`
	PowerUpType string `json:"powerUpType"`
}

func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsPkg.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Upgrade failed: %v", err)
		return
	}

	playerID := r.URL.Query().Get("playerId")
	roomID := r.URL.Query().Get("roomId")

	if playerID == "" || roomID == "" {
		log.Println("Missing playerId or roomId")
		conn.Close()
		return
	}

	room, exists := h.Hub.GetRoom(roomID)
	if !exists {
		log.Printf("Room %s does not exist for player %s", roomID, playerID)
		conn.Close()
		return
	}

	client := wsPkg.NewClient(playerID, conn)
	room.AddClient(client)

	log.Printf("Player %s connected to room %s", playerID, roomID)
	go h.read(client)
	go h.write(client)
}

func (h *Handler) read(c *wsPkg.Client) {
	defer func() {
		if c.Room != nil {
			c.Room.RemoveClient(c)
		}
		c.Conn.Close()
	}()
	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			log.Printf("Read error for client %s: %v", c.ID, err)
			break
		}
		if c.Room == nil {
			break
		}
		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("Failed to unmarshal message from %s: %v", c.ID, err)
			continue
		}
		h.dispatch(c, msg)
	}
}

func (h *Handler) dispatch(c *wsPkg.Client, msg clientMessage) {
	wsRoom := c.Room
	roomID := wsRoom.ID

	switch msg.Type {
	case "join_game_room":
		gameRoom, err := h.battles.GetRoom(roomID)
		if err != nil {
			h.sendError(c, "Failed to join game room")
			return
		}
		wsRoom.Broadcast("", stateUpdate(gameRoom))

	case "select_card":
		gameRoom, err := h.battles.SelectCard(roomID, c.ID, msg.CardID)
		if err != nil {
			h.sendError(c, err.Error())
			return
		}
		wsRoom.Broadcast("", opponentAction(c.ID, msg))
		wsRoom.Broadcast("", stateUpdate(gameRoom))
		h.armAnswerTimer(wsRoom, roomID, msg.CardID)

	case "answer_question":
		gameRoom, outcome, err := h.battles.AnswerQuestion(roomID, c.ID, msg.Answer)
		if err != nil {
			h.sendError(c, err.Error())
			return
		}
		wsRoom.Broadcast("", opponentAction(c.ID, msg))
		wsRoom.Broadcast("", answerResult(outcome))
		wsRoom.Broadcast("", stateUpdate(gameRoom))
		if outcome.Finished {
			wsRoom.Broadcast("", gameEnd(gameRoom))
		}

	case "use_powerup":
		gameRoom, err := h.battles.UsePowerUp(roomID, c.ID, msg.PowerUpType)
		if err != nil {
			h.sendError(c, err.Error())
			return
		}
		wsRoom.Broadcast("", opponentAction(c.ID, msg))
		wsRoom.Broadcast("", stateUpdate(gameRoom))

	case "leave_game_room":
		gameRoom, err := h.battles.Forfeit(roomID, c.ID)
		if err != nil {
			h.sendError(c, err.Error())
			return
		}
		wsRoom.Broadcast("", stateUpdate(gameRoom))
		wsRoom.Broadcast("", gameEnd(gameRoom))
		h.Hub.DropRoom(roomID)

	default:
		log.Printf("Unknown message type %q from %s", msg.Type, c.ID)
	}
}

// armAnswerTimer pins a deadline to the card just played. The battle service
// ignores the expiry when the answer already landed or the exchange moved on.
func (h *Handler) armAnswerTimer(wsRoom *wsPkg.Room, roomID, cardID string) {
	time.AfterFunc(h.answerWindow, func() {
		gameRoom, outcome, fired := h.battles.ExpireAnswer(roomID, cardID)
		if !fired {
			return
		}
		log.Printf("Answer window lapsed in room %s", roomID)
		wsRoom.Broadcast("", answerResult(outcome))
		wsRoom.Broadcast("", stateUpdate(gameRoom))
		if outcome.Finished {
			wsRoom.Broadcast("", gameEnd(gameRoom))
		}
	})
}

func (h *Handler) write(c *wsPkg.Client) {
	defer c.Conn.Close()

	for msg := range c.Send {
		err := c.Conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			log.Printf("Write error for client %s: %v", c.ID, err)
			break
		}
	}
}

// sendError reports a rejected action to the acting client only.
func (h *Handler) sendError(c *wsPkg.Client, message string) {
	payload, err := json.Marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{Type: "error", Message: message})
	if err != nil {
		return
	}
	select {
	case c.Send <- payload:
	default:
	}
}

func stateUpdate(room *battle.Room) []byte {
	payload, err := json.Marshal(struct {
		Type      string       `json:"type"`
		GameState *battle.Room `json:"gameState"`
		Timestamp int64        `json:"timestamp"`
	}{Type: "game_state_update", GameState: room, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		log.Printf("Failed to marshal game_state_update: %v", err)
		return nil
	}
	return payload
}

func opponentAction(playerID string, msg clientMessage) []byte {
	payload, err := json.Marshal(struct {
		Type      string        `json:"type"`
		PlayerID  string        `json:"playerId"`
		Action    clientMessage `json:"action"`
		Timestamp int64         `json:"timestamp"`
	}{Type: "opponent_action", PlayerID: playerID, Action: msg, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		log.Printf("Failed to marshal opponent_action: %v", err)
		return nil
	}
	return payload
}

func answerResult(outcome battle.AnswerOutcome) []byte {
	payload, err := json.Marshal(struct {
		Type string `json:"type"`
		battle.AnswerOutcome
	}{Type: "answer_result", AnswerOutcome: outcome})
	if err != nil {
		log.Printf("Failed to marshal answer_result: %v", err)
		return nil
	}
	return payload
}

func gameEnd(room *battle.Room) []byte {
	payload, err := json.Marshal(struct {
		Type      string       `json:"type"`
		Winner    string       `json:"winner"`
		GameState *battle.Room `json:"gameState"`
	}{Type: "game_end", Winner: room.Winner, GameState: room})
	if err != nil {
		log.Printf("Failed to marshal game_end: %v", err)
		return nil
	}
	return payload
}
