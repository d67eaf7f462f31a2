package ws

import (
	"encoding/json"
	"log"

	redisM "github.com/redis/go-redis/v9"

	rdbPkg "github.com/quizarena/quizarena-backend/pkg/redis"
	wsPkg "github.com/quizarena/quizarena-backend/pkg/websocket"
)

// NotificationWorker moves player-directed events from the Redis channel to
// the matching general websocket client. Players without an open socket
// simply miss the push; the HTTP status endpoint covers them.
type NotificationWorker struct {
	RedisClient *redisM.Client
	GeneralHub  *wsPkg.GeneralHub
}

func NewNotificationWorker(rdb *redisM.Client, hub *wsPkg.GeneralHub) *NotificationWorker {
	return &NotificationWorker{
		RedisClient: rdb,
		GeneralHub:  hub,
	}
}

func (w *NotificationWorker) Run() {
	log.Println("Notification worker starting...")
	pubsub := w.RedisClient.Subscribe(rdbPkg.Ctx, notificationsChannel)
	defer pubsub.Close()

	for {
		msg, err := pubsub.ReceiveMessage(rdbPkg.Ctx)
		if err != nil {
			log.Printf("Notification pub/sub error: %v", err)
			continue
		}

		var n notification
		if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
			log.Printf("Failed to unmarshal notification: %v", err)
			continue
		}

		clientMsg, err := json.Marshal(struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}{Type: n.Type, Payload: n.Payload})
		if err != nil {
			log.Printf("Failed to marshal client notification: %v", err)
			continue
		}

		if !w.GeneralHub.SendToClient(n.Player, clientMsg) {
			log.Printf("No open socket for player %s, dropped %s", n.Player, n.Type)
		}
	}
}
