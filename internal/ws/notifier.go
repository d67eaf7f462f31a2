package ws

import (
	"encoding/json"
	"log"

	redisM "github.com/redis/go-redis/v9"

	rdbPkg "github.com/quizarena/quizarena-backend/pkg/redis"
)

const notificationsChannel = "notifications"

type notification struct {
	Player  string          `json:"player"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RedisNotifier fans player-directed events out through Redis pub/sub so
// whichever process holds the player's socket can deliver them. Publishing
// is fire-and-forget: failures are logged, never raised to the caller.
type RedisNotifier struct {
	rdb *redisM.Client
}

func NewRedisNotifier(rdb *redisM.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

func (n *RedisNotifier) PushToPlayer(playerID, event string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s payload for %s: %v", event, playerID, err)
		return
	}
	msg, err := json.Marshal(notification{Player: playerID, Type: event, Payload: body})
	if err != nil {
		log.Printf("Failed to marshal %s notification for %s: %v", event, playerID, err)
		return
	}
	if err := n.rdb.Publish(rdbPkg.Ctx, notificationsChannel, msg).Err(); err != nil {
		log.Printf("Failed to publish %s for %s: %v", event, playerID, err)
	}
}
