package battle

import (
	"encoding/json"
	"fmt"
	"time"

	redisM "github.com/redis/go-redis/v9"

	rdbPkg "github.com/quizarena/quizarena-backend/pkg/redis"
)

// Store persists rooms to Redis. The primary record lives at room:<roomId>;
// game:<gameId>, lobby:<lobbyId>:room and player:<userId>:room point back at
// the roomId for the secondary lookups. Every key expires with the room's
// creation-based TTL, so finished and abandoned duels are reclaimed alike.
type Store struct {
	rdb *redisM.Client
}

func NewStore(rdb *redisM.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Save(room *Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room %s: %w", room.RoomID, err)
	}
	ttl := time.Until(room.ExpiresAt)
	if ttl <= 0 {
		// Past its window; let Redis drop whatever is left.
		return nil
	}
	if err := s.rdb.Set(rdbPkg.Ctx, "room:"+room.RoomID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store room %s: %w", room.RoomID, err)
	}
	s.rdb.Set(rdbPkg.Ctx, "game:"+room.GameID, room.RoomID, ttl)
	s.rdb.Set(rdbPkg.Ctx, "lobby:"+room.LobbyID+":room", room.RoomID, ttl)
	for i := range room.Players {
		s.rdb.Set(rdbPkg.Ctx, "player:"+room.Players[i].UserID+":room", room.RoomID, ttl)
	}
	return nil
}

func (s *Store) Load(roomID string) (*Room, error) {
	data, err := s.rdb.Get(rdbPkg.Ctx, "room:"+roomID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load room %s: %w", roomID, err)
	}
	var room Room
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room %s: %w", roomID, err)
	}
	return &room, nil
}

func (s *Store) LoadByGameID(gameID string) (*Room, error) {
	roomID, err := s.rdb.Get(rdbPkg.Ctx, "game:"+gameID).Result()
	if err != nil {
		return nil, fmt.Errorf("no room for game %s: %w", gameID, err)
	}
	return s.Load(roomID)
}

func (s *Store) LoadByLobbyID(lobbyID string) (*Room, error) {
	roomID, err := s.rdb.Get(rdbPkg.Ctx, "lobby:"+lobbyID+":room").Result()
	if err != nil {
		return nil, fmt.Errorf("no room for lobby %s: %w", lobbyID, err)
	}
	return s.Load(roomID)
}

func (s *Store) LoadByPlayer(userID string) (*Room, error) {
	roomID, err := s.rdb.Get(rdbPkg.Ctx, "player:"+userID+":room").Result()
	if err != nil {
		return nil, fmt.Errorf("no room for player %s: %w", userID, err)
	}
	return s.Load(roomID)
}
