package battle

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	redisM "github.com/redis/go-redis/v9"
)

// MatchRecord summarizes a finished duel for the history/stars ledger.
type MatchRecord struct {
	RoomID         string
	GameID         string
	LobbyID        string
	WinnerID       string
	LoserID        string
	WinnerCorrect  int
	LoserCorrect   int
	TotalQuestions int
	Duration       time.Duration
}

// ResultSink receives finished duels. Implementations must not fail the
// duel; recording errors stay on their side of the fence.
type ResultSink interface {
	RecordMatch(rec MatchRecord)
}

// Service drives battle rooms: it owns the in-memory set of active duels,
// persists every mutation to the Store and reports finished matches. All
// public methods serialize on one mutex; persistence and result recording
// run after the room state is already settled.
type Service struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	byLobby map[string]string // lobbyID -> roomID

	store   *Store
	db      *sql.DB
	results ResultSink
}

func NewService(rdb *redisM.Client, db *sql.DB, results ResultSink) *Service {
	return &Service{
		rooms:   make(map[string]*Room),
		byLobby: make(map[string]string),
		store:   NewStore(rdb),
		db:      db,
		results: results,
	}
}

// CreateRoom builds a deck from the question bank and opens a duel for a
// lobby whose both sides accepted.
func (s *Service) CreateRoom(lobbyID string, p1, p2 Seed) (*Room, error) {
	if p1.UserID == p2.UserID {
		return nil, fmt.Errorf("cannot match player %s against themselves", p1.UserID)
	}
	deck, err := s.loadDeck()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if existing, ok := s.byLobby[lobbyID]; ok {
		room := s.rooms[existing]
		s.mu.Unlock()
		log.Printf("Room %s already initialized for lobby %s", existing, lobbyID)
		return room, nil
	}
	room := NewRoom(lobbyID, p1, p2, deck)
	s.rooms[room.RoomID] = room
	s.byLobby[lobbyID] = room.RoomID
	s.mu.Unlock()

	s.persist(room)
	log.Printf("Initialized room %s (game %s) for lobby %s: %s vs %s",
		room.RoomID, room.GameID, lobbyID, p1.UserID, p2.UserID)
	return room, nil
}

// GetRoom returns an active room, rehydrating from Redis when this process
// no longer holds it in memory.
func (s *Service) GetRoom(roomID string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getRoomLocked(roomID)
}

// RoomForLobby resolves the duel created for a matchmaking lobby.
func (s *Service) RoomForLobby(lobbyID string) (*Room, error) {
	s.mu.Lock()
	if roomID, ok := s.byLobby[lobbyID]; ok {
		room, err := s.getRoomLocked(roomID)
		s.mu.Unlock()
		return room, err
	}
	s.mu.Unlock()
	return s.store.LoadByLobbyID(lobbyID)
}

// RoomForGame resolves a duel by its public game id.
func (s *Service) RoomForGame(gameID string) (*Room, error) {
	s.mu.Lock()
	for _, room := range s.rooms {
		if room.GameID == gameID {
			s.mu.Unlock()
			return room, nil
		}
	}
	s.mu.Unlock()
	return s.store.LoadByGameID(gameID)
}

// RoomForPlayer resolves the duel a player is currently part of.
func (s *Service) RoomForPlayer(userID string) (*Room, error) {
	s.mu.Lock()
	for _, room := range s.rooms {
		if room.Player(userID) != nil {
			s.mu.Unlock()
			return room, nil
		}
	}
	s.mu.Unlock()
	return s.store.LoadByPlayer(userID)
}

func (s *Service) SelectCard(roomID, playerID, cardID string) (*Room, error) {
	s.mu.Lock()
	room, err := s.getRoomLocked(roomID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	err = room.SelectCard(playerID, cardID)
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	s.persist(room)
	return room, nil
}

func (s *Service) AnswerQuestion(roomID, playerID, answer string) (*Room, AnswerOutcome, error) {
	s.mu.Lock()
	room, err := s.getRoomLocked(roomID)
	if err != nil {
		s.mu.Unlock()
		return nil, AnswerOutcome{}, err
	}
	outcome, err := room.AnswerQuestion(playerID, answer)
	if err == nil && outcome.Finished {
		s.retireLocked(room)
	}
	s.mu.Unlock()

	if err != nil {
		return nil, AnswerOutcome{}, err
	}
	s.persist(room)
	if outcome.Finished {
		s.reportResult(room)
	}
	return room, outcome, nil
}

// ExpireAnswer is invoked by the gateway's per-turn timer. The cardID pins
// the timer to one exchange: a timer that fires after the answer already
// arrived (or after a new card was played) is a stale no-op.
func (s *Service) ExpireAnswer(roomID, cardID string) (*Room, AnswerOutcome, bool) {
	s.mu.Lock()
	room, err := s.getRoomLocked(roomID)
	if err != nil {
		s.mu.Unlock()
		return nil, AnswerOutcome{}, false
	}
	if room.GamePhase != PhaseAnswering || room.SelectedCard == nil || room.SelectedCard.ID != cardID {
		s.mu.Unlock()
		return nil, AnswerOutcome{}, false
	}
	outcome, err := room.AnswerTimeout()
	if err == nil && outcome.Finished {
		s.retireLocked(room)
	}
	s.mu.Unlock()

	if err != nil {
		log.Printf("Failed to expire answer in room %s: %v", roomID, err)
		return nil, AnswerOutcome{}, false
	}
	s.persist(room)
	if outcome.Finished {
		s.reportResult(room)
	}
	return room, outcome, true
}

func (s *Service) UsePowerUp(roomID, playerID, kind string) (*Room, error) {
	s.mu.Lock()
	room, err := s.getRoomLocked(roomID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	err = room.UsePowerUp(playerID, kind)
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	s.persist(room)
	return room, nil
}

// Forfeit resolves a mid-game departure in the remaining player's favor.
func (s *Service) Forfeit(roomID, playerID string) (*Room, error) {
	s.mu.Lock()
	room, err := s.getRoomLocked(roomID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	err = room.Forfeit(playerID)
	if err == nil {
		s.retireLocked(room)
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	s.persist(room)
	s.reportResult(room)
	return room, nil
}

func (s *Service) getRoomLocked(roomID string) (*Room, error) {
	if room, ok := s.rooms[roomID]; ok {
		return room, nil
	}
	room, err := s.store.Load(roomID)
	if err != nil {
		return nil, err
	}
	if room.GameState == StatePlaying {
		s.rooms[roomID] = room
		s.byLobby[room.LobbyID] = roomID
	}
	return room, nil
}

// retireLocked drops a finished duel from the active set. The persisted copy
// stays in Redis until its TTL reclaims it.
func (s *Service) retireLocked(room *Room) {
	delete(s.rooms, room.RoomID)
	delete(s.byLobby, room.LobbyID)
}

// persist runs after the room mutation is complete; a storage failure is
// logged and never surfaces into the duel.
func (s *Service) persist(room *Room) {
	if err := s.store.Save(room); err != nil {
		log.Printf("Failed to persist room %s: %v", room.RoomID, err)
	}
}

func (s *Service) reportResult(room *Room) {
	if s.results == nil || room.Winner == "" {
		return
	}
	winner := room.Player(room.Winner)
	loser := room.Opponent(room.Winner)
	s.results.RecordMatch(MatchRecord{
		RoomID:         room.RoomID,
		GameID:         room.GameID,
		LobbyID:        room.LobbyID,
		WinnerID:       winner.UserID,
		LoserID:        loser.UserID,
		WinnerCorrect:  winner.CorrectAnswers,
		LoserCorrect:   loser.CorrectAnswers,
		TotalQuestions: room.TotalQuestions,
		Duration:       time.Duration(room.MatchDuration) * time.Millisecond,
	})
}

// loadDeck builds a shuffled deck from the question bank. Card damage is
// fixed here, at creation time, from the question's Bloom's level.
func (s *Service) loadDeck() ([]Card, error) {
	rows, err := s.db.Query(`
		SELECT id, question_text, choices, answer, blooms_level, icon, color
		FROM questions
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		var (
			id          int64
			text, ans   string
			bloom       string
			icon, color sql.NullString
			choices     pq.StringArray
		)
		if err := rows.Scan(&id, &text, &choices, &ans, &bloom, &icon, &color); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		level := NormalizeBloomLevel(bloom)
		cards = append(cards, Card{
			ID:         fmt.Sprintf("q_%d", id),
			Type:       CardTypeQuestion,
			Question:   text,
			Choices:    choices,
			Answer:     ans,
			BloomLevel: level,
			Damage:     DamageForBloom(level),
			Icon:       icon.String,
			Color:      color.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("no questions in the bank, cannot build a deck")
	}
	return shuffleCards(cards), nil
}

// NormalizeBloomLevel maps free-form question metadata onto the six
// canonical levels, defaulting to Remembering.
func NormalizeBloomLevel(level string) BloomLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "remembering":
		return Remembering
	case "understanding":
		return Understanding
	case "applying":
		return Applying
	case "analyzing":
		return Analyzing
	case "evaluating":
		return Evaluating
	case "creating":
		return Creating
	}
	log.Printf("Unknown Bloom's level %q, defaulting to Remembering", level)
	return Remembering
}
