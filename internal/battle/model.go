package battle

import (
	"time"
)

type BloomLevel string

const (
	Remembering   BloomLevel = "Remembering"
	Understanding BloomLevel = "Understanding"
	Applying      BloomLevel = "Applying"
	Analyzing     BloomLevel = "Analyzing"
	Evaluating    BloomLevel = "Evaluating"
	Creating      BloomLevel = "Creating"
)

var bloomDamage = map[BloomLevel]int{
	Remembering:   5,
	Understanding: 10,
	Applying:      15,
	Analyzing:     20,
	Evaluating:    25,
	Creating:      30,
}

// DamageForBloom maps a Bloom's taxonomy level to card damage. Damage is
// fixed on the card at deck-creation time and never recomputed mid-duel.
func DamageForBloom(level BloomLevel) int {
	if dmg, ok := bloomDamage[level]; ok {
		return dmg
	}
	return 10
}

const (
	CardTypeQuestion = "question"

	PowerUpDamageMultiplier = "damage_multiplier"
	TrapBarrier             = "barrier"
	TrapSafetyNet           = "safety_net"
)

type Card struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Question   string     `json:"question"`
	Choices    []string   `json:"choices"`
	Answer     string     `json:"answer"`
	BloomLevel BloomLevel `json:"bloom_level"`
	Damage     int        `json:"damage"`
	Icon       string     `json:"icon"`
	Color      string     `json:"color"`
}

// PowerUp is an attacker-side modifier consumed one charge per boosted hit.
type PowerUp struct {
	Type       string  `json:"type"`
	Multiplier float64 `json:"multiplier"`
	UsesLeft   int     `json:"usesLeft"`
}

// Trap is a defender-side mitigation: barrier absorbs incoming damage,
// safety_net stops a hit from dropping hp below 1.
type Trap struct {
	Type     string `json:"type"`
	Absorb   int    `json:"absorb"`
	UsesLeft int    `json:"usesLeft"`
}

const (
	InitialHP       = 100
	InitialHandSize = 5
)

type Player struct {
	UserID         string          `json:"userId"`
	Username       string          `json:"username"`
	HP             int             `json:"hp"`
	MaxHP          int             `json:"maxHp"`
	Cards          []Card          `json:"cards"`
	CorrectAnswers int             `json:"correctAnswers"`
	ActivePowerUps []PowerUp       `json:"activePowerUps"`
	DefenseTrap    *Trap           `json:"defenseTrap"`
	UsedPowerUps   map[string]bool `json:"usedPowerUps"`
}

const (
	PhaseCardSelection = "cardSelection"
	PhaseAnswering     = "answering"
	PhaseFinished      = "finished"

	StateWaiting  = "waiting"
	StatePlaying  = "playing"
	StateFinished = "finished"
)

// Room is the authoritative duel state. It is persisted as-is to Redis with
// a 30-minute TTL counted from creation.
type Room struct {
	RoomID         string    `json:"roomId"`
	GameID         string    `json:"gameId"`
	LobbyID        string    `json:"lobbyId"`
	Players        [2]Player `json:"players"`
	Deck           []Card    `json:"deck"`
	Discard        []Card    `json:"discard"`
	CurrentTurn    string    `json:"currentTurn"`
	GamePhase      string    `json:"gamePhase"`
	GameState      string    `json:"gameState"`
	SelectedCard   *Card     `json:"selectedCard"`
	Winner         string    `json:"winner"`
	TotalQuestions int       `json:"totalQuestions"`
	MatchStartTime int64     `json:"matchStartTime"` // unix millis
	MatchDuration  int64     `json:"matchDuration"`  // millis
	ExpiresAt      time.Time `json:"expiresAt"`
}

// Player returns the room member with the given id, or nil.
func (r *Room) Player(userID string) *Player {
	for i := range r.Players {
		if r.Players[i].UserID == userID {
			return &r.Players[i]
		}
	}
	return nil
}

// Opponent returns the other room member, or nil when userID is unknown.
func (r *Room) Opponent(userID string) *Player {
	if r.Player(userID) == nil {
		return nil
	}
	for i := range r.Players {
		if r.Players[i].UserID != userID {
			return &r.Players[i]
		}
	}
	return nil
}
