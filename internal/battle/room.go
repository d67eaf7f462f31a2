package battle

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RoomTTL bounds every duel: the persisted room is reclaimed this long after
// creation whether or not it finished.
const RoomTTL = 30 * time.Minute

// Invalid actions are rejected with the state unchanged and reported to the
// acting client only.
var (
	ErrGameFinished  = errors.New("game already finished")
	ErrWrongPhase    = errors.New("action not valid in current phase")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrNotInRoom     = errors.New("player not in this room")
	ErrCardNotInHand = errors.New("card not in hand")
	ErrTrapActive    = errors.New("a defense trap is already set")
	ErrPowerUpUsed   = errors.New("power-up already used this match")
)

// Seed identifies one participant when a room is created.
type Seed struct {
	UserID   string
	Username string
}

// NewRoom deals a fresh duel from a pre-built deck. The first seed opens the
// game and is compensated with an extra card for the defender's advantage,
// so the opener holds six cards and the opponent five.
func NewRoom(lobbyID string, p1, p2 Seed, deck []Card) *Room {
	now := time.Now()
	r := &Room{
		RoomID:         "room_" + uuid.NewString(),
		GameID:         "game_" + uuid.NewString(),
		LobbyID:        lobbyID,
		CurrentTurn:    p1.UserID,
		GamePhase:      PhaseCardSelection,
		GameState:      StatePlaying,
		MatchStartTime: now.UnixMilli(),
		ExpiresAt:      now.Add(RoomTTL),
	}
	r.Players[0] = newPlayer(p1)
	r.Players[1] = newPlayer(p2)
	r.Deck = deck
	for i := 0; i < InitialHandSize; i++ {
		r.drawCard(&r.Players[0])
		r.drawCard(&r.Players[1])
	}
	r.drawCard(&r.Players[0])
	return r
}

func newPlayer(seed Seed) Player {
	return Player{
		UserID:       seed.UserID,
		Username:     seed.Username,
		HP:           InitialHP,
		MaxHP:        InitialHP,
		UsedPowerUps: make(map[string]bool),
	}
}

// SelectCard moves a card from the turn owner's hand onto the table and
// advances the phase to answering.
func (r *Room) SelectCard(playerID, cardID string) error {
	if r.GameState != StatePlaying {
		return ErrGameFinished
	}
	if r.GamePhase != PhaseCardSelection {
		return ErrWrongPhase
	}
	player := r.Player(playerID)
	if player == nil {
		return ErrNotInRoom
	}
	if r.CurrentTurn != playerID {
		return ErrNotYourTurn
	}
	for i := range player.Cards {
		if player.Cards[i].ID == cardID {
			card := player.Cards[i]
			player.Cards = append(player.Cards[:i], player.Cards[i+1:]...)
			r.SelectedCard = &card
			r.GamePhase = PhaseAnswering
			return nil
		}
	}
	return ErrCardNotInHand
}

type AnswerOutcome struct {
	IsCorrect       bool   `json:"isCorrect"`
	Answer          string `json:"answer"`
	Damage          int    `json:"damage"`
	BarrierAbsorbed int    `json:"barrierAbsorbed"`
	SafetyNetSaved  bool   `json:"safetyNetSaved,omitempty"`
	TimedOut        bool   `json:"timedOut,omitempty"`
	Finished        bool   `json:"finished"`
	Winner          string `json:"winner,omitempty"`
}

// AnswerQuestion resolves the defender's answer to the selected card. A
// wrong answer damages the answerer through the effect engine; a correct one
// damages nobody and credits the answerer. Either way the card is discarded,
// the challenger draws a replacement and the turn flips.
func (r *Room) AnswerQuestion(playerID, answer string) (AnswerOutcome, error) {
	answerer, err := r.answeringPlayer(playerID)
	if err != nil {
		return AnswerOutcome{}, err
	}

	outcome := AnswerOutcome{
		IsCorrect: answer == r.SelectedCard.Answer,
		Answer:    answer,
	}
	r.TotalQuestions++

	if outcome.IsCorrect {
		answerer.CorrectAnswers++
	} else {
		res := ResolveDamage(r, r.CurrentTurn, answerer.UserID, r.SelectedCard.Damage)
		outcome.Damage = res.Damage
		outcome.BarrierAbsorbed = res.BarrierAbsorbed
		outcome.SafetyNetSaved = r.applyDamage(answerer, res.Damage)
	}

	r.finishExchange(answerer, &outcome)
	return outcome, nil
}

// AnswerTimeout is synthesized by the gateway when the answer window lapses.
// It counts as a wrong answer resolved at plain base damage: the answerer
// never acted, so no power-up or trap charge is spent and no mitigation
// applies.
func (r *Room) AnswerTimeout() (AnswerOutcome, error) {
	answerer := r.Opponent(r.CurrentTurn)
	if answerer == nil {
		return AnswerOutcome{}, ErrNotInRoom
	}
	if _, err := r.answeringPlayer(answerer.UserID); err != nil {
		return AnswerOutcome{}, err
	}

	damage := r.SelectedCard.Damage
	if damage < 0 {
		damage = 0
	}
	answerer.HP -= damage
	if answerer.HP < 0 {
		answerer.HP = 0
	}

	outcome := AnswerOutcome{TimedOut: true, Damage: damage}
	r.TotalQuestions++
	r.finishExchange(answerer, &outcome)
	return outcome, nil
}

// applyDamage subtracts hp and reports whether a safety_net fired. The net
// keeps hp at 1 and burns one charge; it is resolved here, not in the effect
// engine, because it needs the post-damage value.
func (r *Room) applyDamage(target *Player, damage int) bool {
	target.HP -= damage
	if target.HP >= 1 {
		return false
	}
	trap := target.DefenseTrap
	if trap != nil && trap.Type == TrapSafetyNet && trap.UsesLeft > 0 {
		target.HP = 1
		trap.UsesLeft--
		if trap.UsesLeft == 0 {
			target.DefenseTrap = nil
		}
		return true
	}
	if target.HP < 0 {
		target.HP = 0
	}
	return false
}

// finishExchange discards the played card, refills the challenger's hand and
// either ends the game or hands the turn to the answerer.
func (r *Room) finishExchange(answerer *Player, outcome *AnswerOutcome) {
	challenger := r.Player(r.CurrentTurn)

	r.Discard = append(r.Discard, *r.SelectedCard)
	r.SelectedCard = nil
	r.drawCard(challenger)

	if answerer.HP <= 0 {
		r.GamePhase = PhaseFinished
		r.GameState = StateFinished
		r.Winner = challenger.UserID
		r.MatchDuration = time.Now().UnixMilli() - r.MatchStartTime
		outcome.Finished = true
		outcome.Winner = r.Winner
		return
	}

	r.CurrentTurn = answerer.UserID
	r.GamePhase = PhaseCardSelection
}

func (r *Room) answeringPlayer(playerID string) (*Player, error) {
	if r.GameState != StatePlaying {
		return nil, ErrGameFinished
	}
	if r.GamePhase != PhaseAnswering || r.SelectedCard == nil {
		return nil, ErrWrongPhase
	}
	player := r.Player(playerID)
	if player == nil {
		return nil, ErrNotInRoom
	}
	// The opponent of the turn owner answers, never the challenger.
	if playerID == r.CurrentTurn {
		return nil, ErrNotYourTurn
	}
	return player, nil
}

// Power-up kinds a player may invoke, each at most once per match.
const (
	PowerUpKindDoubleDamage = "double_damage"
	PowerUpKindBarrier      = "barrier"
	PowerUpKindSafetyNet    = "safety_net"
)

const barrierAbsorb = 15

// UsePowerUp grants the requested effect: double_damage arms a one-charge x2
// multiplier on the attacker, barrier and safety_net occupy the player's
// single trap slot.
func (r *Room) UsePowerUp(playerID, kind string) error {
	if r.GameState != StatePlaying {
		return ErrGameFinished
	}
	player := r.Player(playerID)
	if player == nil {
		return ErrNotInRoom
	}
	if player.UsedPowerUps[kind] {
		return ErrPowerUpUsed
	}

	switch kind {
	case PowerUpKindDoubleDamage:
		player.ActivePowerUps = append(player.ActivePowerUps, PowerUp{
			Type:       PowerUpDamageMultiplier,
			Multiplier: 2,
			UsesLeft:   1,
		})
	case PowerUpKindBarrier:
		if player.DefenseTrap != nil && player.DefenseTrap.UsesLeft > 0 {
			return ErrTrapActive
		}
		player.DefenseTrap = &Trap{Type: TrapBarrier, Absorb: barrierAbsorb, UsesLeft: 1}
	case PowerUpKindSafetyNet:
		if player.DefenseTrap != nil && player.DefenseTrap.UsesLeft > 0 {
			return ErrTrapActive
		}
		player.DefenseTrap = &Trap{Type: TrapSafetyNet, UsesLeft: 1}
	default:
		return fmt.Errorf("unknown power-up kind: %s", kind)
	}

	if player.UsedPowerUps == nil {
		player.UsedPowerUps = make(map[string]bool)
	}
	player.UsedPowerUps[kind] = true
	return nil
}

// Forfeit ends the duel in favor of the remaining player, e.g. when one side
// leaves the room mid-game.
func (r *Room) Forfeit(playerID string) error {
	if r.GameState != StatePlaying {
		return ErrGameFinished
	}
	quitter := r.Player(playerID)
	if quitter == nil {
		return ErrNotInRoom
	}
	winner := r.Opponent(playerID)

	quitter.HP = 0
	r.SelectedCard = nil
	r.GamePhase = PhaseFinished
	r.GameState = StateFinished
	r.Winner = winner.UserID
	r.MatchDuration = time.Now().UnixMilli() - r.MatchStartTime
	return nil
}
