package battle

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionCard(id string, level BloomLevel) Card {
	return Card{
		ID:         id,
		Type:       CardTypeQuestion,
		Question:   "question " + id,
		Choices:    []string{"a", "b", "c", "d"},
		Answer:     "a",
		BloomLevel: level,
		Damage:     DamageForBloom(level),
	}
}

func testDeck(n int) []Card {
	deck := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		deck = append(deck, questionCard(fmt.Sprintf("c%d", i), Understanding))
	}
	return deck
}

// duelRoom builds a mid-game room with p1 to move, holding the given cards,
// and a spare deck so draws never touch the discard pile.
func duelRoom(hand ...Card) *Room {
	now := time.Now()
	r := &Room{
		RoomID:         "room_test",
		GameID:         "game_test",
		LobbyID:        "lobby_1",
		CurrentTurn:    "p1",
		GamePhase:      PhaseCardSelection,
		GameState:      StatePlaying,
		MatchStartTime: now.UnixMilli(),
		ExpiresAt:      now.Add(RoomTTL),
	}
	r.Players[0] = newPlayer(Seed{UserID: "p1", Username: "Alice"})
	r.Players[1] = newPlayer(Seed{UserID: "p2", Username: "Bob"})
	r.Players[0].Cards = append([]Card(nil), hand...)
	r.Deck = testDeck(10)
	return r
}

func TestNewRoomDealsOpeningHands(t *testing.T) {
	r := NewRoom("lobby_1",
		Seed{UserID: "p1", Username: "Alice"},
		Seed{UserID: "p2", Username: "Bob"},
		testDeck(20))

	// The opener is compensated with a sixth card.
	assert.Len(t, r.Player("p1").Cards, 6)
	assert.Len(t, r.Player("p2").Cards, 5)
	assert.Len(t, r.Deck, 9)

	assert.Equal(t, "p1", r.CurrentTurn)
	assert.Equal(t, PhaseCardSelection, r.GamePhase)
	assert.Equal(t, StatePlaying, r.GameState)
	assert.Equal(t, InitialHP, r.Player("p1").HP)
	assert.Equal(t, InitialHP, r.Player("p2").HP)
	assert.WithinDuration(t, time.Now().Add(RoomTTL), r.ExpiresAt, time.Second)
}

func TestSelectCardMovesToTable(t *testing.T) {
	card := questionCard("q1", Analyzing)
	r := duelRoom(card)

	require.NoError(t, r.SelectCard("p1", "q1"))

	assert.Equal(t, PhaseAnswering, r.GamePhase)
	require.NotNil(t, r.SelectedCard)
	assert.Equal(t, "q1", r.SelectedCard.ID)
	assert.Empty(t, r.Player("p1").Cards)
}

func TestSelectCardRejectsInvalidActions(t *testing.T) {
	card := questionCard("q1", Analyzing)
	r := duelRoom(card)

	assert.ErrorIs(t, r.SelectCard("p2", "q1"), ErrNotYourTurn)
	assert.ErrorIs(t, r.SelectCard("stranger", "q1"), ErrNotInRoom)
	assert.ErrorIs(t, r.SelectCard("p1", "missing"), ErrCardNotInHand)

	require.NoError(t, r.SelectCard("p1", "q1"))
	assert.ErrorIs(t, r.SelectCard("p1", "q1"), ErrWrongPhase)
}

func TestAnswerRequiresAnsweringPhase(t *testing.T) {
	r := duelRoom(questionCard("q1", Analyzing))

	_, err := r.AnswerQuestion("p2", "a")
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestChallengerCannotAnswerOwnCard(t *testing.T) {
	r := duelRoom(questionCard("q1", Analyzing))
	require.NoError(t, r.SelectCard("p1", "q1"))

	_, err := r.AnswerQuestion("p1", "a")
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestWrongAnswerDamagesTheAnswerer(t *testing.T) {
	r := duelRoom(questionCard("q1", Analyzing))
	require.NoError(t, r.SelectCard("p1", "q1"))

	outcome, err := r.AnswerQuestion("p2", "b")
	require.NoError(t, err)

	assert.False(t, outcome.IsCorrect)
	assert.Equal(t, 20, outcome.Damage)
	assert.Equal(t, 80, r.Player("p2").HP)
	assert.Equal(t, InitialHP, r.Player("p1").HP)
	assert.Equal(t, 1, r.TotalQuestions)

	// The exchange is over: card discarded, challenger refilled, turn flipped.
	assert.Nil(t, r.SelectedCard)
	assert.Len(t, r.Discard, 1)
	assert.Len(t, r.Player("p1").Cards, 1)
	assert.Equal(t, "p2", r.CurrentTurn)
	assert.Equal(t, PhaseCardSelection, r.GamePhase)
}

func TestCorrectAnswerDamagesNobody(t *testing.T) {
	r := duelRoom(questionCard("q1", Analyzing))
	require.NoError(t, r.SelectCard("p1", "q1"))

	outcome, err := r.AnswerQuestion("p2", "a")
	require.NoError(t, err)

	assert.True(t, outcome.IsCorrect)
	assert.Equal(t, 0, outcome.Damage)
	assert.Equal(t, InitialHP, r.Player("p2").HP)
	assert.Equal(t, 1, r.Player("p2").CorrectAnswers)
	assert.Equal(t, "p2", r.CurrentTurn)
}

func TestTurnsAlternate(t *testing.T) {
	r := duelRoom(questionCard("q1", Understanding))
	r.Players[1].Cards = []Card{questionCard("q2", Understanding)}

	require.NoError(t, r.SelectCard("p1", "q1"))
	_, err := r.AnswerQuestion("p2", "a")
	require.NoError(t, err)
	assert.Equal(t, "p2", r.CurrentTurn)

	require.NoError(t, r.SelectCard("p2", "q2"))
	_, err = r.AnswerQuestion("p1", "a")
	require.NoError(t, err)
	assert.Equal(t, "p1", r.CurrentTurn)
}

func TestWrongAnswerAtZeroEndsTheGame(t *testing.T) {
	r := duelRoom(questionCard("q1", Analyzing))
	r.Player("p2").HP = 20
	require.NoError(t, r.SelectCard("p1", "q1"))

	outcome, err := r.AnswerQuestion("p2", "b")
	require.NoError(t, err)

	assert.True(t, outcome.Finished)
	assert.Equal(t, "p1", outcome.Winner)
	assert.Equal(t, 0, r.Player("p2").HP)
	assert.Equal(t, StateFinished, r.GameState)
	assert.Equal(t, PhaseFinished, r.GamePhase)
	assert.Equal(t, "p1", r.Winner)
	assert.GreaterOrEqual(t, r.MatchDuration, int64(0))

	_, err = r.AnswerQuestion("p2", "b")
	assert.ErrorIs(t, err, ErrGameFinished)
}

func TestSafetyNetKeepsAnswererAtOneHP(t *testing.T) {
	r := duelRoom(questionCard("q1", Analyzing))
	answerer := r.Player("p2")
	answerer.HP = 10
	answerer.DefenseTrap = &Trap{Type: TrapSafetyNet, UsesLeft: 1}
	require.NoError(t, r.SelectCard("p1", "q1"))

	outcome, err := r.AnswerQuestion("p2", "b")
	require.NoError(t, err)

	assert.True(t, outcome.SafetyNetSaved)
	assert.False(t, outcome.Finished)
	assert.Equal(t, 1, answerer.HP)
	assert.Nil(t, answerer.DefenseTrap)
	assert.Equal(t, "p2", r.CurrentTurn)
}

func TestBarrierSoftensWrongAnswer(t *testing.T) {
	r := duelRoom(questionCard("q1", Analyzing))
	answerer := r.Player("p2")
	answerer.DefenseTrap = &Trap{Type: TrapBarrier, Absorb: barrierAbsorb, UsesLeft: 1}
	require.NoError(t, r.SelectCard("p1", "q1"))

	outcome, err := r.AnswerQuestion("p2", "b")
	require.NoError(t, err)

	assert.Equal(t, 5, outcome.Damage)
	assert.Equal(t, 15, outcome.BarrierAbsorbed)
	assert.Equal(t, 95, answerer.HP)
	assert.Nil(t, answerer.DefenseTrap)
}

func TestDoubleDamageBoostsNextWrongAnswer(t *testing.T) {
	r := duelRoom(questionCard("q1", Analyzing))
	require.NoError(t, r.UsePowerUp("p1", PowerUpKindDoubleDamage))
	require.NoError(t, r.SelectCard("p1", "q1"))

	outcome, err := r.AnswerQuestion("p2", "b")
	require.NoError(t, err)

	assert.Equal(t, 40, outcome.Damage)
	assert.Equal(t, 60, r.Player("p2").HP)
	assert.Empty(t, r.Player("p1").ActivePowerUps)
}

func TestAnswerTimeoutDealsPlainBaseDamage(t *testing.T) {
	r := duelRoom(questionCard("q1", Analyzing))
	answerer := r.Player("p2")
	answerer.DefenseTrap = &Trap{Type: TrapBarrier, Absorb: 50, UsesLeft: 1}
	r.Player("p1").ActivePowerUps = []PowerUp{
		{Type: PowerUpDamageMultiplier, Multiplier: 2, UsesLeft: 1},
	}
	require.NoError(t, r.SelectCard("p1", "q1"))

	outcome, err := r.AnswerTimeout()
	require.NoError(t, err)

	// The answerer never acted: base damage lands, no charge is spent.
	assert.True(t, outcome.TimedOut)
	assert.Equal(t, 20, outcome.Damage)
	assert.Equal(t, 0, outcome.BarrierAbsorbed)
	assert.Equal(t, 80, answerer.HP)
	require.NotNil(t, answerer.DefenseTrap)
	assert.Equal(t, 1, answerer.DefenseTrap.UsesLeft)
	assert.Len(t, r.Player("p1").ActivePowerUps, 1)

	assert.Equal(t, "p2", r.CurrentTurn)
	assert.Equal(t, PhaseCardSelection, r.GamePhase)
	assert.Equal(t, 1, r.TotalQuestions)
}

func TestAnswerTimeoutOutsideAnsweringPhase(t *testing.T) {
	r := duelRoom(questionCard("q1", Analyzing))

	_, err := r.AnswerTimeout()
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestEmptyDeckReclaimsDiscardPile(t *testing.T) {
	r := duelRoom(questionCard("q1", Understanding))
	r.Deck = nil
	r.Discard = []Card{questionCard("old", Remembering)}
	require.NoError(t, r.SelectCard("p1", "q1"))

	_, err := r.AnswerQuestion("p2", "a")
	require.NoError(t, err)

	// The discard pile (old card plus the one just played) became the deck
	// and the challenger drew from it.
	assert.Len(t, r.Player("p1").Cards, 1)
	assert.Len(t, r.Deck, 1)
	assert.Empty(t, r.Discard)
}

func TestDrawIsNoOpWhenEverythingIsExhausted(t *testing.T) {
	r := duelRoom()
	r.Deck = nil
	r.Discard = nil

	r.drawCard(r.Player("p1"))

	assert.Empty(t, r.Player("p1").Cards)
}

func TestPowerUpsAreOncePerMatch(t *testing.T) {
	r := duelRoom()

	require.NoError(t, r.UsePowerUp("p1", PowerUpKindDoubleDamage))
	assert.ErrorIs(t, r.UsePowerUp("p1", PowerUpKindDoubleDamage), ErrPowerUpUsed)

	// Each player has their own allowance.
	assert.NoError(t, r.UsePowerUp("p2", PowerUpKindDoubleDamage))
}

func TestOnlyOneTrapAtATime(t *testing.T) {
	r := duelRoom()

	require.NoError(t, r.UsePowerUp("p1", PowerUpKindBarrier))
	assert.ErrorIs(t, r.UsePowerUp("p1", PowerUpKindSafetyNet), ErrTrapActive)

	// A spent trap frees the slot.
	r.Player("p1").DefenseTrap = nil
	assert.NoError(t, r.UsePowerUp("p1", PowerUpKindSafetyNet))
}

func TestUnknownPowerUpKind(t *testing.T) {
	r := duelRoom()

	err := r.UsePowerUp("p1", "wallhack")
	assert.Error(t, err)
	assert.False(t, r.Player("p1").UsedPowerUps["wallhack"])
}

func TestForfeitAwardsTheOpponent(t *testing.T) {
	r := duelRoom(questionCard("q1", Analyzing))

	require.NoError(t, r.Forfeit("p1"))

	assert.Equal(t, 0, r.Player("p1").HP)
	assert.Equal(t, "p2", r.Winner)
	assert.Equal(t, StateFinished, r.GameState)
	assert.Equal(t, PhaseFinished, r.GamePhase)
	assert.Nil(t, r.SelectedCard)

	assert.ErrorIs(t, r.Forfeit("p2"), ErrGameFinished)
}
