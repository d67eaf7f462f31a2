package battle

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDamageForBloom(t *testing.T) {
	assert.Equal(t, 5, DamageForBloom(Remembering))
	assert.Equal(t, 20, DamageForBloom(Analyzing))
	assert.Equal(t, 30, DamageForBloom(Creating))
	// Unknown levels fall back to a middle value.
	assert.Equal(t, 10, DamageForBloom(BloomLevel("Guessing")))
}

func TestNormalizeBloomLevel(t *testing.T) {
	assert.Equal(t, Analyzing, NormalizeBloomLevel("analyzing"))
	assert.Equal(t, Creating, NormalizeBloomLevel("  Creating "))
	assert.Equal(t, Remembering, NormalizeBloomLevel("REMEMBERING"))
	assert.Equal(t, Remembering, NormalizeBloomLevel("no such level"))
}

// A room written to Redis mid-duel must come back ready to continue in
// another process: hands, traps, power-up allowances and turn state included.
func TestRoomSurvivesSerialization(t *testing.T) {
	r := duelRoom(questionCard("q1", Analyzing), questionCard("q2", Creating))
	require.NoError(t, r.UsePowerUp("p1", PowerUpKindDoubleDamage))
	require.NoError(t, r.UsePowerUp("p2", PowerUpKindBarrier))
	require.NoError(t, r.SelectCard("p1", "q1"))

	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var restored Room
	require.NoError(t, json.Unmarshal(raw, &restored))

	assert.Equal(t, r.RoomID, restored.RoomID)
	assert.Equal(t, r.GameID, restored.GameID)
	assert.Equal(t, r.LobbyID, restored.LobbyID)
	assert.Equal(t, r.Players, restored.Players)
	assert.Equal(t, r.Deck, restored.Deck)
	assert.Equal(t, r.CurrentTurn, restored.CurrentTurn)
	assert.Equal(t, PhaseAnswering, restored.GamePhase)
	assert.Equal(t, StatePlaying, restored.GameState)
	require.NotNil(t, restored.SelectedCard)
	assert.Equal(t, "q1", restored.SelectedCard.ID)
	assert.Equal(t, r.MatchStartTime, restored.MatchStartTime)
	assert.True(t, r.ExpiresAt.Equal(restored.ExpiresAt))

	// The restored copy is playable: the doubled hit lands through the barrier.
	outcome, err := restored.AnswerQuestion("p2", "b")
	require.NoError(t, err)
	assert.Equal(t, 25, outcome.Damage)
	assert.Equal(t, 15, outcome.BarrierAbsorbed)
}
