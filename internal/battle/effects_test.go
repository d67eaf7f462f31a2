package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func effectsRoom() *Room {
	r := &Room{
		RoomID:      "room_test",
		CurrentTurn: "p1",
		GamePhase:   PhaseCardSelection,
		GameState:   StatePlaying,
	}
	r.Players[0] = newPlayer(Seed{UserID: "p1", Username: "Alice"})
	r.Players[1] = newPlayer(Seed{UserID: "p2", Username: "Bob"})
	return r
}

func TestResolveDamagePassthrough(t *testing.T) {
	r := effectsRoom()

	res := ResolveDamage(r, "p1", "p2", 20)

	assert.Equal(t, 20, res.Damage)
	assert.Equal(t, 0, res.BarrierAbsorbed)
}

func TestResolveDamageConsumesMultiplierCharge(t *testing.T) {
	r := effectsRoom()
	attacker := r.Player("p1")
	attacker.ActivePowerUps = []PowerUp{
		{Type: PowerUpDamageMultiplier, Multiplier: 2, UsesLeft: 1},
	}

	res := ResolveDamage(r, "p1", "p2", 20)

	assert.Equal(t, 40, res.Damage)
	assert.Empty(t, attacker.ActivePowerUps)
}

func TestResolveDamageKeepsRemainingCharges(t *testing.T) {
	r := effectsRoom()
	attacker := r.Player("p1")
	attacker.ActivePowerUps = []PowerUp{
		{Type: PowerUpDamageMultiplier, Multiplier: 2, UsesLeft: 2},
	}

	res := ResolveDamage(r, "p1", "p2", 20)

	assert.Equal(t, 40, res.Damage)
	require.Len(t, attacker.ActivePowerUps, 1)
	assert.Equal(t, 1, attacker.ActivePowerUps[0].UsesLeft)
}

func TestResolveDamageStacksMultipliers(t *testing.T) {
	r := effectsRoom()
	attacker := r.Player("p1")
	attacker.ActivePowerUps = []PowerUp{
		{Type: PowerUpDamageMultiplier, Multiplier: 2, UsesLeft: 1},
		{Type: PowerUpDamageMultiplier, Multiplier: 1.5, UsesLeft: 1},
	}

	res := ResolveDamage(r, "p1", "p2", 20)

	assert.Equal(t, 60, res.Damage)
	assert.Empty(t, attacker.ActivePowerUps)
}

func TestResolveDamageFloorsFractionalResult(t *testing.T) {
	r := effectsRoom()
	attacker := r.Player("p1")
	attacker.ActivePowerUps = []PowerUp{
		{Type: PowerUpDamageMultiplier, Multiplier: 1.5, UsesLeft: 1},
	}

	res := ResolveDamage(r, "p1", "p2", 5)

	assert.Equal(t, 7, res.Damage)
}

func TestBarrierAbsorbsPartially(t *testing.T) {
	r := effectsRoom()
	target := r.Player("p2")
	target.DefenseTrap = &Trap{Type: TrapBarrier, Absorb: 15, UsesLeft: 1}

	res := ResolveDamage(r, "p1", "p2", 40)

	assert.Equal(t, 25, res.Damage)
	assert.Equal(t, 15, res.BarrierAbsorbed)
	assert.Nil(t, target.DefenseTrap)
}

func TestBarrierNeverAbsorbsMoreThanTheHit(t *testing.T) {
	r := effectsRoom()
	target := r.Player("p2")
	target.DefenseTrap = &Trap{Type: TrapBarrier, Absorb: 50, UsesLeft: 2}

	res := ResolveDamage(r, "p1", "p2", 20)

	assert.Equal(t, 0, res.Damage)
	assert.Equal(t, 20, res.BarrierAbsorbed)
	require.NotNil(t, target.DefenseTrap)
	assert.Equal(t, 1, target.DefenseTrap.UsesLeft)
}

func TestSafetyNetTrapIsNotTouchedByResolution(t *testing.T) {
	r := effectsRoom()
	target := r.Player("p2")
	target.DefenseTrap = &Trap{Type: TrapSafetyNet, UsesLeft: 1}

	res := ResolveDamage(r, "p1", "p2", 20)

	assert.Equal(t, 20, res.Damage)
	require.NotNil(t, target.DefenseTrap)
	assert.Equal(t, 1, target.DefenseTrap.UsesLeft)
}

func TestResolveDamageClampsNegativeBase(t *testing.T) {
	r := effectsRoom()

	res := ResolveDamage(r, "p1", "p2", -5)

	assert.Equal(t, 0, res.Damage)
}

func TestResolveDamageLeavesOtherStateAlone(t *testing.T) {
	r := effectsRoom()
	r.Player("p1").ActivePowerUps = []PowerUp{
		{Type: PowerUpDamageMultiplier, Multiplier: 2, UsesLeft: 1},
	}

	ResolveDamage(r, "p1", "p2", 20)

	// Resolution computes the delta; hp bookkeeping belongs to the room.
	assert.Equal(t, InitialHP, r.Player("p2").HP)
	assert.Equal(t, InitialHP, r.Player("p1").HP)
	assert.Equal(t, PhaseCardSelection, r.GamePhase)
}
