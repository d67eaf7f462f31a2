package battle

import (
	"log"
	"math"
)

type DamageResult struct {
	Damage          int `json:"damage"`
	BarrierAbsorbed int `json:"barrierAbsorbed"`
}

// ResolveDamage turns a base damage value plus both sides' active effects
// into the final delta for a single hit. It consumes one charge of every
// unspent damage_multiplier on the attacker and, if present, one charge of
// the defender's barrier, both in place; charges are per hit, not aggregated
// per turn. safety_net is not handled here — the room floors hp afterwards,
// since that needs the post-damage value.
//
// A fault inside resolution must never abort the turn: the function degrades
// to floor(baseDamage) with zero absorption instead of panicking outward.
func ResolveDamage(room *Room, attackerID, targetID string, baseDamage int) (result DamageResult) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Effect resolution fault, degrading to base damage: %v", rec)
			dmg := baseDamage
			if dmg < 0 {
				dmg = 0
			}
			result = DamageResult{Damage: dmg}
		}
	}()

	multiplier := 1.0
	if attacker := room.Player(attackerID); attacker != nil {
		kept := attacker.ActivePowerUps[:0]
		for i := range attacker.ActivePowerUps {
			pu := attacker.ActivePowerUps[i]
			if pu.Type == PowerUpDamageMultiplier && pu.UsesLeft > 0 {
				multiplier *= pu.Multiplier
				pu.UsesLeft--
			}
			if pu.UsesLeft > 0 {
				kept = append(kept, pu)
			}
		}
		attacker.ActivePowerUps = kept
	}

	damage := int(math.Floor(float64(baseDamage) * multiplier))
	if damage < 0 {
		damage = 0
	}

	absorbed := 0
	if target := room.Player(targetID); target != nil {
		trap := target.DefenseTrap
		if trap != nil && trap.Type == TrapBarrier && trap.UsesLeft > 0 {
			absorbed = trap.Absorb
			if absorbed > damage {
				absorbed = damage
			}
			damage -= absorbed
			trap.UsesLeft--
			if trap.UsesLeft == 0 {
				target.DefenseTrap = nil
			}
		}
	}

	return DamageResult{Damage: damage, BarrierAbsorbed: absorbed}
}
