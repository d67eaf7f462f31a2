package matchmaking

import (
	"time"
)

// Escalating penalty steps in seconds: 1m, 3m, 5m, 10m, 30m, 1h, 6h, 1 day.
// Offense n (0-indexed) maps to banSteps[min(n, len-1)].
var banSteps = []int{60, 180, 300, 600, 1800, 3600, 21600, 86400}

// A strike escalates only when the previous one is younger than this.
const strikeWindow = 24 * time.Hour

type banRecord struct {
	until      time.Time
	strikes    int
	lastStrike time.Time
}

type BanStatus struct {
	Until   int64 `json:"until"` // unix millis, drives the client countdown
	Seconds int   `json:"seconds"`
	Strikes int   `json:"strikes"`
}

// BanLedger tracks escalating matchmaking penalties per player. It carries no
// lock of its own; the owning Service serializes every access.
type BanLedger struct {
	records map[string]banRecord
	now     func() time.Time
}

func NewBanLedger() *BanLedger {
	return &BanLedger{
		records: make(map[string]banRecord),
		now:     time.Now,
	}
}

// Check returns the active ban for a player. Records whose deadline has
// passed are deleted on the spot.
func (l *BanLedger) Check(playerID string) (BanStatus, bool) {
	rec, ok := l.records[playerID]
	if !ok {
		return BanStatus{}, false
	}
	now := l.now()
	if !rec.until.After(now) {
		delete(l.records, playerID)
		return BanStatus{}, false
	}
	remaining := rec.until.Sub(now)
	seconds := int((remaining + time.Second - 1) / time.Second)
	return BanStatus{
		Until:   rec.until.UnixMilli(),
		Seconds: seconds,
		Strikes: rec.strikes,
	}, true
}

// RecordOffense escalates while the previous strike is under 24h old,
// otherwise the player starts over at the first step.
func (l *BanLedger) RecordOffense(playerID string) {
	now := l.now()
	strikes := 0
	if rec, ok := l.records[playerID]; ok {
		if now.Sub(rec.lastStrike) < strikeWindow {
			strikes = rec.strikes + 1
			if strikes > len(banSteps)-1 {
				strikes = len(banSteps) - 1
			}
		}
	}
	l.records[playerID] = banRecord{
		until:      now.Add(time.Duration(banSteps[strikes]) * time.Second),
		strikes:    strikes,
		lastStrike: now,
	}
}

func (l *BanLedger) Clear(playerID string) {
	delete(l.records, playerID)
}
