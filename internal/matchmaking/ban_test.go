package matchmaking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frozenLedger(start time.Time) (*BanLedger, *time.Time) {
	current := start
	l := NewBanLedger()
	l.now = func() time.Time { return current }
	return l, &current
}

func TestFirstOffenseIsOneMinute(t *testing.T) {
	l, _ := frozenLedger(time.Unix(1700000000, 0))

	l.RecordOffense("s1")

	ban, banned := l.Check("s1")
	require.True(t, banned)
	assert.Equal(t, 0, ban.Strikes)
	assert.Equal(t, 60, ban.Seconds)
}

func TestOffenseWithinWindowEscalates(t *testing.T) {
	l, current := frozenLedger(time.Unix(1700000000, 0))

	l.RecordOffense("s1")
	*current = current.Add(30 * time.Second)
	l.RecordOffense("s1")

	ban, banned := l.Check("s1")
	require.True(t, banned)
	assert.Equal(t, 1, ban.Strikes)
	assert.Equal(t, 180, ban.Seconds)
}

func TestOffenseAfterWindowResets(t *testing.T) {
	l, current := frozenLedger(time.Unix(1700000000, 0))

	l.RecordOffense("s1")
	*current = current.Add(25 * time.Hour)
	l.RecordOffense("s1")

	ban, banned := l.Check("s1")
	require.True(t, banned)
	assert.Equal(t, 0, ban.Strikes)
	assert.Equal(t, 60, ban.Seconds)
}

func TestStrikesClampToLastStep(t *testing.T) {
	l, _ := frozenLedger(time.Unix(1700000000, 0))

	for i := 0; i < 12; i++ {
		l.RecordOffense("s1")
	}

	ban, banned := l.Check("s1")
	require.True(t, banned)
	assert.Equal(t, len(banSteps)-1, ban.Strikes)
	assert.Equal(t, 86400, ban.Seconds)
}

func TestBanExpiresOnCheck(t *testing.T) {
	l, current := frozenLedger(time.Unix(1700000000, 0))

	l.RecordOffense("s1")
	*current = current.Add(61 * time.Second)

	_, banned := l.Check("s1")
	assert.False(t, banned)
	assert.Empty(t, l.records)
}

func TestClearLiftsBan(t *testing.T) {
	l, _ := frozenLedger(time.Unix(1700000000, 0))

	l.RecordOffense("s1")
	l.Clear("s1")

	_, banned := l.Check("s1")
	assert.False(t, banned)
}

func TestCheckUnknownPlayer(t *testing.T) {
	l, _ := frozenLedger(time.Unix(1700000000, 0))

	_, banned := l.Check("nobody")
	assert.False(t, banned)
}
