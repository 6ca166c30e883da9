package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/energyville/internal/city"
	"github.com/talgya/energyville/internal/economy"
	"github.com/talgya/energyville/internal/energy"
	"github.com/talgya/energyville/internal/entropy"
	"github.com/talgya/energyville/internal/gameevent"
	"github.com/talgya/energyville/internal/population"
	"github.com/talgya/energyville/internal/weather"
)

func newTestTM(seed int64, money float64) *TimeManager {
	rnd := entropy.NewSource(seed)
	c := city.Empty("Testville", money, rnd, weather.NewField(seed))
	return NewTimeManager(c,
		energy.NewSimulator(rnd),
		economy.NewManager(c.Clock),
		population.NewManager(rnd),
		gameevent.NewManager(rnd),
		SpeedNormal)
}

func TestSkipHoursTicksSynchronously(t *testing.T) {
	tm := newTestTM(1, 50000)
	before := tm.City.Clock

	tm.SkipHours(10)
	assert.Equal(t, 10.0, tm.City.Clock.Sub(before).Hours())
}

func TestListenersRunInRegistrationOrder(t *testing.T) {
	tm := newTestTM(2, 50000)
	var order []string
	tm.AddListener(func(e Event) {
		if e.Kind == EventTick {
			order = append(order, "first")
		}
	})
	tm.AddListener(func(e Event) {
		if e.Kind == EventTick {
			order = append(order, "second")
		}
	})

	tm.SkipHours(1)
	require.Equal(t, []string{"first", "second"}, order)
}

func TestNewDayAndNewMonthEvents(t *testing.T) {
	tm := newTestTM(3, 50000)
	var days, months int
	tm.AddListener(func(e Event) {
		switch e.Kind {
		case EventNewDay:
			days++
		case EventNewMonth:
			months++
		}
	})

	tm.Do(func() {
		tm.City.Clock = time.Date(2025, 1, 31, 20, 0, 0, 0, time.UTC)
	})
	tm.SkipToNextMonth()

	assert.Equal(t, 1, days)
	assert.Equal(t, 1, months)
	assert.Equal(t, time.Month(2), tm.City.Clock.Month())
}

func TestLowBudgetWarning(t *testing.T) {
	tm := newTestTM(4, 1000)
	var warnings []string
	tm.AddListener(func(e Event) {
		if e.Kind == EventWarning {
			warnings = append(warnings, e.Message)
		}
	})

	tm.SkipHours(1)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "budget is low")
}

func TestGameOverPausesAndRefusesResume(t *testing.T) {
	tm := newTestTM(5, 50000)
	var last Event
	tm.AddListener(func(e Event) {
		if e.Kind == EventGameOver {
			last = e
		}
	})

	tm.Do(func() { tm.City.Money = -60000 })
	tm.SkipHours(10)

	over, reason, score := tm.GameOver()
	require.True(t, over)
	assert.Contains(t, reason, "bankrupt")
	assert.Equal(t, score, last.Score)
	assert.Equal(t, Paused, tm.CurrentState())

	// Only the terminal tick ran; the skip broke off immediately after.
	assert.Equal(t, 1.0, tm.City.Clock.Sub(tm.City.Founded).Hours())

	tm.Resume()
	assert.Equal(t, Paused, tm.CurrentState(), "resume is refused after game over")
}

func TestSetSpeedEmitsOnceAndKeepsValue(t *testing.T) {
	tm := newTestTM(6, 50000)
	var changes []string
	tm.AddListener(func(e Event) {
		if e.Kind == EventSpeedChange {
			changes = append(changes, e.Message)
		}
	})

	tm.SetSpeed(SpeedFast)
	tm.SetSpeed(SpeedFast) // no-op
	tm.IncreaseSpeed()

	assert.Equal(t, []string{"fast", "ultra_fast"}, changes)
	assert.Equal(t, SpeedUltraFast, tm.Speed())
}

func TestFinalScoreCapsEachAxis(t *testing.T) {
	tm := newTestTM(7, 50000)
	c := tm.City
	c.Population = 5000 // capped at 3000
	c.Money = 300000    // capped at 2000
	c.Happiness = 50
	c.Clock = c.Founded.Add(2 * 365 * 24 * time.Hour)

	assert.Equal(t, 3000+2000+750+200, tm.FinalScore())
}

func TestFinalScoreIgnoresDebt(t *testing.T) {
	tm := newTestTM(8, 50000)
	c := tm.City
	c.Population = 100
	c.Money = -20000
	c.Happiness = 10

	assert.Equal(t, 100+150, tm.FinalScore())
}

func TestStartStopLifecycle(t *testing.T) {
	tm := newTestTM(9, 50000)
	require.Equal(t, Stopped, tm.CurrentState())

	tm.Start()
	require.Equal(t, Running, tm.CurrentState())
	tm.Start() // no-op while running

	tm.Stop()
	assert.Equal(t, Stopped, tm.CurrentState())
	tm.Stop() // no-op while stopped
}
