// Package engine schedules simulated hours against the wall clock and fans
// simulation events out to listeners.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/energyville/internal/city"
	"github.com/talgya/energyville/internal/economy"
	"github.com/talgya/energyville/internal/energy"
	"github.com/talgya/energyville/internal/gameevent"
	"github.com/talgya/energyville/internal/population"
)

// State is the scheduler lifecycle.
type State int

const (
	Stopped State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	}
	return "stopped"
}

// Loop tuning. The accumulator keeps fractional carry-over between polls;
// catch-up after a stall is capped so one poll never runs away.
const (
	pollInterval    = 50 * time.Millisecond
	maxCatchUpTicks = 8
)

// Warning thresholds checked after every tick.
const (
	lowBudgetWarning    = 5000.0
	lowHappinessWarning = 25.0
)

// TimeManager owns the background loop and the single mutation boundary.
// Every state-mutating operation, including external commands, goes through
// Do so it serializes against an in-flight tick.
type TimeManager struct {
	mu sync.Mutex

	City       *city.City
	Grid       *energy.Simulator
	Economy    *economy.Manager
	Population *population.Manager
	Events     *gameevent.Manager

	state       State
	speed       Speed
	accumulator float64 // wall milliseconds not yet converted to ticks
	lastSample  time.Time

	gameOver       bool
	gameOverReason string
	finalScore     int

	listeners []Listener

	stop chan struct{}
	done chan struct{}
}

// NewTimeManager wires the scheduler to a city and its managers.
func NewTimeManager(c *city.City, grid *energy.Simulator, econ *economy.Manager,
	pop *population.Manager, events *gameevent.Manager, speed Speed) *TimeManager {
	return &TimeManager{
		City:       c,
		Grid:       grid,
		Economy:    econ,
		Population: pop,
		Events:     events,
		speed:      speed,
	}
}

// AddListener registers an observer. Listeners are invoked in registration
// order, synchronously with the tick that produced the event.
func (t *TimeManager) AddListener(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

func (t *TimeManager) emit(kind EventKind, msg string) {
	e := Event{Kind: kind, At: t.City.Clock, Message: msg}
	if kind == EventGameOver {
		e.Score = t.finalScore
	}
	for _, l := range t.listeners {
		l(e)
	}
}

// Do runs fn under the mutation boundary.
func (t *TimeManager) Do(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn()
}

// Start launches the background loop. No-op unless Stopped.
func (t *TimeManager) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Stopped {
		return
	}
	t.state = Running
	t.lastSample = time.Now()
	t.accumulator = 0
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.run()
	slog.Info("time manager started", "speed", t.speed.String())
}

// Stop terminates the loop; an in-flight tick completes first.
func (t *TimeManager) Stop() {
	t.mu.Lock()
	if t.state == Stopped {
		t.mu.Unlock()
		return
	}
	t.state = Stopped
	stop, done := t.stop, t.done
	t.mu.Unlock()

	close(stop)
	<-done
	slog.Info("time manager stopped", "clock", t.City.Clock)
}

func (t *TimeManager) run() {
	defer close(t.done)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case now := <-ticker.C:
			t.advance(now)
		}
	}
}

// advance converts accumulated wall time into ticks. While Paused the
// sample clock is still re-stamped so resuming never back-fills the gap.
func (t *TimeManager) advance(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delta := now.Sub(t.lastSample)
	t.lastSample = now
	if t.state != Running {
		return
	}
	t.accumulator += float64(delta) / float64(time.Millisecond)

	msPerHour := t.speed.MillisPerHour()
	for ticks := 0; t.accumulator >= msPerHour && ticks < maxCatchUpTicks; ticks++ {
		t.accumulator -= msPerHour
		t.tickLocked()
		if t.gameOver {
			return
		}
	}
}

// tickLocked runs one full simulated hour and its post-tick checks. Callers
// hold the mutex.
func (t *TimeManager) tickLocked() {
	prevDay := t.City.Clock.Day()
	prevMonth := t.City.Clock.Month()

	t.City.AdvanceHour(t.Grid.Pass(), t.Economy.Pass(), t.Population.Pass())

	for _, notice := range t.Events.Update(t.City) {
		t.emit(EventInfo, notice)
	}

	t.emit(EventTick, "")

	if t.City.Clock.Day() != prevDay {
		t.emit(EventNewDay, t.City.Clock.Format("2006-01-02"))
	}
	if t.City.Clock.Month() != prevMonth {
		t.emit(EventNewMonth, t.Economy.LastMonthlyReport)
	}

	t.checkWarnings()
	t.checkTerminal()
}

func (t *TimeManager) checkWarnings() {
	c := t.City
	if c.Money < lowBudgetWarning && c.Money >= 0 {
		t.emit(EventWarning, fmt.Sprintf("budget is low: %.0f", c.Money))
	}
	if c.Happiness < lowHappinessWarning {
		t.emit(EventWarning, fmt.Sprintf("happiness is critical: %.0f", c.Happiness))
	}
	if c.EnergyRatio() < 1.0 && c.TotalDemand > 0 {
		t.emit(EventWarning, fmt.Sprintf("energy shortfall: %.0f%% coverage", c.Coverage*100))
	}
	if n := len(energy.PlantsNeedingMaintenance(c)); n > 0 {
		t.emit(EventWarning, fmt.Sprintf("%d plant(s) need maintenance", n))
	}
	if c.ShortfallHours > 0 && c.ShortfallHours%24 == 0 {
		t.emit(EventWarning, fmt.Sprintf("blackout risk: coverage below half for %d hours", c.ShortfallHours))
	}
}

func (t *TimeManager) checkTerminal() {
	cause, reason := t.City.GameOver()
	if cause == city.CauseNone {
		return
	}
	t.gameOver = true
	t.gameOverReason = reason
	t.finalScore = t.FinalScore()
	t.state = Paused
	slog.Info("game over", "cause", cause, "reason", reason, "score", t.finalScore)
	t.emit(EventGameOver, reason)
}

// FinalScore grades the run: population, treasury, mood and longevity,
// each capped so no single axis dominates.
func (t *TimeManager) FinalScore() int {
	c := t.City
	score := 0
	if pop := c.Population; pop < 3000 {
		score += pop
	} else {
		score += 3000
	}
	if m := int(c.Money / 100); m > 0 {
		if m > 2000 {
			m = 2000
		}
		score += m
	}
	score += int(c.Happiness * 15)
	years := int(c.Clock.Sub(c.Founded).Hours() / (24 * 365))
	score += years * 100
	return score
}

// Pause suspends tick production. Idempotent.
func (t *TimeManager) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Running {
		return
	}
	t.state = Paused
	t.emit(EventPaused, "")
}

// Resume restarts tick production. Idempotent; refused after game over.
func (t *TimeManager) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Paused || t.gameOver {
		return
	}
	t.state = Running
	t.emit(EventResumed, "")
}

// TogglePause flips between Running and Paused.
func (t *TimeManager) TogglePause() {
	t.mu.Lock()
	running := t.state == Running
	t.mu.Unlock()
	if running {
		t.Pause()
	} else {
		t.Resume()
	}
}

// SetSpeed changes the hour cost; the accumulator carries over so no
// partial progress is lost.
func (t *TimeManager) SetSpeed(s Speed) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s == t.speed {
		return
	}
	t.speed = s
	t.emit(EventSpeedChange, s.String())
}

// IncreaseSpeed and DecreaseSpeed step through the speed ladder.
func (t *TimeManager) IncreaseSpeed() { t.SetSpeed(t.Speed().Next()) }
func (t *TimeManager) DecreaseSpeed() { t.SetSpeed(t.Speed().Prev()) }

// Speed returns the current speed.
func (t *TimeManager) Speed() Speed {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.speed
}

// CurrentState returns the scheduler state.
func (t *TimeManager) CurrentState() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// GameOver reports the terminal flag, its reason and the final score.
func (t *TimeManager) GameOver() (bool, string, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gameOver, t.gameOverReason, t.finalScore
}

// SkipHours runs n ticks synchronously under the mutation boundary,
// regardless of pause state. Stops early at game over.
func (t *TimeManager) SkipHours(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := 0; i < n && !t.gameOver; i++ {
		t.tickLocked()
	}
}

// SkipToNextDay advances to the next midnight.
func (t *TimeManager) SkipToNextDay() {
	t.mu.Lock()
	hours := 24 - t.City.Clock.Hour()
	t.mu.Unlock()
	t.SkipHours(hours)
}

// SkipToNextMonth advances to the first hour of the next month.
func (t *TimeManager) SkipToNextMonth() {
	t.mu.Lock()
	clock := t.City.Clock
	next := time.Date(clock.Year(), clock.Month()+1, 1, 0, 0, 0, 0, clock.Location())
	hours := int(next.Sub(clock).Hours())
	t.mu.Unlock()
	t.SkipHours(hours)
}
