package engine

import "time"

// EventKind labels a bus notification.
type EventKind string

const (
	EventTick        EventKind = "tick"
	EventNewDay      EventKind = "new_day"
	EventNewMonth    EventKind = "new_month"
	EventPaused      EventKind = "paused"
	EventResumed     EventKind = "resumed"
	EventSpeedChange EventKind = "speed_change"
	EventWarning     EventKind = "warning"
	EventInfo        EventKind = "info"
	EventGameOver    EventKind = "game_over"
)

// Event is one bus notification. At is simulated time.
type Event struct {
	Kind    EventKind `json:"kind"`
	At      time.Time `json:"at"`
	Message string    `json:"message"`
	Score   int       `json:"score,omitempty"` // game over only
}

// Listener observes events; it must not mutate simulation state.
type Listener func(Event)
