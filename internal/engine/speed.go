package engine

// Speed is the real-time cost of one simulated hour.
type Speed int

const (
	SpeedSlow Speed = iota
	SpeedNormal
	SpeedFast
	SpeedUltraFast
)

var speedMillis = [...]float64{2000, 1000, 500, 200}

var speedNames = [...]string{"slow", "normal", "fast", "ultra_fast"}

// MillisPerHour is the wall-clock milliseconds one simulated hour costs.
func (s Speed) MillisPerHour() float64 { return speedMillis[s] }

func (s Speed) String() string { return speedNames[s] }

// Next steps one speed up, saturating at the fastest.
func (s Speed) Next() Speed {
	if s >= SpeedUltraFast {
		return SpeedUltraFast
	}
	return s + 1
}

// Prev steps one speed down, saturating at the slowest.
func (s Speed) Prev() Speed {
	if s <= SpeedSlow {
		return SpeedSlow
	}
	return s - 1
}

// ParseSpeed maps a config or API name to a speed; normal on no match.
func ParseSpeed(name string) Speed {
	for i, n := range speedNames {
		if n == name {
			return Speed(i)
		}
	}
	return SpeedNormal
}
