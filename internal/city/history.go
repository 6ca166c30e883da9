package city

// historyDepth caps the rolling daily samples at roughly a quarter year.
const historyDepth = 90

// Sample is one daily snapshot of the headline indicators.
type Sample struct {
	Money     float64 `json:"money"`
	Happiness float64 `json:"happiness"`
	Balance   float64 `json:"balance"`
}

// History is a bounded ring of daily samples, oldest first.
type History struct {
	Samples []Sample `json:"samples"`
}

// Append records a sample, evicting the oldest past the depth cap.
func (h *History) Append(money, happiness, balance float64) {
	h.Samples = append(h.Samples, Sample{Money: money, Happiness: happiness, Balance: balance})
	if len(h.Samples) > historyDepth {
		h.Samples = h.Samples[len(h.Samples)-historyDepth:]
	}
}

// Latest returns the most recent sample.
func (h *History) Latest() (Sample, bool) {
	if len(h.Samples) == 0 {
		return Sample{}, false
	}
	return h.Samples[len(h.Samples)-1], true
}

// Trend returns the money delta over the last n samples; zero with fewer
// than two samples.
func (h *History) Trend(n int) float64 {
	if len(h.Samples) < 2 {
		return 0
	}
	if n > len(h.Samples) {
		n = len(h.Samples)
	}
	first := h.Samples[len(h.Samples)-n]
	last := h.Samples[len(h.Samples)-1]
	return last.Money - first.Money
}
