package acetape

// Simple moving average over the last few samples.  Knocks the edges off
// single-sample spikes before the level classifier sees them.

const (
	MIN_FILTER_ORDER = 2
	MAX_FILTER_ORDER = 55
)

type NoiseFilter struct {
	buffer []float64
	index  int
}

func NewNoiseFilter(order int) *NoiseFilter {
	order = max(order, MIN_FILTER_ORDER)
	order = min(order, MAX_FILTER_ORDER)

	return &NoiseFilter{
		buffer: make([]float64, order),
	}
}

// FilterOrderForRate picks a window that spans roughly the same time at any sample rate.
func FilterOrderForRate(sampleRate int) int {
	switch {
	case sampleRate > 40000:
		return 7
	case sampleRate > 20000:
		return 5
	default:
		return 3
	}
}

func (f *NoiseFilter) Order() int {
	return len(f.buffer)
}

func (f *NoiseFilter) Filter(x float64) float64 {
	f.buffer[f.index] = x

	f.index++
	if f.index >= len(f.buffer) {
		f.index = 0
	}

	var sum = 0.0
	for _, v := range f.buffer {
		sum += v
	}

	return sum / float64(len(f.buffer))
}

func (f *NoiseFilter) Clear() {
	clear(f.buffer)
	f.index = 0
}
