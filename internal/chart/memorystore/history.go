package memorystore

// History is a bounded FIFO of raw samples for the active symbol.
// It has no lock; the subscription loop is its only owner.
type History struct {
	capacity int
	samples  []RawSample
}

func NewHistory(capacity int) *History {
	return &History{
		capacity: capacity,
		samples:  make([]RawSample, 0, capacity),
	}
}

// Add appends s and evicts the oldest samples beyond capacity.
func (h *History) Add(s RawSample) {
	h.samples = append(h.samples, s)
	if over := len(h.samples) - h.capacity; h.capacity > 0 && over > 0 {
		// shift in place so the backing array never grows past capacity+1
		n := copy(h.samples, h.samples[over:])
		h.samples = h.samples[:n]
	}
}

// Samples returns a copy in arrival order.
func (h *History) Samples() []RawSample {
	cp := make([]RawSample, len(h.samples))
	copy(cp, h.samples)
	return cp
}

func (h *History) Len() int { return len(h.samples) }

func (h *History) Cap() int { return h.capacity }

// Reset drops every sample.
func (h *History) Reset() {
	h.samples = h.samples[:0]
}
