package memorystore

// Tick is a single trade observation as received from the feed.
type Tick struct {
	Symbol    string
	Price     float64
	Timestamp int64 // ms since epoch
}

// RawSample is a Tick stripped of its symbol.
type RawSample struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

// Sample drops the symbol.
func (t Tick) Sample() RawSample {
	return RawSample{Timestamp: t.Timestamp, Price: t.Price}
}
