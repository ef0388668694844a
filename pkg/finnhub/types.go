package finnhub

// CommandType is the outbound control message type.
type CommandType string

const (
	CommandSubscribe   CommandType = "subscribe"
	CommandUnsubscribe CommandType = "unsubscribe"
)

// MessageTypeTrade is the only inbound envelope type carrying prices.
const MessageTypeTrade = "trade"

// Command is sent to the feed to (un)subscribe a symbol.
type Command struct {
	Type   CommandType `json:"type"`
	Symbol string      `json:"symbol"`
}

// Subscribe builds a subscribe command for symbol.
func Subscribe(symbol string) Command {
	return Command{Type: CommandSubscribe, Symbol: symbol}
}

// Unsubscribe builds an unsubscribe command for symbol.
func Unsubscribe(symbol string) Command {
	return Command{Type: CommandUnsubscribe, Symbol: symbol}
}

// Envelope is an inbound message. Data is only present for "trade".
type Envelope struct {
	Type string  `json:"type"`           // "trade", "ping", "error", ...
	Data []Trade `json:"data,omitempty"` // trades in the order the feed reported them
}

// Trade is a single trade print inside a trade envelope.
type Trade struct {
	Symbol     string   `json:"s"` // e.g. "AAPL", "BINANCE:BTCUSDT"
	Price      float64  `json:"p"` // last price
	Timestamp  int64    `json:"t"` // milliseconds since epoch
	Volume     float64  `json:"v"`
	Conditions []string `json:"c,omitempty"` // trade condition codes
}
