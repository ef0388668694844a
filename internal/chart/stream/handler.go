package stream

import (
	"encoding/json"

	"pricechart/internal/chart/memorystore"
	"pricechart/pkg/finnhub"

	"go.uber.org/zap"
)

// MakeMessageHandler returns a function that decodes feed messages and hands
// every trade for the active symbol to apply, in arrival order.
func MakeMessageHandler(logger *zap.Logger, activeSymbol func() string,
	apply func(memorystore.Tick)) func(msg []byte) {
	return func(msg []byte) {
		// Step 1: read the type so pings and acks are skipped
		var meta struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &meta); err != nil {
			logger.Warn("failed to parse message", zap.Error(err), zap.ByteString("payload", truncate(msg)))
			return
		}
		if meta.Type != finnhub.MessageTypeTrade {
			return
		}

		// Step 2: full trade envelope
		var env finnhub.Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			logger.Warn("failed to parse trade payload", zap.Error(err), zap.ByteString("payload", truncate(msg)))
			return
		}

		symbol := activeSymbol()
		if symbol == "" {
			return
		}

		for _, tr := range env.Data {
			if tr.Symbol != symbol {
				continue
			}
			apply(memorystore.Tick{
				Symbol:    tr.Symbol,
				Price:     tr.Price,
				Timestamp: tr.Timestamp,
			})
		}
	}
}

const maxLoggedPayload = 256

func truncate(msg []byte) []byte {
	if len(msg) > maxLoggedPayload {
		return msg[:maxLoggedPayload]
	}
	return msg
}
