package finnhub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestCommandWireFormat
func TestCommandWireFormat(t *testing.T) {
	b, err := json.Marshal(Subscribe("BINANCE:BTCUSDT"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"subscribe","symbol":"BINANCE:BTCUSDT"}`, string(b))

	b, err = json.Marshal(Unsubscribe("AAPL"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"unsubscribe","symbol":"AAPL"}`, string(b))
}

// go test -v --run TestEnvelopeDecode
func TestEnvelopeDecode(t *testing.T) {
	raw := `{"type":"trade","data":[{"s":"AAPL","p":101.5,"t":1575526691134,"v":100,"c":["1","12"]}]}`

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))

	assert.Equal(t, MessageTypeTrade, env.Type)
	require.Len(t, env.Data, 1)
	assert.Equal(t, Trade{
		Symbol:     "AAPL",
		Price:      101.5,
		Timestamp:  1575526691134,
		Volume:     100,
		Conditions: []string{"1", "12"},
	}, env.Data[0])
}
