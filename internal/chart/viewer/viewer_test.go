package viewer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pricechart/config"
	"pricechart/internal/chart/aggregate"
	"pricechart/pkg/finnhub"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// tradeServer answers every subscribe with two trades.
func tradeServer(t *testing.T) (string, <-chan string) {
	t.Helper()
	tokens := make(chan string, 4)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens <- r.URL.Query().Get("token")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			var cmd finnhub.Command
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			if cmd.Type != finnhub.CommandSubscribe {
				continue
			}
			_ = conn.WriteMessage(websocket.TextMessage, []byte(
				`{"type":"trade","data":[{"s":"`+cmd.Symbol+`","p":10,"t":0,"v":1},{"s":"`+cmd.Symbol+`","p":20,"t":1000,"v":1}]}`))
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), tokens
}

func testConfig(url string) *config.Config {
	return &config.Config{
		Feed: config.FeedConfig{URL: url, Token: "secret", HandshakeTimeout: time.Second},
		Chart: config.ChartConfig{
			Symbol:      "AAPL",
			Interval:    5,
			MaxPoints:   10,
			Location:    "UTC",
			ReportEvery: 10 * time.Millisecond,
		},
		Log:     config.LogConfig{Environment: "dev"},
		Archive: config.ArchiveConfig{Enabled: true, Backend: "memory"},
	}
}

// go test -v --run TestViewerRun
func TestViewerRun(t *testing.T) {
	url, tokens := tradeServer(t)
	core, logs := observer.New(zap.InfoLevel)

	v, err := New(testConfig(url), zap.New(core))
	require.NoError(t, err)
	require.NotNil(t, v.archiver)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(v.Manager().State().Points) == 1
	}, 3*time.Second, 10*time.Millisecond)

	st := v.Manager().State()
	assert.Equal(t, "AAPL", st.Symbol)
	assert.Equal(t, aggregate.Interval5Min, st.Interval)
	assert.Equal(t, 15.0, st.Points[0].AvgPrice)
	assert.Equal(t, "00:00", st.Points[0].DisplayTime)
	assert.Equal(t, "secret", <-tokens)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("current price").Len() > 0
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("viewer did not stop")
	}
}

// go test -v --run TestViewerNewErrors
func TestViewerNewErrors(t *testing.T) {
	cfg := testConfig("ws://127.0.0.1:1")
	cfg.Chart.Interval = 3
	_, err := New(cfg, zap.NewNop())
	assert.ErrorIs(t, err, aggregate.ErrInvalidInterval)

	cfg = testConfig("ws://127.0.0.1:1")
	cfg.Chart.Location = "Nowhere/Invalid"
	_, err = New(cfg, zap.NewNop())
	assert.Error(t, err)

	cfg = testConfig("ws://127.0.0.1:1")
	cfg.Archive.Backend = "redis"
	_, err = New(cfg, zap.NewNop())
	assert.ErrorContains(t, err, "unknown archive backend")
}

// go test -v --run TestViewerWithoutArchive
func TestViewerWithoutArchive(t *testing.T) {
	cfg := testConfig("ws://127.0.0.1:1")
	cfg.Archive.Enabled = false
	cfg.Chart.Symbol = ""

	v, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, v.archiver)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, v.Run(ctx))
}
