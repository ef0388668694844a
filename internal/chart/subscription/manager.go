package subscription

import (
	"context"

	"pricechart/internal/chart/aggregate"
	"pricechart/internal/chart/memorystore"
	"pricechart/internal/chart/projection"
	"pricechart/internal/chart/series"
	"pricechart/internal/chart/stream"
	"pricechart/pkg/finnhub"

	"go.uber.org/zap"
)

// Transport is the feed connection used by the Manager. *finnhub.WSClient
// implements it.
type Transport interface {
	Connect()
	Send(cmd finnhub.Command)
	Close()
	State() finnhub.State
	On(kind finnhub.EventKind, fn finnhub.Listener) func()
	Once(kind finnhub.EventKind, fn finnhub.Listener) func()
}

// Recorder observes every rebuilt point sequence.
type Recorder interface {
	Observe(symbol string, interval aggregate.Interval, points []aggregate.Point)
}

// State is a snapshot of what the chart owner can observe.
type State struct {
	Connected bool
	Symbol    string
	Interval  aggregate.Interval
	Chart     projection.Chart
	Points    []aggregate.Point
	RawLen    int
}

type Option func(*Manager)

// WithRecorder attaches a Recorder, e.g. the bucket archive.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

const inboxSize = 1024

// Manager keeps one logical subscription on top of a Transport. Commands and
// transport events are executed one at a time on the goroutine running Run,
// so the series is never touched concurrently.
type Manager struct {
	newTransport func() Transport
	logger       *zap.Logger
	recorder     Recorder

	inbox   chan func()
	stopped chan struct{}

	// owned by the Run goroutine
	transport Transport
	cancels   []func()
	opening   []func() // deferred subscribes waiting for the next open
	connected bool
	symbol    string
	series    *series.Series
	handle    func([]byte)
}

// New creates a Manager. newTransport is called whenever a connection is
// needed and none is held.
func New(cfg series.Config, newTransport func() Transport, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		newTransport: newTransport,
		logger:       logger,
		inbox:        make(chan func(), inboxSize),
		stopped:      make(chan struct{}),
		series:       series.New(cfg),
	}
	m.handle = stream.MakeMessageHandler(logger,
		func() string { return m.symbol },
		m.applyTick,
	)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run processes commands and events until ctx is cancelled, then disconnects.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.stopped)

	for {
		select {
		case <-ctx.Done():
			m.disconnect()
			m.logger.Info("subscription manager stopped")
			return nil
		case fn := <-m.inbox:
			fn()
		}
	}
}

// call runs fn on the loop and waits for it. It returns false once Run has exited.
func (m *Manager) call(fn func()) bool {
	done := make(chan struct{})
	select {
	case m.inbox <- func() { fn(); close(done) }:
	case <-m.stopped:
		return false
	}

	select {
	case <-done:
		return true
	case <-m.stopped:
		return false
	}
}

// post queues fn without waiting. Used by transport listeners.
func (m *Manager) post(fn func()) {
	select {
	case m.inbox <- fn:
	case <-m.stopped:
	}
}

// Subscribe makes symbol the active one. When the transport is not open it
// connects first and subscribes on the next open event.
func (m *Manager) Subscribe(symbol string) {
	m.call(func() { m.subscribe(symbol) })
}

// Unsubscribe sends an unsubscribe command. Local buffers are kept.
func (m *Manager) Unsubscribe(symbol string) {
	m.call(func() { m.unsubscribe(symbol) })
}

// Disconnect unsubscribes, closes the transport and clears the active symbol.
func (m *Manager) Disconnect() {
	m.call(m.disconnect)
}

// SetInterval re-buckets the retained history at 1 or 5 minutes.
func (m *Manager) SetInterval(minutes int) error {
	var err error
	m.call(func() { err = m.setInterval(minutes) })
	return err
}

// State returns a copy of the observable state.
func (m *Manager) State() State {
	var st State
	m.call(func() {
		st = State{
			Connected: m.connected,
			Symbol:    m.symbol,
			Interval:  m.series.Interval(),
			Chart:     m.series.Chart(),
			Points:    m.series.Points(),
			RawLen:    m.series.RawLen(),
		}
	})
	return st
}

func (m *Manager) subscribe(symbol string) {
	t := m.ensureTransport()
	if t.State() == finnhub.StateConnected {
		m.doSubscribe(symbol)
		return
	}

	pending := true
	fire := func() {
		if !pending || m.transport != t {
			return
		}
		pending = false
		m.doSubscribe(symbol)
	}

	remove := t.Once(finnhub.EventOpen, func(finnhub.Event) { m.post(fire) })
	m.opening = append(m.opening, remove)
	t.Connect()

	// an in-flight dial may have opened before the listener was added
	if t.State() == finnhub.StateConnected {
		remove()
		m.opening = m.opening[:len(m.opening)-1]
		fire()
	}
}

func (m *Manager) doSubscribe(symbol string) {
	if m.symbol != "" {
		m.unsubscribe(m.symbol)
	}

	m.symbol = symbol
	m.series.Reset(symbol)
	m.transport.Send(finnhub.Subscribe(symbol))

	m.logger.Info("subscribed",
		zap.String("symbol", symbol), zap.Stringer("interval", m.series.Interval()))
}

func (m *Manager) unsubscribe(symbol string) {
	if m.transport == nil {
		m.logger.Debug("unsubscribe without transport", zap.String("symbol", symbol))
		return
	}
	m.transport.Send(finnhub.Unsubscribe(symbol))
}

func (m *Manager) disconnect() {
	if m.symbol != "" {
		m.unsubscribe(m.symbol)
	}

	m.dropOpening()
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil

	if m.transport != nil {
		m.transport.Close()
		m.transport = nil
		m.logger.Info("disconnected")
	}

	m.connected = false
	m.symbol = ""
	m.series.ClearSymbol()
}

// dropOpening removes deferred subscribes whose connection attempt ended
// without an open, so a later open cannot replay them.
func (m *Manager) dropOpening() {
	for _, remove := range m.opening {
		remove()
	}
	m.opening = nil
}

func (m *Manager) setInterval(minutes int) error {
	iv, err := aggregate.ParseInterval(minutes)
	if err != nil {
		return err
	}
	if err := m.series.SetInterval(iv); err != nil {
		return err
	}

	m.logger.Info("interval changed", zap.Stringer("interval", iv))
	m.record(m.series.Points())
	return nil
}

func (m *Manager) applyTick(t memorystore.Tick) {
	m.record(m.series.ApplyTick(t))
}

func (m *Manager) record(points []aggregate.Point) {
	if m.recorder != nil && m.symbol != "" {
		m.recorder.Observe(m.symbol, m.series.Interval(), points)
	}
}

// ensureTransport returns the held transport, creating one and wiring its
// events into the loop when none is held.
func (m *Manager) ensureTransport() Transport {
	if m.transport != nil {
		return m.transport
	}

	t := m.newTransport()
	m.transport = t

	// events from a transport that has since been dropped are ignored
	onLoop := func(fn func(finnhub.Event)) finnhub.Listener {
		return func(ev finnhub.Event) {
			m.post(func() {
				if m.transport == t {
					fn(ev)
				}
			})
		}
	}

	m.cancels = append(m.cancels,
		t.On(finnhub.EventOpen, onLoop(func(finnhub.Event) {
			m.connected = true
			// the one-shot listeners fire on this open
			m.opening = nil
		})),
		t.On(finnhub.EventMessage, onLoop(func(ev finnhub.Event) {
			m.handle(ev.Data)
		})),
		t.On(finnhub.EventClose, onLoop(func(finnhub.Event) {
			m.connected = false
			m.dropOpening()
		})),
		t.On(finnhub.EventError, onLoop(func(ev finnhub.Event) {
			m.connected = false
			m.dropOpening()
			m.logger.Warn("transport error", zap.Error(ev.Err))
		})),
	)

	return t
}
