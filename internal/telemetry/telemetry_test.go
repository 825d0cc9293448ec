package telemetry

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordsInOrder(t *testing.T) {
	c := NewCollector()

	c.Transition(Event{Stage: StageAdmit, Cycle: 0, Tick: 0})
	c.Transition(Event{Stage: StageDispatch, Cycle: 0, Tick: 0})
	c.Receipt(Event{Stage: StageDispatch, Op: "ASK_SP", ResultHash: 0xAB})

	transitions := c.Transitions()
	require.Len(t, transitions, 2)
	assert.Equal(t, StageAdmit, transitions[0].Stage)
	assert.Equal(t, StageDispatch, transitions[1].Stage)

	receipts := c.Receipts()
	require.Len(t, receipts, 1)
	assert.Equal(t, "ASK_SP", receipts[0].Op)
}

func TestCollectorReturnsCopies(t *testing.T) {
	c := NewCollector()
	c.Receipt(Event{Op: "ASK_SP"})

	got := c.Receipts()
	got[0].Op = "mutated"
	assert.Equal(t, "ASK_SP", c.Receipts()[0].Op)
}

func TestSlogEmitterWritesRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewSlog(logger)

	s.Transition(Event{Stage: StageCommit, Cycle: 3, Tick: 7, Shard: 0})
	s.Receipt(Event{Cycle: 3, Tick: 7, Op: "ASK_SP", ResultHash: 0xFF})

	out := buf.String()
	assert.Contains(t, out, "beat transition")
	assert.Contains(t, out, "stage=commit")
	assert.Contains(t, out, "op=ASK_SP")
}

func TestNopEmitter(t *testing.T) {
	var e Emitter = Nop{}
	e.Transition(Event{})
	e.Receipt(Event{})
}

func TestMetricsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.CyclesTotal.Inc()
	m.ParksTotal.Inc()
	m.PendingAdmits.Set(3)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetricsUnregisteredForTests(t *testing.T) {
	a := NewMetrics(nil)
	b := NewMetrics(nil)
	a.CyclesTotal.Inc()
	b.CyclesTotal.Inc()
}
