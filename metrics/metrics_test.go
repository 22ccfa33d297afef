package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/hotelagent/agent"
	"github.com/tbxark/hotelagent/types"
	"github.com/tbxark/hotelagent/validate"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err, "duplicate registration must fail")
}

func TestHandlerRecordsNodes(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)
	h := m.Handler()
	ctx := context.Background()

	graph := &callbacks.RunInfo{Name: "hotel_booking", Component: compose.ComponentOfGraph}
	node := &callbacks.RunInfo{Name: validateNode, Component: compose.ComponentOfLambda}

	gctx := h.OnStart(ctx, graph, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveTurns))
	nctx := h.OnStart(gctx, node, nil)
	h.OnEnd(nctx, node, &types.Session{ValidInfo: false})
	h.OnEnd(gctx, graph, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeVisits.WithLabelValues(validateNode)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveTurns))

	detect := &callbacks.RunInfo{Name: "detect_intent", Component: compose.ComponentOfLambda}
	gctx = h.OnStart(ctx, graph, nil)
	nctx = h.OnStart(gctx, detect, nil)
	h.OnError(nctx, detect, errors.New("boom"))
	h.OnError(gctx, graph, errors.New("boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeErrors.WithLabelValues("detect_intent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("error")))
}

func TestHandlerWiredIntoEngine(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)
	clock := func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }
	engine, err := agent.NewEngine(context.Background(), agent.LocalCapabilities(""),
		agent.WithValidator(validate.New(validate.WithClock(clock))),
		agent.WithCallbacks(m.Handler()))
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), types.NewSession("I want to book a room for 2 guests"))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeVisits.WithLabelValues("detect_intent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeVisits.WithLabelValues("collect_information")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("valid")))
}

func TestObserveHTTP(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	m.ObserveHTTP("/sessions", 201)
	m.ObserveHTTP("/sessions", 404)
	m.ObserveHTTP("/sessions", 404)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/sessions", "2xx")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/sessions", "4xx")))
}
