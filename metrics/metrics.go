// Package metrics records dialog graph activity as Prometheus collectors fed
// by eino callbacks.
package metrics

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tbxark/hotelagent/types"
)

const validateNode = "validate_information"

type Metrics struct {
	NodeVisits   *prometheus.CounterVec
	NodeDuration *prometheus.HistogramVec
	NodeErrors   *prometheus.CounterVec
	Turns        *prometheus.CounterVec
	TurnDuration prometheus.Histogram
	Validations  *prometheus.CounterVec
	HTTPRequests *prometheus.CounterVec
	ActiveTurns  prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotelagent_node_visits_total",
				Help: "Total number of dialog node visits",
			},
			[]string{"node"},
		),
		NodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hotelagent_node_duration_seconds",
				Help:    "Duration of dialog node executions",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"node"},
		),
		NodeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotelagent_node_errors_total",
				Help: "Total number of failed dialog node executions",
			},
			[]string{"node"},
		),
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotelagent_turns_total",
				Help: "Total number of dialog turns by outcome",
			},
			[]string{"outcome"},
		),
		TurnDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hotelagent_turn_duration_seconds",
				Help:    "Duration of dialog turns",
				Buckets: prometheus.DefBuckets,
			},
		),
		Validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotelagent_validations_total",
				Help: "Total number of booking validations by result",
			},
			[]string{"result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotelagent_http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
		ActiveTurns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "hotelagent_active_turns",
				Help: "Number of dialog turns in flight",
			},
		),
	}
	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.NodeVisits, m.NodeDuration, m.NodeErrors,
		m.Turns, m.TurnDuration, m.Validations,
		m.HTTPRequests, m.ActiveTurns,
	}
}

type startKey struct{}

// Handler returns an eino callback handler that feeds the collectors. Graph
// runs count as turns and lambda runs as node visits.
func (m *Metrics) Handler() callbacks.Handler {
	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
			if info == nil {
				return ctx
			}
			switch info.Component {
			case compose.ComponentOfGraph:
				m.ActiveTurns.Inc()
			case compose.ComponentOfLambda:
				m.NodeVisits.WithLabelValues(info.Name).Inc()
			default:
				return ctx
			}
			return context.WithValue(ctx, startKey{}, time.Now())
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
			if info == nil {
				return ctx
			}
			switch info.Component {
			case compose.ComponentOfGraph:
				m.ActiveTurns.Dec()
				m.Turns.WithLabelValues("ok").Inc()
				m.TurnDuration.Observe(since(ctx))
			case compose.ComponentOfLambda:
				m.NodeDuration.WithLabelValues(info.Name).Observe(since(ctx))
				if info.Name == validateNode {
					if s, ok := output.(*types.Session); ok {
						m.Validations.WithLabelValues(validationResult(s.ValidInfo)).Inc()
					}
				}
			}
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			if info == nil {
				return ctx
			}
			switch info.Component {
			case compose.ComponentOfGraph:
				m.ActiveTurns.Dec()
				m.Turns.WithLabelValues("error").Inc()
				m.TurnDuration.Observe(since(ctx))
			case compose.ComponentOfLambda:
				m.NodeErrors.WithLabelValues(info.Name).Inc()
				m.NodeDuration.WithLabelValues(info.Name).Observe(since(ctx))
			}
			return ctx
		}).
		Build()
}

// ObserveHTTP counts one served request.
func (m *Metrics) ObserveHTTP(route string, status int) {
	m.HTTPRequests.WithLabelValues(route, statusClass(status)).Inc()
}

func since(ctx context.Context) float64 {
	start, ok := ctx.Value(startKey{}).(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start).Seconds()
}

func validationResult(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
