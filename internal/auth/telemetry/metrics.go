// Package telemetry exposes the auth service gauges through OpenTelemetry.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

const (
	MetricActiveSessions      = "campus.auth.active_sessions"
	MetricRealtimeConnections = "campus.realtime.connections"
)

var ErrNilMeter = errors.New("telemetry: nil meter")

// Counter reports a current value when the gauge is collected.
type Counter interface {
	ActiveCount() int
}

// CounterFunc adapts a plain function to Counter.
type CounterFunc func() int

func (f CounterFunc) ActiveCount() int { return f() }

// Gauges holds the registered observable gauges until Close.
type Gauges struct {
	registration metric.Registration
}

// RegisterGauges publishes the active-session count and, when connections
// is non-nil, the open real-time connection count. Values are read on each
// collection so the registry sweep runs at polling time.
func RegisterGauges(meter metric.Meter, sessions Counter, connections Counter) (*Gauges, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}

	active, err := meter.Int64ObservableGauge(MetricActiveSessions,
		metric.WithDescription("Users holding an unexpired session."),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create gauge %s: %w", MetricActiveSessions, err)
	}
	observables := []metric.Observable{active}

	var conns metric.Int64ObservableGauge
	if connections != nil {
		conns, err = meter.Int64ObservableGauge(MetricRealtimeConnections,
			metric.WithDescription("Authenticated real-time connections."),
			metric.WithUnit("{connection}"),
		)
		if err != nil {
			return nil, fmt.Errorf("create gauge %s: %w", MetricRealtimeConnections, err)
		}
		observables = append(observables, conns)
	}

	registration, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(active, int64(sessions.ActiveCount()))
		if conns != nil {
			o.ObserveInt64(conns, int64(connections.ActiveCount()))
		}
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	return &Gauges{registration: registration}, nil
}

// Close unregisters the callback.
func (g *Gauges) Close() error {
	if g == nil || g.registration == nil {
		return nil
	}
	return g.registration.Unregister()
}
