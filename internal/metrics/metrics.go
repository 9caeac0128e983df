// Package metrics exposes Prometheus collectors for the bridge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the bridge updates.
type Metrics struct {
	// ConnectionsActive tracks live connections by role (plugin/admin).
	ConnectionsActive *prometheus.GaugeVec

	// FramesTotal counts inbound frames by role.
	FramesTotal *prometheus.CounterVec

	AuthFailures    prometheus.Counter
	RateLimited     prometheus.Counter
	OversizedFrames prometheus.Counter
	ParseErrors     prometheus.Counter

	// RoutedFrames counts admin requests delivered to a realm's plugins.
	RoutedFrames prometheus.Counter

	// BroadcastFrames counts plugin frames fanned out to admins.
	BroadcastFrames prometheus.Counter

	// RoutingFailures counts requests dropped because no realm could be
	// resolved or the target realm was offline.
	RoutingFailures prometheus.Counter
}

// New registers all collectors on reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ConnectionsActive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "bridge",
			Name:      "connections_active",
			Help:      "Live connections by role.",
		}, []string{"role"}),
		FramesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "frames_total",
			Help:      "Inbound frames by role.",
		}, []string{"role"}),
		AuthFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "auth_failures_total",
			Help:      "Connections rejected with close code 4401.",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "rate_limited_total",
			Help:      "Connections closed with code 4412.",
		}),
		OversizedFrames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "oversized_frames_total",
			Help:      "Text frames soft-rejected for exceeding max_text_len.",
		}),
		ParseErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "parse_errors_total",
			Help:      "Frames that were not valid JSON objects.",
		}),
		RoutedFrames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "routed_frames_total",
			Help:      "Admin requests delivered to realm plugins.",
		}),
		BroadcastFrames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "broadcast_frames_total",
			Help:      "Plugin frames broadcast to admins.",
		}),
		RoutingFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "routing_failures_total",
			Help:      "Requests dropped because the target realm was unresolved or offline.",
		}),
	}
}
