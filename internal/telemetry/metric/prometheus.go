package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "redmod"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	CommandsTotal    *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	ExpiredKeys      prometheus.Counter
	Connections      prometheus.Counter
	Disconnections   prometheus.Counter
	PubSubDeliveries prometheus.Counter
}

// NewRegistry creates a registry with every redmod metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands processed, by command and status.",
		}, []string{"command", "status"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command execution time.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"command"}),
		ExpiredKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_keys_total",
			Help:      "Keys removed by expiration.",
		}),
		Connections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Client connections accepted.",
		}),
		Disconnections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disconnections_total",
			Help:      "Client connections closed.",
		}),
		PubSubDeliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pubsub_messages_total",
			Help:      "Pub/sub messages delivered to subscribers.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.CommandsTotal,
		r.CommandDuration,
		r.ExpiredKeys,
		r.Connections,
		r.Disconnections,
		r.PubSubDeliveries,
	)
	return r
}

// MustRegister adds further collectors, such as a Collector.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// Handler returns the /metrics handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveCommand records one command execution.
func (r *Registry) ObserveCommand(name string, duration time.Duration, failed bool) {
	status := "ok"
	if failed {
		status = "error"
	}
	r.CommandsTotal.WithLabelValues(name, status).Inc()
	r.CommandDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// KeyExpired records a key removed by its expiration timer.
func (r *Registry) KeyExpired(string) {
	r.ExpiredKeys.Inc()
}

func (r *Registry) ConnectionOpened() {
	r.Connections.Inc()
}

func (r *Registry) ConnectionClosed() {
	r.Disconnections.Inc()
}

func (r *Registry) MessageDelivered() {
	r.PubSubDeliveries.Inc()
}
