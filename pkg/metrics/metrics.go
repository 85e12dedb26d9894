// Package metrics exposes bridge routing and emission counters to Prometheus.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/primaryrutabaga/braze-bridge/pkg/tagbridge"
)

var (
	// Registry is the dedicated Prometheus registry for the bridge.
	Registry = prometheus.NewRegistry()
	// Invocations counts bags routed to a handler, by action.
	Invocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bridge_invocations_total", Help: "Parameter bags routed to a handler."},
		[]string{"action"},
	)
	// Discards counts bags or handler runs that emitted nothing, by action and reason.
	Discards = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bridge_discards_total", Help: "Invocations dropped without emitting."},
		[]string{"action", "reason"},
	)
	// Warnings counts values applied despite failing validation.
	Warnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bridge_validation_warnings_total", Help: "Values applied despite failing validation."},
		[]string{"reason"},
	)
	// Calls counts outbound engagement calls by kind.
	Calls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bridge_outbound_calls_total", Help: "Outbound engagement platform calls."},
		[]string{"kind"},
	)
)

var regOnce sync.Once

// RegisterDefault registers collectors to Registry once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(Invocations)
		Registry.MustRegister(Discards)
		Registry.MustRegister(Warnings)
		Registry.MustRegister(Calls)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Recorder feeds Bridge routing outcomes into the counters.
type Recorder struct{}

var _ tagbridge.Recorder = Recorder{}

func (Recorder) Routed(action tagbridge.Action) {
	Invocations.WithLabelValues(string(action)).Inc()
}

func (Recorder) Discarded(action tagbridge.Action, reason string) {
	Discards.WithLabelValues(actionLabel(action), reason).Inc()
}

func (Recorder) Warned(reason string) {
	Warnings.WithLabelValues(reason).Inc()
}

// actionLabel keeps unclassified bags from producing an empty label value.
func actionLabel(a tagbridge.Action) string {
	if a == "" {
		return "none"
	}
	return string(a)
}

// CallCounter is a Sink that only counts. Tee it next to the real sink.
func CallCounter() tagbridge.CallSink {
	return func(c tagbridge.Call) {
		Calls.WithLabelValues(string(c.Kind)).Inc()
	}
}
