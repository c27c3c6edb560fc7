package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the tracker
	Registry = prometheus.NewRegistry()

	// FramesParsed counts inbound STOMP frames by command
	FramesParsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stomp_frames_parsed_total", Help: "Inbound STOMP frames by command."},
		[]string{"command"},
	)
	// DecodeErrors counts MESSAGE bodies dropped as unparsable
	DecodeErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "stomp_decode_errors_total", Help: "MESSAGE frames dropped due to malformed bodies."},
	)
	// Reconnects counts reconnect attempts after socket loss
	Reconnects = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "tracker_reconnects_total", Help: "Reconnect attempts after socket loss."},
	)
	// Merges counts snapshot merges by source
	Merges = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tracker_merges_total", Help: "Snapshot merges by source (begin, hydrate, push)."},
		[]string{"source"},
	)
	// ConnState is 1 for the current connection state, 0 otherwise
	ConnState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "tracker_connection_state", Help: "Current connection state (one-hot by state label)."},
		[]string{"state"},
	)
)

// RegisterDefault registers collectors to the tracker registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(FramesParsed)
		Registry.MustRegister(DecodeErrors)
		Registry.MustRegister(Reconnects)
		Registry.MustRegister(Merges)
		Registry.MustRegister(ConnState)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once

// SetConnState flips the one-hot connection state gauge.
func SetConnState(state string) {
	for _, s := range []string{"idle", "connecting", "connected", "error"} {
		v := 0.0
		if s == state {
			v = 1.0
		}
		ConnState.WithLabelValues(s).Set(v)
	}
}
