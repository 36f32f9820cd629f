// Package metrics exposes a debug-only Prometheus surface over the
// protocol's internal counters and gauges, following the collector
// style of runZeroInc-sockstats/pkg/exporter/exporter.go. Nothing here
// is part of the wire contract; it exists purely so cwnd, ssthresh, RTO
// and retransmission behavior can be observed from outside the process
// while a run is in flight.
package metrics

import (
	"context"
	"net"
	"net/http"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set is one endpoint's collection of debug gauges and counters. All
// fields are safe for concurrent use since prometheus metric types are.
type Set struct {
	FramesSent          prometheus.Counter
	FramesRetransmitted prometheus.Counter
	FastRetransmits     prometheus.Counter
	Timeouts            prometheus.Counter
	FramesDropped       prometheus.Counter

	Cwnd          prometheus.Gauge
	Ssthresh      prometheus.Gauge
	RTOSeconds    prometheus.Gauge
	ReorderDepth  prometheus.Gauge
	SendQueueSize prometheus.Gauge
}

// New builds a Set under its own registry, labeled by role ("sender" or
// "receiver") so both endpoints can run the pack's suggested metric
// names without colliding if ever scraped from the same target.
func New(role string) (*Set, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"role": role}

	s := &Set{
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rudp_frames_sent_total",
			Help:        "Data or ack frames transmitted, including retransmissions.",
			ConstLabels: constLabels,
		}),
		FramesRetransmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rudp_frames_retransmitted_total",
			Help:        "Data frames retransmitted, via fast retransmit or timeout.",
			ConstLabels: constLabels,
		}),
		FastRetransmits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rudp_fast_retransmits_total",
			Help:        "Fast-retransmit events triggered by 3 consecutive non-advancing acks.",
			ConstLabels: constLabels,
		}),
		Timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rudp_timeouts_total",
			Help:        "Retransmission-timeout events.",
			ConstLabels: constLabels,
		}),
		FramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rudp_frames_dropped_total",
			Help:        "Received frames discarded: bad checksum, bad decompression, or duplicate nonce.",
			ConstLabels: constLabels,
		}),
		Cwnd: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "rudp_cwnd",
			Help:        "Current congestion window, in segments.",
			ConstLabels: constLabels,
		}),
		Ssthresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "rudp_ssthresh",
			Help:        "Current slow-start threshold, in segments.",
			ConstLabels: constLabels,
		}),
		RTOSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "rudp_rto_seconds",
			Help:        "Current smoothed retransmission timeout, in seconds.",
			ConstLabels: constLabels,
		}),
		ReorderDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "rudp_reorder_buffer_depth",
			Help:        "Out-of-order segments currently held by the receiver.",
			ConstLabels: constLabels,
		}),
		SendQueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "rudp_send_queue_bytes",
			Help:        "Kernel-reported outbound queue depth on the UDP socket (SIOCOUTQ).",
			ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(
		s.FramesSent, s.FramesRetransmitted, s.FastRetransmits,
		s.Timeouts, s.FramesDropped,
		s.Cwnd, s.Ssthresh, s.RTOSeconds, s.ReorderDepth, s.SendQueueSize,
	)
	return s, reg
}

// Serve starts an HTTP server on an ephemeral loopback port exposing
// /metrics, and logs the bound address at startup the way the protocol
// already reports its data-plane port to the harness. It never blocks:
// the listener is created synchronously so the caller can log the port
// immediately, while srv.Serve runs in the background. Its
// http.ErrServerClosed on shutdown is ignored; any other error is logged
// as a warning.
func Serve(reg *prometheus.Registry) (addr string, shutdown func(context.Context) error, err error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			glog.Warningf("metrics: server exited: %v", err)
		}
	}()

	glog.Infof("metrics: serving /metrics on %s", ln.Addr())
	return ln.Addr().String(), srv.Shutdown, nil
}
