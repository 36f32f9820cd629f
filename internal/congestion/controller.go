// Package congestion implements the slow-start / congestion-avoidance /
// fast-retransmit controller and RTT estimator. The state machine and
// variable names (cwnd, ssthresh, rto) follow the vendored
// gopkg.in/xtaci/kcp-go.v2 KCP core (rx_rto/rx_srtt/update_ack in kcp.go,
// the ssthresh halving and cwnd reset in its flush method), adapted to
// the simpler per-ack (rather than per-timer-tick) admission rule this
// protocol specifies.
package congestion

import (
	"time"

	"github.com/arqnet/rudp/internal/config"
)

// Controller owns cwnd, ssthresh, the current RTO, and the counters that
// drive growth and fast retransmit. It holds no I/O state: callers are
// responsible for reading acks off the wire and for the window/sent-time
// bookkeeping in package sendwin.
type Controller struct {
	Cwnd     int
	Ssthresh int

	rto time.Duration

	// caCredit counts transmissions-worth-of-acks toward the next +1 to
	// cwnd during congestion avoidance, approximating 1/cwnd growth per
	// ack without floating point accumulation.
	caCredit int
}

// New returns a Controller initialized to the protocol's fixed starting
// values.
func New() *Controller {
	return &Controller{
		Cwnd:     config.InitialCwnd,
		Ssthresh: config.InitialSsthresh,
		rto:      config.InitialRTO,
	}
}

// EffectiveWindow returns the number of segments the sender may have
// outstanding right now: min(static maximum, cwnd).
func (c *Controller) EffectiveWindow() int {
	if c.Cwnd < config.StaticMaxWindow {
		return c.Cwnd
	}
	return config.StaticMaxWindow
}

// Grow advances cwnd for one processed ack, whether or not that ack
// advanced base. This diverges from textbook AIMD, which only grows
// cwnd on acks that retire new data; here a run of duplicate acks still
// grows the window right up until fast retransmit fires.
func (c *Controller) Grow() {
	if c.Cwnd < c.Ssthresh {
		// Slow start: one full segment per ack.
		c.Cwnd++
		return
	}
	// Congestion avoidance: roughly 1/cwnd per ack.
	c.caCredit++
	if c.caCredit >= c.Cwnd {
		c.caCredit -= c.Cwnd
		c.Cwnd++
	}
}

// FastRetransmit applies the fast-recovery transition triggered by the
// third consecutive non-advancing ack: ssthresh halves (floor 1) and
// cwnd jumps to ssthresh+3.
func (c *Controller) FastRetransmit() {
	c.Ssthresh = halve(c.Cwnd)
	c.Cwnd = c.Ssthresh + 3
	c.caCredit = 0
}

// Timeout applies the slow-start reset triggered by an RTO expiry:
// ssthresh halves (floor 1) and cwnd drops to 1.
func (c *Controller) Timeout() {
	c.Ssthresh = halve(c.Cwnd)
	c.Cwnd = 1
	c.caCredit = 0
}

func halve(v int) int {
	h := v / 2
	if h < 1 {
		h = 1
	}
	return h
}

// UpdateRTTSample folds a fresh round-trip sample into the smoothed RTO
// estimate: rto = alpha*rto + beta*sample. Callers must exclude samples
// taken from retransmitted segments (Karn's algorithm); this package
// trusts the caller to have already done so.
func (c *Controller) UpdateRTTSample(sample time.Duration) {
	c.rto = time.Duration(config.RTTAlpha*float64(c.rto) + config.RTTBeta*float64(sample))
}

// RTO returns the current smoothed retransmission timeout.
func (c *Controller) RTO() time.Duration {
	return c.rto
}

// EffectiveTimeout returns the timer threshold a sender compares elapsed
// time against: 1.2·rto.
func (c *Controller) EffectiveTimeout() time.Duration {
	return time.Duration(float64(c.rto) * config.TimeoutMultiplier)
}
