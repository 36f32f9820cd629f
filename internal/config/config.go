// Package config holds the fixed protocol constants. None of these are
// operator-configurable: the wire format and timing behavior they drive are
// part of the protocol contract, not a deployment knob.
package config

import "time"

const (
	// ChunkSize is the maximum number of payload bytes read from stdin per
	// segment, before compression.
	ChunkSize = 2500

	// StaticMaxWindow bounds the number of segments the sender may have
	// outstanding (sent but not yet retired) regardless of cwnd.
	StaticMaxWindow = 500

	// InitialCwnd is the congestion window at startup, in segments.
	InitialCwnd = 1

	// InitialSsthresh is the slow-start threshold at startup, in segments.
	InitialSsthresh = 100

	// InitialRTO is the retransmission timeout at startup.
	InitialRTO = time.Second

	// TimeoutMultiplier scales rto into the effective retransmission timer.
	TimeoutMultiplier = 1.2

	// RTTAlpha and RTTBeta are the EWMA weights on the prior estimate and
	// new sample respectively, applied as rto = RTTAlpha*rto + RTTBeta*sample.
	RTTAlpha = 0.8
	RTTBeta  = 0.2

	// FastRetransmitThreshold is the number of consecutive non-advancing
	// acks that triggers a fast retransmit.
	FastRetransmitThreshold = 3

	// IntegrityTagSize is the length, in bytes, of the MD5-derived
	// integrity tag prepended to every data frame.
	IntegrityTagSize = 10

	// MaxDatagramSize is the ceiling on any frame placed on the wire,
	// enforced by the simulator substrate and honored here defensively.
	MaxDatagramSize = 1500

	// AckFrameSize is the fixed size of an ack frame on the wire.
	AckFrameSize = 4
)
