// Package sendwin holds the sender's window bookkeeping: which segments
// are outstanding, when they were last sent, and how to fold an
// incoming (lossily 8-bit) cumulative ack back into a full sequence
// number. It has no socket or stdin I/O of its own — internal/sender
// drives it.
package sendwin

import "time"

// Tracker is the sender's window state: base, next_seq, the window and
// sent-time maps keyed by sequence number, plus the consecutive
// non-advancing-ack counter used for fast retransmit.
type Tracker struct {
	base    uint16
	nextSeq uint16

	window    map[uint16][]byte
	sentTimes map[uint16]time.Time

	dupCount int

	// LastTransmit anchors the timeout timer; it is updated on every
	// admission and on every advancing ack, but deliberately left
	// untouched by a fast retransmit, so the timer keeps bounding total
	// recovery latency from the last point real progress was observed.
	LastTransmit time.Time

	// EOF is set once stdin has been exhausted.
	EOF bool
}

// New returns a Tracker with base and next_seq at their initial value of 1.
func New() *Tracker {
	return &Tracker{
		base:      1,
		nextSeq:   1,
		window:    make(map[uint16][]byte),
		sentTimes: make(map[uint16]time.Time),
	}
}

// Base is the lowest unacknowledged sequence number.
func (t *Tracker) Base() uint16 { return t.base }

// NextSeq is the sequence number that will be assigned to the next
// admitted segment.
func (t *Tracker) NextSeq() uint16 { return t.nextSeq }

// Outstanding is next_seq - base: the number of segments sent but not
// yet retired.
func (t *Tracker) Outstanding() int {
	return int(t.nextSeq) - int(t.base)
}

// HasCapacity reports whether a new segment may be admitted given the
// controller's current effective window.
func (t *Tracker) HasCapacity(effectiveWindow int) bool {
	return t.Outstanding() < effectiveWindow
}

// IsEmpty reports whether every admitted segment has been retired —
// the sender's termination condition once EOF is also true.
func (t *Tracker) IsEmpty() bool {
	return t.base == t.nextSeq
}

// Assign admits a new segment: it records the payload and send time
// under next_seq, advances next_seq, and returns the sequence number
// assigned.
func (t *Tracker) Assign(payload []byte, now time.Time) uint16 {
	seq := t.nextSeq
	t.window[seq] = payload
	t.sentTimes[seq] = now
	t.nextSeq++
	t.LastTransmit = now
	return seq
}

// Payload returns the bytes most recently associated with seq, for a
// (re)transmission.
func (t *Tracker) Payload(seq uint16) ([]byte, bool) {
	p, ok := t.window[seq]
	return p, ok
}

// Pending returns every outstanding sequence number, base..next_seq-1,
// in ascending order.
func (t *Tracker) Pending() []uint16 {
	out := make([]uint16, 0, t.Outstanding())
	for s := t.base; s != t.nextSeq; s++ {
		out = append(out, s)
	}
	return out
}

// ClearSentTime removes seq's send-time record so a later ack covering
// it cannot be mistaken for a fresh RTT sample (Karn's algorithm) — used
// when a segment is retransmitted.
func (t *Tracker) ClearSentTime(seq uint16) {
	delete(t.sentTimes, seq)
}

// Retransmit marks seq as (re)sent at now, for timer-anchor purposes,
// and returns its payload. It intentionally does not touch sentTimes:
// callers that want Karn's algorithm must call ClearSentTime themselves
// (fast retransmit and timeout both do).
func (t *Tracker) Retransmit(seq uint16, now time.Time) ([]byte, bool) {
	p, ok := t.window[seq]
	if ok {
		t.LastTransmit = now
	}
	return p, ok
}

// AckResult reports the outcome of applying a reconstructed cumulative
// ack to the tracker.
type AckResult struct {
	Advancing bool
	HasSample bool
	Sample    time.Duration
}

// ApplyAck processes a reconstructed cumulative sequence h. If h >= base
// it advances the window (retiring every entry up to and including h,
// and setting base = h+1), resets dupCount, and — if sentTimes[h] was
// still present — reports an RTT sample. Otherwise it is a non-advancing
// ack: dupCount is incremented and the caller is responsible for
// checking FastRetransmitThreshold.
func (t *Tracker) ApplyAck(h uint16, now time.Time) AckResult {
	if int(h) < int(t.base) {
		t.dupCount++
		return AckResult{}
	}

	res := AckResult{Advancing: true}
	if sentAt, ok := t.sentTimes[h]; ok {
		res.HasSample = true
		res.Sample = now.Sub(sentAt)
	}

	for s := t.base; s != h+1; s++ {
		delete(t.window, s)
		delete(t.sentTimes, s)
	}
	t.base = h + 1
	t.dupCount = 0
	t.LastTransmit = now
	return res
}

// DupCount is the number of consecutive non-advancing acks seen since
// the last advancing ack or fast retransmit.
func (t *Tracker) DupCount() int { return t.dupCount }

// ResetDupCount clears the non-advancing-ack counter; called once a
// fast retransmit has been triggered.
func (t *Tracker) ResetDupCount() { t.dupCount = 0 }

// ReconstructAck widens the wire's 8-bit cumulative sequence byte back
// into a full 16-bit value. The wire only carries h mod 256; this picks
// the candidate nearest to base among the three 256-aligned blocks
// around it, which is exact whenever fewer than 128 segments have been
// acked since the sender last observed progress.
func ReconstructAck(ackLow byte, base uint16) uint16 {
	blockBase := base &^ 0xFF
	best := blockBase | uint16(ackLow)
	bestDist := distance(best, base)

	for _, block := range [...]uint16{blockBase + 256, blockBase - 256} {
		cand := block | uint16(ackLow)
		if d := distance(cand, base); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}

func distance(a, b uint16) int {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d
}
