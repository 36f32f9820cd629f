// Package sender drives the sender-side control loop: admission, ack
// processing, and timer-driven recovery, cooperatively interleaved over
// a single UDP socket and stdin. The window/ack bookkeeping lives in
// internal/sendwin and the congestion state machine in
// internal/congestion; this package is the glue that reads bytes, calls
// into them, and puts frames on the wire.
package sender

import (
	"io"
	"net"
	"time"

	"github.com/golang/glog"

	"github.com/arqnet/rudp/internal/config"
	"github.com/arqnet/rudp/internal/congestion"
	"github.com/arqnet/rudp/internal/metrics"
	"github.com/arqnet/rudp/internal/netutil"
	"github.com/arqnet/rudp/internal/sendwin"
	"github.com/arqnet/rudp/internal/wire"
)

// pollInterval bounds how long each ack-processing read blocks before
// the loop returns to admission and the timer check: a short-blocking
// poll standing in for a true zero-timeout poll of the socket.
const pollInterval = 5 * time.Millisecond

// Run reads stdin to exhaustion, segments it, and drives it across conn
// under sliding-window flow control until every segment is acknowledged.
// It returns nil exactly when every admitted segment has been retired
// and stdin is exhausted; any non-nil error is a local I/O failure and
// the caller should exit non-zero.
func Run(conn *net.UDPConn, stdin io.Reader, m *metrics.Set) error {
	tr := sendwin.New()
	cong := congestion.New()
	enc := &wire.FrameEncoder{}
	ackDec := wire.NewAckDecoder()

	readBuf := make([]byte, config.ChunkSize)
	wireBuf := make([]byte, config.MaxDatagramSize)

	send := func(seq uint16, payload []byte) error {
		frame, err := enc.Encode(seq, payload)
		if err != nil {
			return err
		}
		if _, err := conn.Write(frame); err != nil {
			return err
		}
		m.FramesSent.Inc()
		return nil
	}

	for {
		// --- Admission ---
		for !tr.EOF && tr.HasCapacity(cong.EffectiveWindow()) {
			n, err := stdin.Read(readBuf)
			if n > 0 {
				payload := append([]byte(nil), readBuf[:n]...)
				seq := tr.Assign(payload, time.Now())
				if err := send(seq, payload); err != nil {
					return err
				}
				glog.V(1).Infof("sender: admitted seq=%d bytes=%d cwnd=%d", seq, n, cong.Cwnd)
			}
			if err != nil {
				if err == io.EOF {
					tr.EOF = true
					glog.Infof("sender: stdin exhausted at next_seq=%d", tr.NextSeq())
				} else {
					glog.Warningf("sender: stdin read error, treating as EOF: %v", err)
					tr.EOF = true
				}
				break
			}
		}

		// --- Termination ---
		if tr.EOF && tr.IsEmpty() {
			return nil
		}

		// --- Ack processing ---
		if err := conn.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
			return err
		}
		n, err := conn.Read(wireBuf)
		if err != nil {
			if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
				return err
			}
		} else if err := handleAck(wireBuf[:n], tr, cong, ackDec, m, send); err != nil {
			return err
		}

		// --- Timer ---
		if !tr.IsEmpty() && time.Since(tr.LastTransmit) > cong.EffectiveTimeout() {
			oldCwnd := cong.Cwnd
			cong.Timeout()
			glog.Infof("sender: timeout, cwnd %d -> 1, ssthresh -> %d", oldCwnd, cong.Ssthresh)
			m.Timeouts.Inc()
			now := time.Now()
			for _, seq := range tr.Pending() {
				tr.ClearSentTime(seq)
				payload, ok := tr.Payload(seq)
				if !ok {
					continue
				}
				if err := send(seq, payload); err != nil {
					return err
				}
				m.FramesRetransmitted.Inc()
			}
			tr.LastTransmit = now
		}

		m.Cwnd.Set(float64(cong.Cwnd))
		m.Ssthresh.Set(float64(cong.Ssthresh))
		m.RTOSeconds.Set(cong.RTO().Seconds())
		if q, err := netutil.SendQueueBytes(conn); err == nil {
			m.SendQueueSize.Set(float64(q))
		}
	}
}

// handleAck decodes one candidate ack frame and folds it into the
// tracker and congestion controller, retransmitting base via send if the
// third consecutive non-advancing ack triggers fast retransmit.
func handleAck(frame []byte, tr *sendwin.Tracker, cong *congestion.Controller, dec *wire.AckDecoder, m *metrics.Set, send func(seq uint16, payload []byte) error) error {
	seqLow, ok := dec.Decode(frame)
	if !ok {
		m.FramesDropped.Inc()
		return nil
	}

	h := sendwin.ReconstructAck(seqLow, tr.Base())
	now := time.Now()
	res := tr.ApplyAck(h, now)
	cong.Grow()

	if res.Advancing {
		if res.HasSample {
			cong.UpdateRTTSample(res.Sample)
		}
		glog.V(1).Infof("sender: ack advanced base to %d, cwnd=%d", tr.Base(), cong.Cwnd)
		return nil
	}

	glog.V(1).Infof("sender: non-advancing ack (dupCount=%d)", tr.DupCount())
	if tr.DupCount() < config.FastRetransmitThreshold {
		return nil
	}

	tr.ResetDupCount()
	base := tr.Base()
	tr.ClearSentTime(base)
	if payload, ok := tr.Payload(base); ok {
		if err := send(base, payload); err != nil {
			return err
		}
		m.FramesRetransmitted.Inc()
	}
	cong.FastRetransmit()
	m.FastRetransmits.Inc()
	glog.Infof("sender: fast retransmit seq=%d, ssthresh=%d, cwnd=%d", base, cong.Ssthresh, cong.Cwnd)
	return nil
}
