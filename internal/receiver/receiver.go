// Package receiver drives the receiver-side control loop: blocking
// reads off the socket, frame validation and reassembly via
// internal/recvwin, and a cumulative ack after every valid frame. The
// receiver never exits voluntarily — its parent process is expected to
// kill it once the sender reports completion.
package receiver

import (
	"io"
	"net"

	"github.com/golang/glog"

	"github.com/arqnet/rudp/internal/config"
	"github.com/arqnet/rudp/internal/metrics"
	"github.com/arqnet/rudp/internal/recvwin"
	"github.com/arqnet/rudp/internal/wire"
)

// Run blocks on conn's socket forever, decoding frames, writing in-order
// bytes to stdout, and acking every valid frame received. It returns
// only on a local I/O failure (a write to stdout failing, or the socket
// erroring out), which the caller treats as fatal.
func Run(conn *net.UDPConn, stdout io.Writer, m *metrics.Set) error {
	buf := New(conn, stdout, m)
	return buf.run()
}

// endpoint bundles the receiver's mutable state. handleFrame touches the
// socket only to send an ack once a peer is latched, so tests can build an
// endpoint without one.
type endpoint struct {
	conn   *net.UDPConn
	stdout io.Writer
	m      *metrics.Set

	frameDec *wire.FrameDecoder
	ackEnc   *wire.AckEncoder
	buf      *recvwin.Buffer

	peer net.Addr
}

// New constructs a receiver endpoint bound to conn.
func New(conn *net.UDPConn, stdout io.Writer, m *metrics.Set) *endpoint {
	return &endpoint{
		conn:     conn,
		stdout:   stdout,
		m:        m,
		frameDec: wire.NewFrameDecoder(),
		ackEnc:   &wire.AckEncoder{},
		buf:      recvwin.New(),
	}
}

func (e *endpoint) run() error {
	wireBuf := make([]byte, config.MaxDatagramSize)
	for {
		n, addr, err := e.conn.ReadFrom(wireBuf)
		if err != nil {
			return err
		}

		if e.peer == nil {
			e.peer = addr
			glog.Infof("receiver: latched peer %s", addr)
		} else if addr.String() != e.peer.String() {
			glog.Warningf("receiver: dropping datagram from unexpected peer %s (want %s)", addr, e.peer)
			continue
		}

		if err := e.handleFrame(wireBuf[:n]); err != nil {
			return err
		}
	}
}

// handleFrame decodes one datagram and, if valid, delivers in-order
// bytes to stdout and sends a cumulative ack. Invalid frames (bad
// checksum, bad decompression, duplicate nonce) are silently dropped
// per the protocol's decode procedure.
func (e *endpoint) handleFrame(frame []byte) error {
	seq, payload, ok := e.frameDec.Decode(frame)
	if !ok {
		e.m.FramesDropped.Inc()
		glog.V(1).Infof("receiver: dropped invalid or duplicate frame")
		return nil
	}

	for _, out := range e.buf.Deliver(seq, payload) {
		if _, err := e.stdout.Write(out); err != nil {
			return err
		}
	}
	glog.V(1).Infof("receiver: seq=%d expected=%d reorder_depth=%d", seq, e.buf.Expected(), e.buf.PendingDepth())
	e.m.ReorderDepth.Set(float64(e.buf.PendingDepth()))

	ack := e.ackEnc.Encode(e.buf.HighWater())
	if e.peer != nil {
		if _, err := e.conn.WriteTo(ack, e.peer); err != nil {
			return err
		}
	}
	e.m.FramesSent.Inc()
	return nil
}
