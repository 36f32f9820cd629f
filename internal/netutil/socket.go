// Package netutil configures the UDP socket each endpoint binds.
// Buffer sizing follows the pattern in the vendored
// gopkg.in/xtaci/kcp-go.v2's UDPSession.SetReadBuffer/SetWriteBuffer
// (sess.go): reach for the socket's own buffer-sizing methods rather
// than trust kernel defaults, since the protocol's static window (500
// segments, each a datagram of up to 1500 bytes) can have about 750 kB
// in flight.
package netutil

import (
	"net"

	"github.com/golang/glog"
	"golang.org/x/sys/unix"
)

// SocketBufferBytes is the SO_RCVBUF/SO_SNDBUF size requested on every
// endpoint's UDP socket. Sized generously above the theoretical
// in-flight maximum (500 segments * 1500 bytes) so kernel backpressure
// is never the limiting factor ahead of cwnd.
const SocketBufferBytes = 4 << 20

// TuneBuffers best-effort raises a UDP socket's send/receive buffer
// sizes. Failures are logged, not fatal: the protocol degrades to
// whatever the kernel default provides rather than aborting the run
// over a non-essential tuning knob.
func TuneBuffers(conn *net.UDPConn) {
	if err := conn.SetReadBuffer(SocketBufferBytes); err != nil {
		glog.Warningf("netutil: SetReadBuffer: %v", err)
	}
	if err := conn.SetWriteBuffer(SocketBufferBytes); err != nil {
		glog.Warningf("netutil: SetWriteBuffer: %v", err)
	}
}

// SendQueueBytes reports the kernel's current outbound queue depth for
// conn (SIOCOUTQ): bytes already written to the socket but not yet sent
// on the wire. It reaches through SyscallConn to ioctl the raw fd, the
// same way sockstats.go pulls TCP_INFO off a connection's raw fd to
// build its stats snapshot. Returns an error if the platform or socket
// doesn't support the ioctl; callers treat that as "no sample".
func SendQueueBytes(conn *net.UDPConn) (int, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, err
	}

	var n int
	var ctrlErr error
	err = raw.Control(func(fd uintptr) {
		n, ctrlErr = unix.IoctlGetInt(int(fd), unix.SIOCOUTQ)
	})
	if err != nil {
		return 0, err
	}
	return n, ctrlErr
}
