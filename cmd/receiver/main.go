package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/arqnet/rudp/internal/metrics"
	"github.com/arqnet/rudp/internal/netutil"
	"github.com/arqnet/rudp/internal/receiver"
)

func main() {
	if err := _main(); err != nil {
		defer os.Exit(1)

		var st errors.StackTrace
		type stackTracer interface {
			StackTrace() errors.StackTrace
		}
		if e, ok := err.(stackTracer); ok {
			st = e.StackTrace()
		}
		glog.Errorf("%s%+v\n", err, st)
	}
}

func _main() error {
	flag.Parse()

	laddr, err := net.ResolveUDPAddr("udp", ":0")
	if err != nil {
		return errors.WithStack(err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return errors.WithStack(err)
	}
	defer conn.Close()
	netutil.TuneBuffers(conn)

	port := conn.LocalAddr().(*net.UDPAddr).Port
	fmt.Fprintf(os.Stderr, "Bound to port %d\n", port)

	m, reg := metrics.New("receiver")
	addr, shutdown, err := metrics.Serve(reg)
	if err != nil {
		return errors.WithStack(err)
	}
	defer shutdown(context.Background())
	glog.Infof("rudp-recv: metrics on http://%s/metrics", addr)
	glog.Infof("rudp-recv: bound to %s", conn.LocalAddr())

	return receiver.Run(conn, os.Stdout, m)
}
