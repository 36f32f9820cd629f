package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/arqnet/rudp/internal/metrics"
	"github.com/arqnet/rudp/internal/netutil"
	"github.com/arqnet/rudp/internal/sender"
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

	args := flag.Args()
	if len(args) != 2 {
		return errors.Errorf("usage: %s <host> <port>", os.Args[0])
	}
	host := args[0]
	port, err := strconv.Atoi(args[1])
	if err != nil || port < 1 || port > 65535 {
		return errors.Errorf("invalid port %q: must be an integer in 1-65535", args[1])
	}

	raddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return errors.WithStack(err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return errors.WithStack(err)
	}
	defer conn.Close()
	netutil.TuneBuffers(conn)

	m, reg := metrics.New("sender")
	addr, shutdown, err := metrics.Serve(reg)
	if err != nil {
		return errors.WithStack(err)
	}
	defer shutdown(context.Background())
	glog.Infof("rudp-send: metrics on http://%s/metrics", addr)
	glog.Infof("rudp-send: sending to %s", raddr)

	return sender.Run(conn, os.Stdin, m)
}
