package connpool

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestDialerCountsOpenAndClose(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()

	d := NewDialer(time.Second, nil)
	conn, err := d.DialContext(context.Background(), "tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("DialContext() error = %v", err)
	}
	if d.Metrics().Active() != 1 {
		t.Fatalf("Active() = %d, want 1", d.Metrics().Active())
	}
	conn.Close()
	conn.Close()

	m := d.Metrics()
	if m.Opened() != 1 || m.Closed() != 1 || m.Active() != 0 {
		t.Fatalf("metrics = %v", m.GetMetrics())
	}
}

func TestDialerCountsFailures(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	d := NewDialer(time.Second, nil)
	if _, err := d.Dial("tcp", addr); err == nil {
		t.Fatal("dial to a closed port succeeded")
	}
	if d.Metrics().Failed() != 1 || d.Metrics().Opened() != 0 {
		t.Fatalf("metrics = %v", d.Metrics().GetMetrics())
	}
}
