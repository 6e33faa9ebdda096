package proxy

import (
	"context"
	"fmt"
	"io"
	"net"
	"proxyprobe/pkg/errors"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

const (
	socks4Version = 0x04
	socks4Connect = 0x01

	socks4Granted        = 0x5a
	socks4Rejected       = 0x5b
	socks4NoIdentd       = 0x5c
	socks4IdentdMismatch = 0x5d
)

// Resolver 将目标主机解析为 IPv4 地址
type Resolver func(ctx context.Context, host string) (net.IP, error)

// socks4Dialer 通过 SOCKS4 代理建立 CONNECT 隧道
// golang.org/x/net/proxy 不支持 SOCKS4，这里手动实现握手
type socks4Dialer struct {
	endpoint string
	forward  proxy.ContextDialer
	resolve  Resolver
}

var _ proxy.ContextDialer = (*socks4Dialer)(nil)

func (d *socks4Dialer) Dial(network, addr string) (net.Conn, error) {
	return d.DialContext(context.Background(), network, addr)
}

func (d *socks4Dialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if network != "tcp" && network != "tcp4" {
		return nil, fmt.Errorf("socks4: network %q not supported", network)
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("socks4: invalid target %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("socks4: invalid target port %q", portStr)
	}
	ip, err := d.resolve(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("socks4: resolve %s: %w", host, err)
	}

	conn, err := d.forward.DialContext(ctx, "tcp", d.endpoint)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	// VN, CD, DSTPORT, DSTIP, USERID(空) + NUL
	req := []byte{socks4Version, socks4Connect, byte(port >> 8), byte(port), ip[0], ip[1], ip[2], ip[3], 0x00}
	if _, err := conn.Write(req); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: socks4 write request: %v", errors.ErrHandshake, err)
	}

	var reply [8]byte
	if _, err := io.ReadFull(conn, reply[:]); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: socks4 read reply: %v", errors.ErrHandshake, err)
	}
	// 部分实现在 VN 字段回 0x04
	if reply[0] != 0x00 && reply[0] != socks4Version {
		conn.Close()
		return nil, fmt.Errorf("%w: socks4 unexpected reply version 0x%02x", errors.ErrHandshake, reply[0])
	}
	if reply[1] != socks4Granted {
		conn.Close()
		return nil, fmt.Errorf("%w: socks4 %s", errors.ErrHandshake, socks4ReplyString(reply[1]))
	}

	_ = conn.SetDeadline(time.Time{})
	return conn, nil
}

// socks4ReplyString 将 SOCKS4 回复码转换为可读字符串
func socks4ReplyString(code byte) string {
	switch code {
	case socks4Granted:
		return "request granted"
	case socks4Rejected:
		return "request rejected or failed"
	case socks4NoIdentd:
		return "rejected: identd unreachable"
	case socks4IdentdMismatch:
		return "rejected: identd user mismatch"
	default:
		return fmt.Sprintf("unknown reply code 0x%02x", code)
	}
}
