package proxy

import (
	"encoding/binary"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
)

// testSocksServer 测试用的最小 SOCKS4/SOCKS5 服务端
type testSocksServer struct {
	ln      net.Listener
	reject  bool
	mu      sync.Mutex
	targets []string
}

func startSocksServer(t *testing.T, reject bool) *testSocksServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := &testSocksServer{ln: ln, reject: reject}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *testSocksServer) Addr() string { return s.ln.Addr().String() }

func (s *testSocksServer) Targets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.targets...)
}

func (s *testSocksServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *testSocksServer) handle(conn net.Conn) {
	defer conn.Close()
	var ver [1]byte
	if _, err := io.ReadFull(conn, ver[:]); err != nil {
		return
	}
	var target string
	switch ver[0] {
	case 0x04:
		target = s.socks4Request(conn)
	case 0x05:
		target = s.socks5Request(conn)
	}
	if target == "" {
		return
	}
	s.mu.Lock()
	s.targets = append(s.targets, target)
	s.mu.Unlock()

	upstream, err := net.Dial("tcp", target)
	if err != nil {
		return
	}
	defer upstream.Close()

	if ver[0] == 0x04 {
		conn.Write([]byte{0x00, 0x5a, 0, 0, 0, 0, 0, 0})
	} else {
		conn.Write([]byte{0x05, 0x00, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
	}
	go io.Copy(upstream, conn)
	io.Copy(conn, upstream)
}

func (s *testSocksServer) socks4Request(conn net.Conn) string {
	var hdr [7]byte // CD, PORT(2), IP(4)
	if _, err := io.ReadFull(conn, hdr[:]); err != nil {
		return ""
	}
	// USERID 以 NUL 结尾
	var b [1]byte
	for {
		if _, err := io.ReadFull(conn, b[:]); err != nil || b[0] == 0 {
			break
		}
	}
	if s.reject {
		conn.Write([]byte{0x00, 0x5b, 0, 0, 0, 0, 0, 0})
		return ""
	}
	port := binary.BigEndian.Uint16(hdr[1:3])
	ip := net.IP(hdr[3:7])
	return net.JoinHostPort(ip.String(), strconv.Itoa(int(port)))
}

func (s *testSocksServer) socks5Request(conn net.Conn) string {
	var n [1]byte
	if _, err := io.ReadFull(conn, n[:]); err != nil {
		return ""
	}
	methods := make([]byte, n[0])
	if _, err := io.ReadFull(conn, methods); err != nil {
		return ""
	}
	if s.reject {
		conn.Write([]byte{0x05, 0xff})
		return ""
	}
	conn.Write([]byte{0x05, 0x00})

	var hdr [4]byte
	if _, err := io.ReadFull(conn, hdr[:]); err != nil {
		return ""
	}
	var host string
	switch hdr[3] {
	case 0x01:
		var ip [4]byte
		if _, err := io.ReadFull(conn, ip[:]); err != nil {
			return ""
		}
		host = net.IP(ip[:]).String()
	case 0x03:
		var l [1]byte
		if _, err := io.ReadFull(conn, l[:]); err != nil {
			return ""
		}
		name := make([]byte, l[0])
		if _, err := io.ReadFull(conn, name); err != nil {
			return ""
		}
		host = string(name)
	case 0x04:
		var ip [16]byte
		if _, err := io.ReadFull(conn, ip[:]); err != nil {
			return ""
		}
		host = net.IP(ip[:]).String()
	default:
		return ""
	}
	var port [2]byte
	if _, err := io.ReadFull(conn, port[:]); err != nil {
		return ""
	}
	return net.JoinHostPort(host, strconv.Itoa(int(binary.BigEndian.Uint16(port[:]))))
}
