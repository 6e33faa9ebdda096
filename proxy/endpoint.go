package proxy

import (
	"fmt"
	"net"
	"proxyprobe/pkg/errors"
	"strconv"
	"strings"
)

// EndpointPolicy 在拨号前检查候选地址，返回错误即视为格式错误
type EndpointPolicy func(endpoint string) error

// StrictEndpoint 要求 host:port，端口为 1-65535 的数字，IPv6 需要方括号
func StrictEndpoint(endpoint string) error {
	host, port, err := net.SplitHostPort(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMalformedEndpoint, err)
	}
	if strings.TrimSpace(host) == "" || strings.ContainsAny(host, " \t") {
		return fmt.Errorf("%w: empty host in %q", errors.ErrMalformedEndpoint, endpoint)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%w: invalid port %q", errors.ErrMalformedEndpoint, port)
	}
	return nil
}

// LooseEndpoint 只要求非空且包含 ':' 分隔符
func LooseEndpoint(endpoint string) error {
	if strings.TrimSpace(endpoint) == "" || !strings.Contains(endpoint, ":") {
		return fmt.Errorf("%w: %q has no host/port separator", errors.ErrMalformedEndpoint, endpoint)
	}
	return nil
}

// PolicyByName 根据配置名称返回检查策略
func PolicyByName(name string) (EndpointPolicy, error) {
	switch strings.ToLower(name) {
	case "", "strict":
		return StrictEndpoint, nil
	case "loose":
		return LooseEndpoint, nil
	default:
		return nil, fmt.Errorf("unknown endpoint policy: %q", name)
	}
}
