package connpool

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// DialMetrics 连接指标
type DialMetrics struct {
	opened atomic.Int64
	closed atomic.Int64
	failed atomic.Int64
}

// Opened 已建立的连接数
func (m *DialMetrics) Opened() int64 { return m.opened.Load() }

// Closed 已关闭的连接数
func (m *DialMetrics) Closed() int64 { return m.closed.Load() }

// Failed 拨号失败次数
func (m *DialMetrics) Failed() int64 { return m.failed.Load() }

// Active 当前打开的连接数
func (m *DialMetrics) Active() int64 { return m.Opened() - m.Closed() }

// GetMetrics 获取指标
func (m *DialMetrics) GetMetrics() map[string]interface{} {
	return map[string]interface{}{
		"connections_opened": m.Opened(),
		"connections_closed": m.Closed(),
		"connections_active": m.Active(),
		"dial_failures":      m.Failed(),
	}
}

// Dialer 记录每一次拨号和关闭的TCP拨号器
// 同时满足 golang.org/x/net/proxy 的 Dialer 与 ContextDialer
type Dialer struct {
	dialer  *net.Dialer
	metrics *DialMetrics
}

// NewDialer 创建拨号器，timeout 为单次拨号上限
func NewDialer(timeout time.Duration, metrics *DialMetrics) *Dialer {
	if metrics == nil {
		metrics = &DialMetrics{}
	}
	return &Dialer{
		dialer: &net.Dialer{
			Timeout:   timeout,
			KeepAlive: -1,
		},
		metrics: metrics,
	}
}

// Metrics 返回拨号器的指标
func (d *Dialer) Metrics() *DialMetrics {
	return d.metrics
}

// Dial 建立连接
func (d *Dialer) Dial(network, addr string) (net.Conn, error) {
	return d.DialContext(context.Background(), network, addr)
}

// DialContext 建立连接并包装以跟踪关闭
func (d *Dialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	conn, err := d.dialer.DialContext(ctx, network, addr)
	if err != nil {
		d.metrics.failed.Add(1)
		return nil, err
	}
	d.metrics.opened.Add(1)
	return &metricConn{Conn: conn, metrics: d.metrics}, nil
}

// metricConn 是对net.Conn的包装，用于跟踪连接指标
type metricConn struct {
	net.Conn
	metrics *DialMetrics
	once    sync.Once
}

// Close 关闭连接并更新指标，重复关闭只计数一次
func (c *metricConn) Close() error {
	c.once.Do(func() {
		c.metrics.closed.Add(1)
	})
	return c.Conn.Close()
}
