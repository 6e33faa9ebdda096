package proxy

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"proxyprobe/models"
	"proxyprobe/pkg/cache"
	"proxyprobe/pkg/connpool"
	"proxyprobe/pkg/constants"
	"proxyprobe/pkg/errors"
	"time"

	"github.com/imroc/req/v3"
	"golang.org/x/net/proxy"
)

// Verifier 对单个候选地址做一次完整的回显往返
// 返回 nil 表示这一次尝试成功
type Verifier interface {
	Family() models.ProtocolFamily
	Verify(ctx context.Context, endpoint string) error
}

// Selector 按协议族选择验证策略
type Selector interface {
	For(family models.ProtocolFamily) (Verifier, bool)
}

// Options 验证器配置
type Options struct {
	Timeout      time.Duration
	EchoHTTP     string
	EchoSocks    string
	UserAgent    string
	Dialer       *connpool.Dialer
	Interpreters []ResponseInterpreter
}

func (o *Options) normalize() {
	if o.Timeout <= 0 {
		o.Timeout = constants.DefaultProbeTimeout
	}
	if o.EchoHTTP == "" {
		o.EchoHTTP = constants.DefaultEchoURLHTTP
	}
	if o.EchoSocks == "" {
		o.EchoSocks = constants.DefaultEchoURLSocks
	}
	if o.UserAgent == "" {
		o.UserAgent = constants.UserAgent
	}
	if o.Dialer == nil {
		o.Dialer = connpool.NewDialer(o.Timeout, nil)
	}
	if len(o.Interpreters) == 0 {
		o.Interpreters = DefaultInterpreters()
	}
}

// newClient 每次尝试使用独立的客户端，保证只建立一条连接且不复用
// 响应体由 fetchEcho 限量读取
func (o *Options) newClient() *req.Client {
	return req.C().
		SetTimeout(o.Timeout).
		SetUserAgent(o.UserAgent).
		DisableKeepAlives().
		DisableAutoReadResponse().
		SetRedirectPolicy(req.NoRedirectPolicy())
}

// fetchEcho 请求回显服务并判断响应
func fetchEcho(ctx context.Context, client *req.Client, target string, interpreters []ResponseInterpreter) error {
	resp, err := client.R().SetContext(ctx).Get(target)
	if resp != nil && resp.Response != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", errors.ErrUnexpectedStatus, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxEchoBodySize+1))
	if err != nil {
		return err
	}
	if len(body) > constants.MaxEchoBodySize {
		return fmt.Errorf("%w: more than %d bytes", errors.ErrUnrecognizedBody, constants.MaxEchoBodySize)
	}
	if _, ok := Interpret(body, interpreters); !ok {
		return errors.ErrUnrecognizedBody
	}
	return nil
}

// HTTPVerifier 把候选地址当作HTTP正向代理
type HTTPVerifier struct {
	opts Options
}

func (v *HTTPVerifier) Family() models.ProtocolFamily { return models.HTTPForward }

func (v *HTTPVerifier) Verify(ctx context.Context, endpoint string) error {
	proxyURL, err := url.Parse("http://" + endpoint)
	if err != nil || proxyURL.Host == "" {
		return fmt.Errorf("%w: %q", errors.ErrMalformedEndpoint, endpoint)
	}
	client := v.opts.newClient().
		SetProxy(http.ProxyURL(proxyURL)).
		SetDial(v.opts.Dialer.DialContext)
	return fetchEcho(ctx, client, v.opts.EchoHTTP, v.opts.Interpreters)
}

// SOCKS5Verifier 通过 SOCKS5 隧道访问回显服务
type SOCKS5Verifier struct {
	opts Options
}

func (v *SOCKS5Verifier) Family() models.ProtocolFamily { return models.Socks5 }

func (v *SOCKS5Verifier) Verify(ctx context.Context, endpoint string) error {
	d, err := proxy.SOCKS5("tcp", endpoint, nil, v.opts.Dialer)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrHandshake, err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return fmt.Errorf("%w: socks5 dialer lacks DialContext", errors.ErrHandshake)
	}
	client := v.opts.newClient().
		SetProxy(nil).
		SetDial(cd.DialContext)
	return fetchEcho(ctx, client, v.opts.EchoSocks, v.opts.Interpreters)
}

// SOCKS4Verifier 通过 SOCKS4 隧道访问回显服务
type SOCKS4Verifier struct {
	opts    Options
	resolve Resolver
}

func (v *SOCKS4Verifier) Family() models.ProtocolFamily { return models.Socks4 }

func (v *SOCKS4Verifier) Verify(ctx context.Context, endpoint string) error {
	d := &socks4Dialer{
		endpoint: endpoint,
		forward:  v.opts.Dialer,
		resolve:  v.resolve,
	}
	client := v.opts.newClient().
		SetProxy(nil).
		SetDial(d.DialContext)
	return fetchEcho(ctx, client, v.opts.EchoSocks, v.opts.Interpreters)
}

// lookupIPFunc 与 net.Resolver.LookupIP 相同的签名
type lookupIPFunc func(ctx context.Context, network, host string) ([]net.IP, error)

// CachedResolver SOCKS4 只能携带IPv4地址，回显主机在本地解析并缓存
func CachedResolver(c *cache.Cache[net.IP]) Resolver {
	return cachedResolver(c, net.DefaultResolver.LookupIP, constants.ResolveTimeout)
}

// cachedResolver 同一主机的并发解析共享一次查询
// 查询不跟随任何调用者的 ctx，只受 timeout 限制，调用者各自按自己的 ctx 放弃等待
func cachedResolver(c *cache.Cache[net.IP], lookup lookupIPFunc, timeout time.Duration) Resolver {
	return func(ctx context.Context, host string) (net.IP, error) {
		if ip := net.ParseIP(host); ip != nil {
			if v4 := ip.To4(); v4 != nil {
				return v4, nil
			}
			return nil, fmt.Errorf("socks4 cannot address IPv6 target %s", host)
		}
		return c.GetOrLoad(ctx, host, func() (net.IP, error) {
			lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
			defer cancel()
			ips, err := lookup(lookupCtx, "ip4", host)
			if err != nil {
				return nil, err
			}
			for _, ip := range ips {
				if v4 := ip.To4(); v4 != nil {
					return v4, nil
				}
			}
			return nil, fmt.Errorf("no IPv4 address for %s", host)
		})
	}
}

// VerifierSet 每个协议族一个验证策略
type VerifierSet struct {
	verifiers map[models.ProtocolFamily]Verifier
	dialer    *connpool.Dialer
	resolved  *cache.Cache[net.IP]
}

// NewVerifierSet 创建三种协议的验证策略
func NewVerifierSet(opts Options) *VerifierSet {
	opts.normalize()
	resolved := cache.NewCache[net.IP](constants.ResolveCacheTTL)

	s := NewStaticSet(
		&HTTPVerifier{opts: opts},
		&SOCKS4Verifier{opts: opts, resolve: CachedResolver(resolved)},
		&SOCKS5Verifier{opts: opts},
	)
	s.dialer = opts.Dialer
	s.resolved = resolved
	return s
}

// NewStaticSet 由给定的验证器组成集合，同一协议族后者覆盖前者
func NewStaticSet(verifiers ...Verifier) *VerifierSet {
	s := &VerifierSet{verifiers: make(map[models.ProtocolFamily]Verifier, len(verifiers))}
	for _, v := range verifiers {
		s.verifiers[v.Family()] = v
	}
	return s
}

// For 按协议族选择验证器
func (s *VerifierSet) For(family models.ProtocolFamily) (Verifier, bool) {
	v, ok := s.verifiers[family]
	return v, ok
}

// GetMetrics 拨号与解析缓存指标
func (s *VerifierSet) GetMetrics() map[string]interface{} {
	metrics := map[string]interface{}{}
	if s.dialer != nil {
		metrics["dial"] = s.dialer.Metrics().GetMetrics()
	}
	if s.resolved != nil {
		metrics["resolve_cache"] = s.resolved.GetMetrics()
	}
	return metrics
}
