package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"proxyprobe/log"
	"proxyprobe/models"
	"proxyprobe/pkg/constants"
	"proxyprobe/pkg/errors"
	"proxyprobe/pkg/manager"
	"proxyprobe/pkg/ratelimit"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

// Report 单个来源的抓取结果
type Report struct {
	Spec  Spec  `json:"spec"`
	Count int   `json:"count"`
	Err   error `json:"-"`
}

// Options 抓取配置
type Options struct {
	Timeout     time.Duration
	Concurrency int
	Limiter     ratelimit.Limiter
	Agents      *manager.AgentRotator
}

// Fetcher 并发抓取代理列表
type Fetcher struct {
	client      *resty.Client
	concurrency int
	limiter     ratelimit.Limiter
	agents      *manager.AgentRotator

	mu      sync.RWMutex
	reports []Report
}

// NewFetcher 创建抓取器
func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = constants.DefaultSourceTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = constants.DefaultSourceConcurrency
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.NewTokenBucketLimiter(constants.DefaultSourceRate, constants.DefaultSourceBurst)
	}
	if opts.Agents == nil {
		opts.Agents = manager.NewAgentRotator(nil)
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "text/plain, text/html, */*")

	return &Fetcher{
		client:      client,
		concurrency: opts.Concurrency,
		limiter:     opts.Limiter,
		agents:      opts.Agents,
	}
}

// Fetch 抓取全部来源，单个来源失败只影响它自己
// 返回按协议族顺序、再按地址排序的去重结果
func (f *Fetcher) Fetch(ctx context.Context, specs []Spec) ([]models.Candidate, []Report) {
	reports := make([]Report, len(specs))
	found := make([][]string, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, spec := range specs {
		g.Go(func() error {
			endpoints, err := f.fetchOne(gctx, spec)
			reports[i] = Report{Spec: spec, Count: len(endpoints), Err: err}
			if err != nil {
				log.Warn("Source %s failed: %v", spec.URL, err)
				return nil
			}
			found[i] = endpoints
			return nil
		})
	}
	_ = g.Wait()

	sets := make(map[models.ProtocolFamily]map[string]struct{})
	for i, spec := range specs {
		set, ok := sets[spec.Family]
		if !ok {
			set = make(map[string]struct{})
			sets[spec.Family] = set
		}
		for _, e := range found[i] {
			set[e] = struct{}{}
		}
	}

	var candidates []models.Candidate
	for _, family := range models.Families() {
		endpoints := make([]string, 0, len(sets[family]))
		for e := range sets[family] {
			endpoints = append(endpoints, e)
		}
		sort.Strings(endpoints)
		for _, e := range endpoints {
			candidates = append(candidates, models.Candidate{Family: family, Endpoint: e})
		}
	}

	f.mu.Lock()
	f.reports = reports
	f.mu.Unlock()

	return candidates, reports
}

// fetchOne 抓取单个来源
func (f *Fetcher) fetchOne(ctx context.Context, spec Spec) ([]string, error) {
	if path, ok := localPath(spec.URL); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrSourceUnavailable, err)
		}
		return Extract(string(data)), nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", f.agents.Next()).
		Get(spec.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrSourceUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", errors.ErrSourceUnavailable, resp.StatusCode())
	}
	return Extract(resp.String()), nil
}

// localPath file:// 地址和不带协议的路径从本地读取
func localPath(raw string) (string, bool) {
	if strings.HasPrefix(raw, "file://") {
		u, err := url.Parse(raw)
		if err != nil {
			return strings.TrimPrefix(raw, "file://"), true
		}
		return u.Path, true
	}
	if !strings.Contains(raw, "://") {
		return raw, true
	}
	return "", false
}

// GetMetrics 最近一次抓取的来源统计
func (f *Fetcher) GetMetrics() map[string]interface{} {
	f.mu.RLock()
	defer f.mu.RUnlock()

	failed := 0
	total := 0
	for _, r := range f.reports {
		if r.Err != nil {
			failed++
		}
		total += r.Count
	}
	return map[string]interface{}{
		"sources":     len(f.reports),
		"failed":      failed,
		"endpoints":   total,
		"rate_limit":  f.limiter.GetMetrics(),
		"user_agents": f.agents.Count(),
	}
}

// ListSource 固定来源列表的候选集
type ListSource struct {
	fetcher *Fetcher
	specs   []Spec
}

// NewListSource 创建候选来源
func NewListSource(fetcher *Fetcher, specs []Spec) *ListSource {
	return &ListSource{fetcher: fetcher, specs: specs}
}

// Candidates 实现 service.CandidateSource
func (s *ListSource) Candidates(ctx context.Context) []models.Candidate {
	log.Info("[+] Scraping %d sources...", len(s.specs))
	candidates, _ := s.fetcher.Fetch(ctx, s.specs)

	counts := make(map[models.ProtocolFamily]int)
	for _, c := range candidates {
		counts[c.Family]++
	}
	log.Info("[✓] Scraped %d HTTP | %d SOCKS4 | %d SOCKS5 proxies",
		counts[models.HTTPForward], counts[models.Socks4], counts[models.Socks5])
	return candidates
}
