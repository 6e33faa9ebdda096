package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"proxyprobe/log"
	"proxyprobe/models"
	"proxyprobe/pkg/constants"
	"proxyprobe/pkg/errors"
	"proxyprobe/proxy"

	"golang.org/x/sync/semaphore"
)

// ProberOptions 验证器配置
type ProberOptions struct {
	Concurrency int           // 同时进行中的候选项上限
	Timeout     time.Duration // 单次尝试的时间上限
	Retries     int           // 失败后的额外尝试次数
	Policy      proxy.EndpointPolicy
	Observers   []Observer
}

func (o *ProberOptions) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = constants.DefaultConcurrency
	}
	if o.Timeout <= 0 {
		o.Timeout = constants.DefaultProbeTimeout
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.Policy == nil {
		o.Policy = proxy.StrictEndpoint
	}
}

// Prober 有界并发的批量验证器
type Prober struct {
	verifiers proxy.Selector
	opts      ProberOptions

	mu        sync.RWMutex
	observers []Observer

	inFlight atomic.Int64
}

// NewProber 创建验证器
func NewProber(verifiers proxy.Selector, opts ProberOptions) *Prober {
	opts.normalize()
	p := &Prober{
		verifiers: verifiers,
		opts:      opts,
	}
	p.observers = append(p.observers, opts.Observers...)
	return p
}

// Subscribe 追加观察者，对之后开始的批次生效
func (p *Prober) Subscribe(o Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, o)
}

// InFlight 当前占用并发名额的候选项数
func (p *Prober) InFlight() int64 {
	return p.inFlight.Load()
}

// MaxAttempts 每个候选项最多的尝试次数
func (p *Prober) MaxAttempts() int {
	return 1 + p.opts.Retries
}

// RunFamily 验证单个协议族，其他协议族的候选项被忽略
func (p *Prober) RunFamily(ctx context.Context, family models.ProtocolFamily, candidates []models.Candidate) models.BatchResult {
	filtered := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Family == family {
			filtered = append(filtered, c)
		}
	}
	results := p.Run(ctx, filtered)
	if r, ok := results[family]; ok {
		return r
	}
	return models.BatchResult{Family: family, Live: []string{}}
}

// Run 验证一批候选项，返回每个出现过的协议族的结果
// ctx 取消后不再派发新的候选项，进行中的尝试以 dead 结束，未派发的候选项不出现在结果中
func (p *Prober) Run(ctx context.Context, candidates []models.Candidate) map[models.ProtocolFamily]models.BatchResult {
	start := time.Now()

	p.mu.RLock()
	observers := append([]Observer(nil), p.observers...)
	p.mu.RUnlock()

	settled := make(chan models.ProbeOutcome, p.opts.Concurrency)
	collected := make(chan map[models.ProtocolFamily]*accumulator, 1)
	go func() {
		collected <- collect(settled, observers)
	}()

	sem := semaphore.NewWeighted(int64(p.opts.Concurrency))
	var wg sync.WaitGroup

dispatch:
	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}

		if err := p.opts.Policy(c.Endpoint); err != nil {
			settled <- models.ProbeOutcome{Candidate: c, Reason: err.Error()}
			continue
		}
		v, ok := p.verifiers.For(c.Family)
		if !ok {
			settled <- models.ProbeOutcome{
				Candidate: c,
				Reason:    fmt.Sprintf("%v: %s", errors.ErrNoVerifier, c.Family),
			}
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			break dispatch
		}
		wg.Add(1)
		p.inFlight.Add(1)
		go func(c models.Candidate, v proxy.Verifier) {
			defer wg.Done()
			defer sem.Release(1)
			defer p.inFlight.Add(-1)
			settled <- p.probe(ctx, c, v)
		}(c, v)
	}

	wg.Wait()
	close(settled)
	accs := <-collected

	elapsed := time.Since(start)
	results := make(map[models.ProtocolFamily]models.BatchResult, len(accs))
	for family, acc := range accs {
		r := acc.result(family)
		r.Elapsed = elapsed
		results[family] = r
	}
	return results
}

// probe 对单个候选项执行完整的尝试序列
func (p *Prober) probe(ctx context.Context, c models.Candidate, v proxy.Verifier) models.ProbeOutcome {
	tracker := newAttemptTracker(p.MaxAttempts())
	for !tracker.done() {
		if err := ctx.Err(); err != nil {
			tracker.abort(err)
			break
		}
		if err := tracker.begin(); err != nil {
			tracker.abort(err)
			break
		}
		err := p.attempt(ctx, v, c.Endpoint)
		tracker.settle(err)
		if err != nil {
			log.Debug("Attempt %d/%d for %s failed: %v", tracker.attempts, tracker.budget, c, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			tracker.abort(ctxErr)
		}
	}

	outcome := models.ProbeOutcome{
		Candidate: c,
		Live:      tracker.state == stateLive,
		Attempts:  tracker.attempts,
	}
	if !outcome.Live && tracker.lastErr != nil {
		outcome.Reason = tracker.lastErr.Error()
	}
	return outcome
}

// attempt 单次尝试，到达超时后立即返回，不等待验证器自行退出
func (p *Prober) attempt(ctx context.Context, v proxy.Verifier, endpoint string) error {
	attemptCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	// 带缓冲，迟到的结果不会阻塞验证器协程
	result := make(chan error, 1)
	go func() {
		result <- v.Verify(attemptCtx, endpoint)
	}()

	select {
	case err := <-result:
		return err
	case <-attemptCtx.Done():
		if err := ctx.Err(); err != nil {
			return err
		}
		return fmt.Errorf("%w after %s", errors.ErrAttemptTimeout, p.opts.Timeout)
	}
}

// accumulator 单个协议族的汇总
type accumulator struct {
	live      map[string]struct{}
	attempted int
	malformed int
}

func (a *accumulator) result(family models.ProtocolFamily) models.BatchResult {
	live := make([]string, 0, len(a.live))
	for endpoint := range a.live {
		live = append(live, endpoint)
	}
	sort.Strings(live)
	return models.BatchResult{
		Family:    family,
		Live:      live,
		Attempted: a.attempted,
		LiveCount: len(live),
		Malformed: a.malformed,
	}
}

// collect 唯一的结果汇总协程，按到达顺序通知观察者
func collect(settled <-chan models.ProbeOutcome, observers []Observer) map[models.ProtocolFamily]*accumulator {
	accs := make(map[models.ProtocolFamily]*accumulator)
	for outcome := range settled {
		acc, ok := accs[outcome.Candidate.Family]
		if !ok {
			acc = &accumulator{live: make(map[string]struct{})}
			accs[outcome.Candidate.Family] = acc
		}
		acc.attempted++
		if outcome.Attempts == 0 {
			acc.malformed++
		}
		if outcome.Live {
			acc.live[outcome.Candidate.Endpoint] = struct{}{}
		}
		for _, o := range observers {
			o.Observe(outcome)
		}
	}
	return accs
}
