package service

import (
	"sync"
	"time"

	"proxyprobe/log"
	"proxyprobe/models"
	"proxyprobe/pkg/constants"
)

// Reporter 按固定间隔输出验证进度
type Reporter struct {
	every int
	logf  func(format string, args ...interface{})

	mu      sync.RWMutex
	family  models.ProtocolFamily
	total   int
	settled int
	live    int
	start   time.Time
}

// NewReporter 每 every 个结果输出一次进度，最后一个结果总会输出
func NewReporter(every int) *Reporter {
	if every <= 0 {
		every = constants.DefaultProgressEvery
	}
	return &Reporter{every: every, logf: log.Info}
}

// Begin 开始一个新的批次
func (r *Reporter) Begin(family models.ProtocolFamily, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.family = family
	r.total = total
	r.settled = 0
	r.live = 0
	r.start = time.Now()
}

// Observe 实现 Observer
func (r *Reporter) Observe(outcome models.ProbeOutcome) {
	r.mu.Lock()
	r.settled++
	if outcome.Live {
		r.live++
	}
	settled, total, live := r.settled, r.total, r.live
	elapsed := time.Since(r.start)
	r.mu.Unlock()

	if settled%r.every == 0 || settled == total {
		r.logf("  Checked %d/%d | Live: %d | %.1fs", settled, total, live, elapsed.Seconds())
	}
}

// Snapshot 当前批次的进度
func (r *Reporter) Snapshot() models.ProgressSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var elapsed time.Duration
	if !r.start.IsZero() {
		elapsed = time.Since(r.start)
	}
	return models.ProgressSnapshot{
		Family:  r.family,
		Total:   r.total,
		Settled: r.settled,
		Live:    r.live,
		Elapsed: elapsed,
	}
}
