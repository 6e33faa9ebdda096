package ratelimit

import (
	"context"
	"proxyprobe/log"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter 请求限制器接口
type Limiter interface {
	// Wait 阻塞直到允许请求或上下文取消
	Wait(ctx context.Context) error

	// GetMetrics 获取指标
	GetMetrics() map[string]interface{}
}

// TokenBucketLimiter 令牌桶限制器，rate <= 0 时不限速
type TokenBucketLimiter struct {
	rate     float64   // 每秒生成的令牌数
	burst    int       // 桶容量
	tokens   float64   // 当前令牌数
	lastTime time.Time // 上次更新时间
	mu       sync.Mutex

	waitCount    int64
	delayedCount int64
	waitedNanos  int64
}

// NewTokenBucketLimiter 创建令牌桶限制器
func NewTokenBucketLimiter(rate float64, burst int) *TokenBucketLimiter {
	if burst < 1 {
		burst = 1
	}
	if rate > 0 {
		log.Debug("Source rate limiter: %.2f requests/second, burst: %d", rate, burst)
	}
	return &TokenBucketLimiter{
		rate:     rate,
		burst:    burst,
		tokens:   float64(burst),
		lastTime: time.Now(),
	}
}

// reserve 取走一个令牌，返回需要等待的时间
func (l *TokenBucketLimiter) reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(l.lastTime).Seconds()
	l.lastTime = now

	// 添加新令牌（最多不超过桶容量）
	l.tokens += elapsed * l.rate
	if l.tokens > float64(l.burst) {
		l.tokens = float64(l.burst)
	}

	l.tokens--
	if l.tokens >= 0 {
		return 0
	}
	return time.Duration(-l.tokens / l.rate * float64(time.Second))
}

// Wait 阻塞直到允许请求或上下文取消
func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	atomic.AddInt64(&l.waitCount, 1)
	if l.rate <= 0 {
		return ctx.Err()
	}

	delay := l.reserve()
	if delay <= 0 {
		return ctx.Err()
	}

	atomic.AddInt64(&l.delayedCount, 1)
	atomic.AddInt64(&l.waitedNanos, int64(delay))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsEnabled 检查限制器是否启用
func (l *TokenBucketLimiter) IsEnabled() bool {
	return l.rate > 0
}

// GetMetrics 获取指标
func (l *TokenBucketLimiter) GetMetrics() map[string]interface{} {
	return map[string]interface{}{
		"enabled":        l.IsEnabled(),
		"rate":           l.rate,
		"burst":          l.burst,
		"wait_count":     atomic.LoadInt64(&l.waitCount),
		"delayed_count":  atomic.LoadInt64(&l.delayedCount),
		"waited_seconds": time.Duration(atomic.LoadInt64(&l.waitedNanos)).Seconds(),
	}
}
