package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// item 表示缓存项
type item[V any] struct {
	value      V
	expiration int64
}

// 检查缓存项是否过期
func (it item[V]) expired(now int64) bool {
	return it.expiration > 0 && now > it.expiration
}

// Cache 表示一个带过期时间的内存缓存
// 并发调用 GetOrLoad 时同一个键只会加载一次
type Cache[V any] struct {
	items             map[string]item[V]
	mu                sync.RWMutex
	defaultExpiration time.Duration
	group             singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache 创建一个新的缓存实例
// defaultExpiration <= 0 表示缓存项永不过期
func NewCache[V any](defaultExpiration time.Duration) *Cache[V] {
	return &Cache[V]{
		items:             make(map[string]item[V]),
		defaultExpiration: defaultExpiration,
	}
}

// Set 添加一个缓存项，使用默认过期时间
func (c *Cache[V]) Set(key string, value V) {
	var expiration int64
	if c.defaultExpiration > 0 {
		expiration = time.Now().Add(c.defaultExpiration).UnixNano()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item[V]{value: value, expiration: expiration}
}

// Get 获取缓存项，如果项存在且未过期则返回true
func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.lookup(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// lookup 与 Get 相同但不计入命中统计
func (c *Cache[V]) lookup(key string) (V, bool) {
	c.mu.RLock()
	it, found := c.items[key]
	c.mu.RUnlock()

	if !found || it.expired(time.Now().UnixNano()) {
		var zero V
		return zero, false
	}
	return it.value, true
}

// GetOrLoad 命中则直接返回，否则调用 load 并缓存成功的结果
// 同一个键的并发调用共享一次 load，每个调用者只按自己的 ctx 等待
// load 不应使用调用者的 ctx
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return v, err
		}
		c.DeleteExpired()
		c.Set(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// DeleteExpired 删除所有过期的项
func (c *Cache[V]) DeleteExpired() {
	now := time.Now().UnixNano()

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range c.items {
		if v.expired(now) {
			delete(c.items, k)
		}
	}
}

// Count 返回缓存中的项数
func (c *Cache[V]) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// GetMetrics 获取缓存指标
func (c *Cache[V]) GetMetrics() map[string]interface{} {
	hits := c.hits.Load()
	misses := c.misses.Load()
	hitRate := float64(0)
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"hits":     hits,
		"misses":   misses,
		"size":     c.Count(),
		"hit_rate": hitRate,
	}
}
