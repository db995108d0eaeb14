package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== SlidingWindowLimiter 滑动窗口限流器 ====================

// SlidingWindowLimiter 按任意 token（店铺 ID、店铺+路由等）做滑动窗口计数
// 只限制请求频率，不涉及信用点消耗，二者独立
type SlidingWindowLimiter struct {
	interval   time.Duration // 窗口长度
	maxTokens  int           // 全局唯一 token 上限，保护限流器自身内存
	mu         sync.Mutex
	tokenCache map[string][]time.Time
}

// LimiterOptions 限流器配置
type LimiterOptions struct {
	Interval  time.Duration // 默认 1 分钟
	MaxTokens int           // 默认 500
}

// NewSlidingWindowLimiter 创建滑动窗口限流器
func NewSlidingWindowLimiter(opts LimiterOptions) *SlidingWindowLimiter {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 500
	}
	return &SlidingWindowLimiter{
		interval:   opts.Interval,
		maxTokens:  opts.MaxTokens,
		tokenCache: make(map[string][]time.Time),
	}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool
	Remaining  int           // 窗口内剩余可用次数
	RetryAfter time.Duration // 拒绝时，距最早记录过期还有多久
}

// Check 检查 token 在窗口内是否还允许一次请求
// 每次调用先清理过期记录；缓存中 token 数达到上限时整体拒绝
func (l *SlidingWindowLimiter) Check(token string, limit int) CheckResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	clearBefore := now.Add(-l.interval)

	// 清理整个缓存里过期的记录
	for key, timestamps := range l.tokenCache {
		valid := pruneBefore(timestamps, clearBefore)
		if len(valid) == 0 {
			delete(l.tokenCache, key)
		} else {
			l.tokenCache[key] = valid
		}
	}

	// 缓存容量保护
	if _, ok := l.tokenCache[token]; !ok && len(l.tokenCache) >= l.maxTokens {
		return CheckResult{Allowed: false, RetryAfter: l.interval}
	}

	timestamps := l.tokenCache[token]
	if len(timestamps) >= limit {
		oldest := timestamps[0]
		return CheckResult{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: oldest.Add(l.interval).Sub(now),
		}
	}

	l.tokenCache[token] = append(timestamps, now)
	return CheckResult{
		Allowed:   true,
		Remaining: limit - len(timestamps) - 1,
	}
}

// pruneBefore 返回 cutoff 之后的时间戳，保持有序
func pruneBefore(timestamps []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(timestamps) && !timestamps[idx].After(cutoff) {
		idx++
	}
	return timestamps[idx:]
}

// ==================== Gin 中间件 ====================

// RateLimit 按 shop_id 限流的 gin 中间件
// 拒绝时返回 429 并带 Retry-After 头（秒）
func RateLimit(limiter *SlidingWindowLimiter, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("shop_id")
		if token == "" {
			token = c.ClientIP()
		}

		result := limiter.Check(token, limit)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds() + 0.999)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": "请求过于频繁，请稍后重试",
			})
			return
		}

		c.Next()
	}
}
