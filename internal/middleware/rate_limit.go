package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ==================== KeyedLimiter 令牌桶限流 ====================

// limiterIdleTTL 令牌桶闲置超过该时间即回收
const limiterIdleTTL = 10 * time.Minute

// KeyedLimiter 按 key (客户端 IP) 维护独立的令牌桶
type KeyedLimiter struct {
	limiters  sync.Map // key -> *limiterEntry
	rps       rate.Limit
	burst     int
	idle      time.Duration
	lastSweep atomic.Int64
	now       func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// NewKeyedLimiter 创建限流器
func NewKeyedLimiter(rps float64, burst int) *KeyedLimiter {
	if burst <= 0 {
		burst = 1
	}
	// 闲置时间不短于令牌桶回满所需时间, 回收后重新创建的桶与原桶等价
	idle := limiterIdleTTL
	if rps > 0 {
		if fill := time.Duration(float64(burst) / rps * float64(time.Second)); fill > idle {
			idle = fill
		}
	}
	l := &KeyedLimiter{rps: rate.Limit(rps), burst: burst, idle: idle, now: time.Now}
	l.lastSweep.Store(l.now().UnixNano())
	return l
}

// Allow 是否放行
func (l *KeyedLimiter) Allow(key string) bool {
	now := l.now()
	l.maybeSweep(now)

	v, ok := l.limiters.Load(key)
	if !ok {
		v, _ = l.limiters.LoadOrStore(key, &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)})
	}
	entry := v.(*limiterEntry)
	entry.lastSeen.Store(now.UnixNano())
	return entry.limiter.AllowN(now, 1)
}

// Len 当前维护的令牌桶数量
func (l *KeyedLimiter) Len() int {
	n := 0
	l.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// maybeSweep 每个闲置周期最多扫描一次, 回收闲置的令牌桶
func (l *KeyedLimiter) maybeSweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(l.idle) {
		return
	}
	if !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	cutoff := now.Add(-l.idle).UnixNano()
	l.limiters.Range(func(key, v any) bool {
		if v.(*limiterEntry).lastSeen.Load() < cutoff {
			l.limiters.Delete(key)
		}
		return true
	})
}

// RateLimit 按客户端 IP 限流中间件, 用于登录/注册等匿名接口
func RateLimit(limiter *KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"reason":  "rate_limited",
				"message": "请求过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ==================== Cooldown 冷却限流 ====================

// Cooldown 同一 key 在冷却间隔内只允许执行一次
type Cooldown struct {
	locks sync.Map // key -> *cooldownEntry
}

type cooldownEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查并占用本次执行机会
func (r *Cooldown) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &cooldownEntry{})
	entry := actual.(*cooldownEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)
	if elapsed < interval {
		return CheckResult{Allowed: false, RetryAfter: interval - elapsed}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 清除冷却 (导入失败时允许立即重试)
func (r *Cooldown) Reset(key string) {
	r.locks.Delete(key)
}

// UserCooldown 按当前用户限制某个操作的触发频率, 需放在 JWTAuth 之后
// 请求失败 (状态码 >= 400) 时释放冷却
func UserCooldown(cd *Cooldown, action string, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("user:%d:%s", GetUserID(c), action)

		result := cd.Check(key, interval)
		if !result.Allowed {
			retry := int(result.RetryAfter.Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"reason":  "rate_limited",
				"message": fmt.Sprintf("操作过于频繁，请 %d 秒后重试", retry),
			})
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			cd.Reset(key)
		}
	}
}
