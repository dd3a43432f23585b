package ratelimit

import (
	"sync"
	"time"

	"github.com/mezonai/cryptocurrency/exception"
)

type RateLimiterConfig struct {
	// MaxRequests per window. Zero or less disables the limiter.
	MaxRequests     int
	WindowSize      time.Duration
	CleanupInterval time.Duration
}

func DefaultConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		MaxRequests:     100,
		WindowSize:      time.Second,
		CleanupInterval: 5 * time.Minute,
	}
}

type window struct {
	count int
	start time.Time
}

// RateLimiter is a fixed-window counter per key.
type RateLimiter struct {
	config   RateLimiterConfig
	mu       sync.Mutex
	windows  map[string]*window
	now      func() time.Time
	stopOnce sync.Once
	stop     chan struct{}
}

func NewRateLimiter(config *RateLimiterConfig) *RateLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	rl := &RateLimiter{
		config:  *config,
		windows: make(map[string]*window),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if rl.Enabled() && config.CleanupInterval > 0 {
		exception.SafeGo("RateLimiterCleanup", rl.cleanupLoop)
	}
	return rl
}

func (rl *RateLimiter) Enabled() bool {
	return rl != nil && rl.config.MaxRequests > 0 && rl.config.WindowSize > 0
}

// Allow counts one request for key and reports whether it fits the window.
func (rl *RateLimiter) Allow(key string) bool {
	if !rl.Enabled() {
		return true
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok {
		w = &window{start: now}
		rl.windows[key] = w
	}
	if now.Sub(w.start) >= rl.config.WindowSize {
		w.count = 0
		w.start = now
	}
	if w.count >= rl.config.MaxRequests {
		return false
	}
	w.count++
	return true
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	cutoff := rl.now().Add(-rl.config.WindowSize)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, w := range rl.windows {
		if w.start.Before(cutoff) {
			delete(rl.windows, key)
		}
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.windows)
}

func (rl *RateLimiter) Stop() {
	if rl == nil {
		return
	}
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// GlobalRateLimiter limits requests per client IP and operations per author wallet.
type GlobalRateLimiter struct {
	ipLimiter     *RateLimiter
	walletLimiter *RateLimiter
}

type GlobalRateLimiterConfig struct {
	IPConfig     *RateLimiterConfig
	WalletConfig *RateLimiterConfig
}

func DefaultGlobalConfig() *GlobalRateLimiterConfig {
	return &GlobalRateLimiterConfig{
		IPConfig:     DefaultConfig(),
		WalletConfig: DefaultConfig(),
	}
}

func NewGlobalRateLimiter(config *GlobalRateLimiterConfig) *GlobalRateLimiter {
	if config == nil {
		config = DefaultGlobalConfig()
	}
	return &GlobalRateLimiter{
		ipLimiter:     NewRateLimiter(config.IPConfig),
		walletLimiter: NewRateLimiter(config.WalletConfig),
	}
}

// AllowIP is nil-receiver safe; a nil limiter allows everything.
func (grl *GlobalRateLimiter) AllowIP(ip string) bool {
	if grl == nil {
		return true
	}
	return grl.ipLimiter.Allow(ip)
}

func (grl *GlobalRateLimiter) AllowWallet(wallet string) bool {
	if grl == nil {
		return true
	}
	return grl.walletLimiter.Allow(wallet)
}

func (grl *GlobalRateLimiter) Stop() {
	if grl == nil {
		return
	}
	grl.ipLimiter.Stop()
	grl.walletLimiter.Stop()
}
