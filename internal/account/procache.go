package account

import (
	"sync"
	"time"

	"focusguard/internal/logger"
)

// DefaultProTTL bounds how often the remote subscription check runs.
const DefaultProTTL = 5 * time.Minute

// proSource is the slice of Client the cache needs.
type proSource interface {
	IsAuthenticated() bool
	CheckProStatus() (bool, error)
}

// ProCache is an explicit cached subscription status: the value, when it was
// fetched, and how long it stays fresh. Remote failures keep the last known
// value.
type ProCache struct {
	mu        sync.Mutex
	src       proSource
	value     bool
	known     bool
	fetchedAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

func NewProCache(src proSource, ttl time.Duration) *ProCache {
	if ttl <= 0 {
		ttl = DefaultProTTL
	}
	return &ProCache{src: src, ttl: ttl, now: time.Now}
}

// WithClock overrides the cache clock.
func (p *ProCache) WithClock(now func() time.Time) *ProCache {
	p.now = now
	return p
}

// Status returns the current tier, consulting the remote service only when
// the cached value is stale or force is set. Signed-out sessions are always
// free tier.
func (p *ProCache) Status(force bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !force && p.known && p.now().Sub(p.fetchedAt) < p.ttl {
		return p.value
	}
	if p.src == nil || !p.src.IsAuthenticated() {
		p.value = false
		p.known = true
		p.fetchedAt = p.now()
		return false
	}
	v, err := p.src.CheckProStatus()
	if err != nil {
		logger.Warnf("Pro status check failed, keeping cached value: %v", err)
		return p.value
	}
	p.value = v
	p.known = true
	p.fetchedAt = p.now()
	return v
}

// Invalidate drops the cached value so the next Status call hits the remote
// service. Used after sign-in/out and subscription changes.
func (p *ProCache) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.known = false
}
