package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64
	calculations    uint64
	cacheHits       uint64
	cacheMisses     uint64
	cacheSwept      uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) CalculationDone() {
	atomic.AddUint64(&c.calculations, 1)
}

func (c *Collector) CacheHit() {
	atomic.AddUint64(&c.cacheHits, 1)
}

func (c *Collector) CacheMiss() {
	atomic.AddUint64(&c.cacheMisses, 1)
}

func (c *Collector) CacheSwept(count int) {
	if count > 0 {
		atomic.AddUint64(&c.cacheSwept, uint64(count))
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":     total,
		"errorsTotal":       errs,
		"rateLimitedTotal":  limited,
		"avgDurationMs":     avg,
		"totalDurationMs":   totalMs,
		"calculationsTotal": atomic.LoadUint64(&c.calculations),
		"cacheHitsTotal":    atomic.LoadUint64(&c.cacheHits),
		"cacheMissesTotal":  atomic.LoadUint64(&c.cacheMisses),
		"cacheSweptTotal":   atomic.LoadUint64(&c.cacheSwept),
	}
}
