// Package webcache caches fetched page bodies in the store for a short
// time and counts every access per URL.
//
// Keys: "cache:<url>" holds the body and expires after the TTL,
// "count:<url>" holds the access count and never expires.
package webcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/IsaacDSC/kvcache/internal/kvstore"
	"github.com/IsaacDSC/kvcache/pkg/ctxlogger"
	"go.opentelemetry.io/otel/metric"
)

const (
	DefaultTTL = 10 * time.Second
	// MinTTL is the shortest expiry the store can hold; Redis counts SETEX
	// in whole seconds.
	MinTTL = time.Second
)

var ErrInvalidTTL = errors.New("page ttl must be at least one second")

func CacheKey(url string) string {
	return "cache:" + url
}

func CountKey(url string) string {
	return "count:" + url
}

type PageCache struct {
	store   kvstore.Store
	fetcher Fetcher
	ttl     time.Duration
	meter   metric.Meter
	metrics *metrics
}

type Option func(*PageCache)

// WithTTL sets the expiry used by Get. Values below MinTTL are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(p *PageCache) {
		if ttl >= MinTTL {
			p.ttl = ttl
		}
	}
}

func WithMeter(meter metric.Meter) Option {
	return func(p *PageCache) {
		if meter != nil {
			p.meter = meter
		}
	}
}

func New(store kvstore.Store, fetcher Fetcher, opts ...Option) (*PageCache, error) {
	p := &PageCache{
		store:   store,
		fetcher: fetcher,
		ttl:     DefaultTTL,
		meter:   defaultMeter(),
	}

	for _, opt := range opts {
		opt(p)
	}

	m, err := newMetrics(p.meter)
	if err != nil {
		return nil, err
	}
	p.metrics = m

	return p, nil
}

// Get returns the page at url using the configured TTL.
func (p *PageCache) Get(ctx context.Context, url string) (string, error) {
	return p.GetWithTTL(ctx, url, p.ttl)
}

// GetWithTTL returns the cached body of url, fetching and caching it for
// ttl on a miss. The access count grows on hits and misses alike; a failed
// fetch is neither cached nor counted. A ttl below MinTTL is rejected with
// ErrInvalidTTL before the store or the network is touched.
func (p *PageCache) GetWithTTL(ctx context.Context, url string, ttl time.Duration) (string, error) {
	if ttl < MinTTL {
		return "", fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}

	logger := ctxlogger.GetLogger(ctx)

	cached, err := p.store.Get(ctx, CacheKey(url))
	if err == nil {
		n, err := p.store.Incr(ctx, CountKey(url))
		if err != nil {
			return "", fmt.Errorf("error counting access to %s: %w", url, err)
		}

		p.metrics.hit(ctx, url)
		logger.Debug("page cache hit", "url", url, "count", n)
		return string(cached), nil
	}
	if !errors.Is(err, kvstore.ErrNotFound) {
		return "", fmt.Errorf("error reading cached page %s: %w", url, err)
	}

	body, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		p.metrics.fetchError(ctx, url)
		return "", fmt.Errorf("error fetching %s: %w", url, err)
	}

	if err := p.store.SetEx(ctx, CacheKey(url), []byte(body), ttl); err != nil {
		return "", fmt.Errorf("error caching page %s: %w", url, err)
	}

	n, err := p.store.Incr(ctx, CountKey(url))
	if err != nil {
		return "", fmt.Errorf("error counting access to %s: %w", url, err)
	}

	p.metrics.miss(ctx, url)
	logger.Debug("page cache miss", "url", url, "count", n, "ttl", ttl, "size", len(body))

	return body, nil
}

// AccessCount returns how many times url has been requested, 0 if never.
func (p *PageCache) AccessCount(ctx context.Context, url string) (int64, error) {
	b, err := p.store.Get(ctx, CountKey(url))
	if errors.Is(err, kvstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error reading access count of %s: %w", url, err)
	}

	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing access count of %s: %w", url, err)
	}
	return n, nil
}
