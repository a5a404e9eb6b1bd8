package webcache

import (
	"context"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/IsaacDSC/kvcache/internal/webcache"

type metrics struct {
	hits        metric.Int64Counter
	misses      metric.Int64Counter
	fetchErrors metric.Int64Counter
}

func defaultMeter() metric.Meter {
	return otel.Meter(meterName)
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	hits, err := meter.Int64Counter("webcache.hits",
		metric.WithDescription("Page requests served from the cache"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("create hits counter: %w", err)
	}

	misses, err := meter.Int64Counter("webcache.misses",
		metric.WithDescription("Page requests that required a fetch"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("create misses counter: %w", err)
	}

	fetchErrors, err := meter.Int64Counter("webcache.fetch.errors",
		metric.WithDescription("Page fetches that failed"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("create fetch errors counter: %w", err)
	}

	return &metrics{hits: hits, misses: misses, fetchErrors: fetchErrors}, nil
}

func hostAttr(rawURL string) metric.AddOption {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	return metric.WithAttributes(attribute.String("host", host))
}

func (m *metrics) hit(ctx context.Context, rawURL string) {
	m.hits.Add(ctx, 1, hostAttr(rawURL))
}

func (m *metrics) miss(ctx context.Context, rawURL string) {
	m.misses.Add(ctx, 1, hostAttr(rawURL))
}

func (m *metrics) fetchError(ctx context.Context, rawURL string) {
	m.fetchErrors.Add(ctx, 1, hostAttr(rawURL))
}
