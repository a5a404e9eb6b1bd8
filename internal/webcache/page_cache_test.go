package webcache

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IsaacDSC/kvcache/internal/kvstore"
	"github.com/IsaacDSC/kvcache/internal/kvstore/kvstoretest"
	"github.com/IsaacDSC/kvcache/mocks/mockkvstore"
	"github.com/IsaacDSC/kvcache/mocks/mockwebcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/mock/gomock"
)

func newPageServer(t *testing.T, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "cache:http://x", CacheKey("http://x"))
	assert.Equal(t, "count:http://x", CountKey("http://x"))
}

func TestPageCache_Get(t *testing.T) {
	ctx := context.Background()
	server, fetches := newPageServer(t, "<html>hello</html>")

	store, mr := kvstoretest.NewRedis(t)

	pages, err := New(store, NewHTTPFetcher(nil))
	require.NoError(t, err)

	body, err := pages.Get(ctx, server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>hello</html>", body)
	assert.Equal(t, int32(1), fetches.Load())
	assertCount(t, pages, server.URL, 1)

	mr.FastForward(5 * time.Second)
	body, err = pages.Get(ctx, server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>hello</html>", body)
	assert.Equal(t, int32(1), fetches.Load(), "a hit must not fetch")
	assertCount(t, pages, server.URL, 2)

	mr.FastForward(5 * time.Second)
	_, err = pages.Get(ctx, server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetches.Load(), "an expired entry must be fetched again")
	assertCount(t, pages, server.URL, 3)
	assert.Equal(t, DefaultTTL, mr.TTL(CacheKey(server.URL)))
	assert.Zero(t, mr.TTL(CountKey(server.URL)), "the access count never expires")
}

func TestPageCache_GetWithTTL(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mockkvstore.NewMockStore(ctrl)
	fetcher := mockwebcache.NewMockFetcher(ctrl)

	gomock.InOrder(
		store.EXPECT().Get(gomock.Any(), "cache:http://x").Return(nil, kvstore.ErrNotFound),
		fetcher.EXPECT().Fetch(gomock.Any(), "http://x").Return("page", nil),
		store.EXPECT().SetEx(gomock.Any(), "cache:http://x", []byte("page"), time.Minute).Return(nil),
		store.EXPECT().Incr(gomock.Any(), "count:http://x").Return(int64(1), nil),
	)

	pages, err := New(store, fetcher, WithTTL(time.Second))
	require.NoError(t, err)

	body, err := pages.GetWithTTL(ctx, "http://x", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "page", body)
}

func TestPageCache_InvalidTTL(t *testing.T) {
	ctx := context.Background()

	for _, ttl := range []time.Duration{-time.Second, 0, 500 * time.Millisecond} {
		t.Run(ttl.String(), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			pages, err := New(mockkvstore.NewMockStore(ctrl), mockwebcache.NewMockFetcher(ctrl))
			require.NoError(t, err)

			_, err = pages.GetWithTTL(ctx, "http://x", ttl)
			assert.ErrorIs(t, err, ErrInvalidTTL)
		})
	}

	t.Run("option below one second keeps the default", func(t *testing.T) {
		store, mr := kvstoretest.NewRedis(t)
		server, _ := newPageServer(t, "body")

		pages, err := New(store, NewHTTPFetcher(server.Client()), WithTTL(200*time.Millisecond))
		require.NoError(t, err)

		_, err = pages.Get(ctx, server.URL)
		require.NoError(t, err)
		assert.Equal(t, DefaultTTL, mr.TTL(CacheKey(server.URL)))
	})
}

func TestPageCache_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("fetch error is not cached nor counted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fetcher := mockwebcache.NewMockFetcher(ctrl)
		fetcher.EXPECT().Fetch(gomock.Any(), "http://x").Return("", errors.New("no such host"))

		store, _ := kvstoretest.NewRedis(t)
		pages, err := New(store, fetcher)
		require.NoError(t, err)

		_, err = pages.Get(ctx, "http://x")
		assert.ErrorContains(t, err, "no such host")

		_, err = store.Get(ctx, CacheKey("http://x"))
		assert.ErrorIs(t, err, kvstore.ErrNotFound)
		assertCount(t, pages, "http://x", 0)
	})

	t.Run("store read error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mockkvstore.NewMockStore(ctrl)
		store.EXPECT().Get(gomock.Any(), "cache:http://x").Return(nil, errors.New("connection refused"))

		pages, err := New(store, mockwebcache.NewMockFetcher(ctrl))
		require.NoError(t, err)

		_, err = pages.Get(ctx, "http://x")
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("counter error on hit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mockkvstore.NewMockStore(ctrl)
		store.EXPECT().Get(gomock.Any(), "cache:http://x").Return([]byte("page"), nil)
		store.EXPECT().Incr(gomock.Any(), "count:http://x").Return(int64(0), errors.New("READONLY"))

		pages, err := New(store, mockwebcache.NewMockFetcher(ctrl))
		require.NoError(t, err)

		_, err = pages.Get(ctx, "http://x")
		assert.ErrorContains(t, err, "READONLY")
	})
}

func TestHTTPFetcher_Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewHTTPFetcher(server.Client()).Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestHTTPFetcher_BadURL(t *testing.T) {
	_, err := NewHTTPFetcher(nil).Fetch(context.Background(), "://nope")
	assert.Error(t, err)
}

func TestPageCache_Metrics(t *testing.T) {
	ctx := context.Background()
	server, _ := newPageServer(t, "body")

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(ctx)

	store, _ := kvstoretest.NewRedis(t)
	pages, err := New(store, NewHTTPFetcher(server.Client()), WithMeter(provider.Meter("test")))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := pages.Get(ctx, server.URL)
		require.NoError(t, err)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	assert.Equal(t, int64(2), counterValue(rm, "webcache.hits"))
	assert.Equal(t, int64(1), counterValue(rm, "webcache.misses"))
	assert.Equal(t, int64(0), counterValue(rm, "webcache.fetch.errors"))
}

func assertCount(t *testing.T, pages *PageCache, url string, want int64) {
	t.Helper()
	n, err := pages.AccessCount(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, want, n)
}

func counterValue(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}
