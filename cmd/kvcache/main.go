package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/IsaacDSC/kvcache/internal/cache"
	"github.com/IsaacDSC/kvcache/internal/cfg"
	"github.com/IsaacDSC/kvcache/internal/kvstore"
	"github.com/IsaacDSC/kvcache/internal/webcache"
	"github.com/IsaacDSC/kvcache/pkg/ctxlogger"
	"github.com/IsaacDSC/kvcache/pkg/httpclient"
	"github.com/IsaacDSC/kvcache/pkg/logs"
)

// go run ./cmd/kvcache --values=foo,bar,42
// go run ./cmd/kvcache --url=http://example.com
// go run ./cmd/kvcache --memory --values=foo --url=http://example.com
func main() {
	values := flag.String("values", "", "comma separated values to store and replay")
	pageURL := flag.String("url", "", "page to fetch twice through the page cache")
	memory := flag.Bool("memory", false, "use an in-process store instead of redis")
	flag.Parse()

	conf := cfg.Get()
	logger := logs.New(
		logs.WithLevel(logs.ParseLevel(conf.Log.Level)),
		logs.WithJSONFormat(conf.Log.JSON),
		logs.WithOutput(os.Stderr),
	)
	logs.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = ctxlogger.WithLogger(ctx, logger)

	if err := run(ctx, conf, *memory, *values, *pageURL); err != nil {
		logs.Error("kvcache failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, conf cfg.Config, memory bool, values, pageURL string) error {
	var store kvstore.Store
	if memory {
		store = kvstore.NewMemory()
	} else {
		client, err := kvstore.NewRedisClient(ctx, conf.Cache)
		if err != nil {
			return err
		}
		defer client.Close()
		store = kvstore.NewRedis(client)
	}

	c, err := cache.New(ctx, store)
	if err != nil {
		return err
	}

	if values != "" {
		for _, v := range strings.Split(values, ",") {
			key, err := c.Store(ctx, v)
			if err != nil {
				return err
			}
			logs.Info("value stored", "key", key.String(), "value", v)
		}

		if err := c.Replay(ctx, os.Stdout); err != nil {
			return err
		}
	}

	if pageURL != "" {
		fetcher := webcache.NewHTTPFetcher(httpclient.NewHTTPClientWithLogging(conf.PageCache.FetchTimeout))
		pages, err := webcache.New(store, fetcher, webcache.WithTTL(conf.PageCache.TTL))
		if err != nil {
			return err
		}

		for i := 0; i < 2; i++ {
			body, err := pages.Get(ctx, pageURL)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d bytes\n", pageURL, len(body))
		}

		n, err := pages.AccessCount(ctx, pageURL)
		if err != nil {
			return err
		}
		fmt.Printf("%s accessed %d times\n", pageURL, n)
	}

	return nil
}
