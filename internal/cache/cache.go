package cache

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/IsaacDSC/kvcache/internal/codec"
	"github.com/IsaacDSC/kvcache/internal/instrument"
	"github.com/IsaacDSC/kvcache/internal/kvstore"
	"github.com/IsaacDSC/kvcache/internal/replay"
	"github.com/IsaacDSC/kvcache/pkg/ctxlogger"
)

// StoreOperationName keys the call counter and history of Cache.Store.
const StoreOperationName = "Cache.store"

var ErrUnsupportedValue = codec.ErrUnsupportedValue

// Key identifies one stored value.
type Key string

// String returns the string representation of the Key.
func (k Key) String() string {
	return string(k)
}

// Cache stores scalar values under generated keys. Store calls are
// counted and recorded unless disabled with options.
type Cache struct {
	store         kvstore.Store
	ids           IDGenerator
	countCalls    bool
	recordHistory bool
	storeOp       instrument.Operation
}

type Option func(*Cache)

func WithIDGenerator(ids IDGenerator) Option {
	return func(c *Cache) {
		c.ids = ids
	}
}

func WithoutCallCounting() Option {
	return func(c *Cache) {
		c.countCalls = false
	}
}

func WithoutCallHistory() Option {
	return func(c *Cache) {
		c.recordHistory = false
	}
}

// New flushes the whole store database and returns a Cache over it.
func New(ctx context.Context, store kvstore.Store, opts ...Option) (*Cache, error) {
	c := &Cache{
		store:         store,
		ids:           UUIDGenerator{},
		countCalls:    true,
		recordHistory: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := store.FlushDB(ctx); err != nil {
		return nil, fmt.Errorf("error initializing cache: %w", err)
	}

	op := instrument.New(StoreOperationName, c.set)
	if c.countCalls {
		op = instrument.CountCalls(store, op)
	}
	if c.recordHistory {
		op = instrument.RecordHistory(store, op)
	}
	c.storeOp = op

	ctxlogger.GetLogger(ctx).Info("cache initialized",
		"count_calls", c.countCalls,
		"record_history", c.recordHistory,
	)

	return c, nil
}

// Store saves value under a new key and returns it. Accepted values are
// strings, byte slices, integers and floats.
func (c *Cache) Store(ctx context.Context, value any) (Key, error) {
	out, err := c.storeOp.Invoke(ctx, value)
	if err != nil {
		return "", err
	}
	return out.(Key), nil
}

func (c *Cache) set(ctx context.Context, args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s takes exactly one value, got %d", StoreOperationName, len(args))
	}

	b, err := codec.Encode(args[0])
	if err != nil {
		return nil, err
	}

	key := Key(c.ids.NewID())
	if err := c.store.Set(ctx, key.String(), b); err != nil {
		return nil, err
	}

	ctxlogger.GetLogger(ctx).Debug("value stored", "key", key.String(), "size", len(b))

	return key, nil
}

// Get returns the raw bytes stored at key. An empty key or an absent value
// reports found == false without error.
func (c *Cache) Get(ctx context.Context, key Key) (value []byte, found bool, err error) {
	if key == "" {
		return nil, false, nil
	}

	b, err := c.store.Get(ctx, key.String())
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return b, true, nil
}

func (c *Cache) GetString(ctx context.Context, key Key) (string, bool, error) {
	return GetAs(ctx, c, key, BytesToString)
}

func (c *Cache) GetInt(ctx context.Context, key Key) (int64, bool, error) {
	return GetAs(ctx, c, key, BytesToInt)
}

func (c *Cache) GetFloat(ctx context.Context, key Key) (float64, bool, error) {
	return GetAs(ctx, c, key, BytesToFloat)
}

// StoreOperation is the instrumented operation behind Store.
func (c *Cache) StoreOperation() instrument.Operation {
	return c.storeOp
}

// CallCount returns how many times Store has been called since New.
// It is always 0 when call counting is disabled.
func (c *Cache) CallCount(ctx context.Context) (int64, error) {
	n, _, err := c.GetInt(ctx, Key(StoreOperationName))
	return n, err
}

// History returns the recorded Store calls, oldest first.
func (c *Cache) History(ctx context.Context) (replay.History, error) {
	return replay.Load(ctx, c.store, StoreOperationName)
}

// Replay writes the recorded Store calls to w.
func (c *Cache) Replay(ctx context.Context, w io.Writer) error {
	return replay.Operation(ctx, w, c.store, c.storeOp)
}
