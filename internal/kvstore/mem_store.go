package kvstore

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"
)

// ErrWrongType mirrors the Redis WRONGTYPE and "not an integer" replies.
var ErrWrongType = errors.New("operation against a key holding the wrong kind of value")

type memEntry struct {
	value     []byte
	list      [][]byte
	isList    bool
	expiresAt time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is an in-process Store with Redis semantics for the commands in
// Store. It backs the CLI's -memory mode, where no Redis server is around.
// Every method holds the lock for its whole duration, the same per-command
// atomicity Redis gives.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memEntry), now: time.Now}
}

// WithClock replaces the time source used for TTL checks.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
	return m
}

// lookup must be called with mu held. Expired entries are dropped.
func (m *Memory) lookup(key string) (memEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memEntry{}, false
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		return memEntry{}, false
	}
	return e, true
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memEntry{value: clone(value)}
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return nil, ErrNotFound
	}
	if e.isList {
		return nil, ErrWrongType
	}
	return clone(e.value), nil
}

func (m *Memory) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("invalid expire time in 'setex' command")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memEntry{value: clone(value), expiresAt: m.now().Add(wholeSeconds(ttl))}
	return nil
}

// wholeSeconds matches the SETEX argument go-redis sends: the ttl truncated
// to seconds, and never less than one.
func wholeSeconds(ttl time.Duration) time.Duration {
	return max(ttl.Truncate(time.Second), time.Second)
}

func (m *Memory) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if e.isList {
		return 0, ErrWrongType
	}

	var n int64
	if ok {
		parsed, err := strconv.ParseInt(string(e.value), 10, 64)
		if err != nil {
			return 0, ErrWrongType
		}
		n = parsed
	}
	n++

	e.value = []byte(strconv.FormatInt(n, 10))
	m.entries[key] = e
	return n, nil
}

func (m *Memory) RPush(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.rpush(key, value)
}

func (m *Memory) RPushPair(ctx context.Context, firstKey string, first []byte, secondKey string, second []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range []string{firstKey, secondKey} {
		if e, ok := m.lookup(k); ok && !e.isList {
			return ErrWrongType
		}
	}

	if err := m.rpush(firstKey, first); err != nil {
		return err
	}
	return m.rpush(secondKey, second)
}

// rpush must be called with mu held.
func (m *Memory) rpush(key string, value []byte) error {
	e, ok := m.lookup(key)
	if ok && !e.isList {
		return ErrWrongType
	}
	e.isList = true
	e.list = append(e.list, clone(value))
	m.entries[key] = e
	return nil
}

func (m *Memory) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return [][]byte{}, nil
	}
	if !e.isList {
		return nil, ErrWrongType
	}

	n := int64(len(e.list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		return [][]byte{}, nil
	}

	out := make([][]byte, 0, stop-start+1)
	for _, v := range e.list[start : stop+1] {
		out = append(out, clone(v))
	}
	return out, nil
}

func (m *Memory) FlushDB(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]memEntry)
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
