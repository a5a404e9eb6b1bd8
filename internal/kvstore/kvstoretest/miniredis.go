// Package kvstoretest provides Redis-backed stores for package tests.
package kvstoretest

import (
	"testing"

	"github.com/IsaacDSC/kvcache/internal/kvstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// NewRedis starts an in-process Redis server for the duration of the test
// and returns a kvstore.Redis connected to it. The server is returned so
// tests can move its clock with FastForward.
func NewRedis(t testing.TB) (*kvstore.Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return kvstore.NewRedis(client), mr
}
