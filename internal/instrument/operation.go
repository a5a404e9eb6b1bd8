// Package instrument decorates operations with call counting and call
// history kept in the store.
//
// An operation is identified by an explicit qualified name such as
// "Cache.store". The name is the counter key and the prefix of the
// "<name>:inputs" and "<name>:outputs" history lists.
package instrument

import (
	"context"
)

// Func is the signature of an instrumentable call.
type Func func(ctx context.Context, args ...any) (any, error)

type Operation interface {
	Name() string
	Invoke(ctx context.Context, args ...any) (any, error)
}

type funcOperation struct {
	name string
	fn   Func
}

// New names fn so it can be wrapped by CountCalls and RecordHistory.
func New(name string, fn Func) Operation {
	return &funcOperation{name: name, fn: fn}
}

func (o *funcOperation) Name() string {
	return o.name
}

func (o *funcOperation) Invoke(ctx context.Context, args ...any) (any, error) {
	return o.fn(ctx, args...)
}

func InputsKey(name string) string {
	return name + ":inputs"
}

func OutputsKey(name string) string {
	return name + ":outputs"
}
