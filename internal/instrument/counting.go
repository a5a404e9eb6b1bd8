package instrument

import (
	"context"
	"fmt"

	"github.com/IsaacDSC/kvcache/pkg/ctxlogger"
)

type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
}

type countingOperation struct {
	counter Counter
	next    Operation
}

// CountCalls increments the counter stored under the operation name
// before each call. The count advances whether or not the call succeeds;
// a failed increment aborts the call.
func CountCalls(counter Counter, op Operation) Operation {
	return &countingOperation{counter: counter, next: op}
}

func (o *countingOperation) Name() string {
	return o.next.Name()
}

func (o *countingOperation) Invoke(ctx context.Context, args ...any) (any, error) {
	n, err := o.counter.Incr(ctx, o.Name())
	if err != nil {
		return nil, fmt.Errorf("error counting call to %s: %w", o.Name(), err)
	}

	ctxlogger.GetLogger(ctx).Debug("operation called", "operation", o.Name(), "calls", n)

	return o.next.Invoke(ctx, args...)
}
