package instrument

import (
	"context"
	"fmt"

	"github.com/IsaacDSC/kvcache/internal/codec"
	"github.com/IsaacDSC/kvcache/pkg/ctxlogger"
)

type Recorder interface {
	RPushPair(ctx context.Context, firstKey string, first []byte, secondKey string, second []byte) error
}

type historyOperation struct {
	recorder Recorder
	next     Operation
}

// RecordHistory appends the argument tuple and the result of every
// successful call to the operation's inputs and outputs lists. Both are
// written in one step, after the call returns, so the lists stay index
// aligned. A failed call records nothing.
func RecordHistory(recorder Recorder, op Operation) Operation {
	return &historyOperation{recorder: recorder, next: op}
}

func (o *historyOperation) Name() string {
	return o.next.Name()
}

func (o *historyOperation) Invoke(ctx context.Context, args ...any) (any, error) {
	input := codec.Tuple(args)

	out, err := o.next.Invoke(ctx, args...)
	if err != nil {
		return nil, err
	}

	output := codec.Str(out)
	name := o.Name()
	if err := o.recorder.RPushPair(ctx, InputsKey(name), []byte(input), OutputsKey(name), []byte(output)); err != nil {
		return nil, fmt.Errorf("error recording call history for %s: %w", name, err)
	}

	ctxlogger.GetLogger(ctx).Debug("call recorded", "operation", name, "input", input, "output", output)

	return out, nil
}
