package replay

import (
	"context"
	"fmt"
	"io"

	"github.com/IsaacDSC/kvcache/internal/instrument"
	"github.com/IsaacDSC/kvcache/pkg/ctxlogger"
)

type ListReader interface {
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

// Call is one recorded invocation, in the text form it was stored.
type Call struct {
	Input  string
	Output string
}

// History is the recorded state of one operation. Count is the number of
// recorded inputs. Calls pairs inputs with outputs by index and stops at the
// shorter list, so a writer that recorded an input without its output leaves
// Count ahead of len(Calls).
type History struct {
	Count int
	Calls []Call
}

// Load reads the full call history of the named operation, oldest first.
func Load(ctx context.Context, reader ListReader, name string) (History, error) {
	inputs, err := reader.LRange(ctx, instrument.InputsKey(name), 0, -1)
	if err != nil {
		return History{}, fmt.Errorf("error loading inputs of %s: %w", name, err)
	}

	outputs, err := reader.LRange(ctx, instrument.OutputsKey(name), 0, -1)
	if err != nil {
		return History{}, fmt.Errorf("error loading outputs of %s: %w", name, err)
	}

	n := min(len(inputs), len(outputs))
	if len(inputs) != len(outputs) {
		ctxlogger.GetLogger(ctx).Warn("call history lists differ in length",
			"operation", name, "inputs", len(inputs), "outputs", len(outputs))
	}

	calls := make([]Call, n)
	for i := range n {
		calls[i] = Call{Input: string(inputs[i]), Output: string(outputs[i])}
	}

	return History{Count: len(inputs), Calls: calls}, nil
}

// Write prints the call history of the named operation to w:
//
//	Cache.store was called 2 times:
//	Cache.store(*('foo',)) -> k1
//	Cache.store(*('bar',)) -> k2
func Write(ctx context.Context, w io.Writer, reader ListReader, name string) error {
	h, err := Load(ctx, reader, name)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%s was called %d times:\n", name, h.Count); err != nil {
		return err
	}

	for _, c := range h.Calls {
		if _, err := fmt.Fprintf(w, "%s(*%s) -> %s\n", name, c.Input, c.Output); err != nil {
			return err
		}
	}

	return nil
}

// Operation is Write for an instrumented operation.
func Operation(ctx context.Context, w io.Writer, reader ListReader, op instrument.Operation) error {
	return Write(ctx, w, reader, op.Name())
}
