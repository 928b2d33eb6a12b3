package worker

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/Paintersrp/parley/internal/wire"
)

// Init turns the current process into a worker when it was spawned by a
// handle, running the requested function to completion and exiting. In an
// ordinary process it returns immediately. Call it before anything else in
// main or TestMain.
//
// The worker's failure never escapes as a raised error here: it is
// serialized onto the outcome pipe for the parent to capture, and the child
// exits zero, matching the exit of a worker that returned normally.
func Init() {
	name := os.Getenv(wire.EnvWorker)
	if name == "" {
		return
	}
	os.Exit(runChild(name))
}

func runChild(name string) int {
	in := os.NewFile(wire.FDParentToChild, "parley|parent")
	out := os.NewFile(wire.FDChildToParent, "parley|child")
	if in == nil || out == nil {
		fmt.Fprintln(os.Stderr, "parley worker: protocol descriptors missing")
		return 1
	}
	defer in.Close()
	defer out.Close()

	dec := wire.NewDecoder(in)
	enc := wire.NewEncoder(out)

	inv, err := dec.DecodeInvocation()
	if err != nil {
		_ = enc.Encode(errorFrame(ErrKindWire, fmt.Sprintf("read invocation: %v", err), ""))
		return 1
	}

	e, ok := lookup(inv.Worker)
	if !ok {
		_ = enc.Encode(errorFrame(ErrKindLookup, fmt.Sprintf("worker %q not registered in child", inv.Worker), ""))
		return 1
	}

	outcome := supervise(e, inv.Args, enc, dec)
	if err := enc.Encode(outcome); err != nil {
		fmt.Fprintf(os.Stderr, "parley worker %q: report outcome: %v\n", inv.Worker, err)
		return 1
	}
	return 0
}

// supervise is the failure boundary around the worker: a returned error or a
// panic becomes the error outcome, a normal return becomes the result
// outcome. Exactly one outcome frame leaves this function.
func supervise(e entry, args []any, enc *wire.Encoder, dec *wire.Decoder) (outcome wire.Frame) {
	defer func() {
		if r := recover(); r != nil {
			outcome = errorFrame(ErrKindPanic, fmt.Sprint(r), string(debug.Stack()))
		}
	}()

	if e.generator {
		if err := converse(e.gen, args, enc, dec); err != nil {
			return errorFrame(ErrKindError, err.Error(), "")
		}
		return wire.Frame{Kind: wire.KindResult}
	}

	result, err := e.fn(args...)
	if err != nil {
		return errorFrame(ErrKindError, err.Error(), "")
	}
	return wire.Frame{Kind: wire.KindResult, Value: result}
}

// converse drives the generator: push the yielded value, park on the resume
// pipe, step again with the received value, until the generator is done. The
// final resume is still required once the last value has been yielded; until
// it arrives the child stays parked here, which is the documented deadlock
// when the parent omits it.
func converse(g GeneratorFunc, args []any, enc *wire.Encoder, dec *wire.Decoder) error {
	step := g(args...)
	st := step(nil)
	for {
		switch {
		case st.err != nil:
			return st.err
		case st.done:
			return nil
		}
		if err := enc.Encode(wire.Frame{Kind: wire.KindYield, Value: st.value}); err != nil {
			return fmt.Errorf("push yield: %w", err)
		}
		resume, err := dec.Decode()
		if err != nil {
			return fmt.Errorf("await resume: %w", err)
		}
		st = step(resume.Value)
	}
}

func errorFrame(kind, message, trace string) wire.Frame {
	return wire.Frame{
		Kind: wire.KindError,
		Err:  &wire.ErrorDescriptor{Kind: kind, Message: message, Trace: trace},
	}
}
