package handle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/Paintersrp/parley/internal/metrics"
	"github.com/Paintersrp/parley/internal/wire"
	"github.com/Paintersrp/parley/worker"
)

var (
	// ErrNotGenerator reports Get, Send or Go on a handle whose target is a
	// plain worker. It is a caller mistake and is returned synchronously.
	ErrNotGenerator = errors.New("target is not a generator-producing worker")

	// ErrStillRunning reports that Join gave up waiting while the child was
	// still alive. It is never escalated further; callers combine it with
	// Terminate or retry the join.
	ErrStillRunning = errors.New("child process still running")

	// ErrAlreadyStarted reports a second Start on the same handle.
	ErrAlreadyStarted = errors.New("handle already started")

	// ErrNotStarted reports Join on a handle that was never started.
	ErrNotStarted = errors.New("handle not started")
)

// Options configure a Handle at construction.
type Options struct {
	// Args are bound now and delivered to the worker in the child. Values
	// travel by gob; custom types need RegisterType on init.
	Args []any

	// Timeout bounds how long the scoped form waits for the child after the
	// body returns. Zero means one second. It does not by itself kill the
	// child; combine with Terminate for that.
	Timeout time.Duration

	// Terminate kills the child unconditionally when the scoped form exits.
	Terminate bool

	// Reraise surfaces a captured child error as the return value of Do
	// (and of an explicit Join).
	Reraise bool

	// KillAtParentExit ties the child to the parent's lifetime, so it does
	// not outlive a parent that exits without joining. Linux enforces this
	// in the kernel; elsewhere it is best effort. The default leaves the
	// child unsupervised, as a daemonized worker.
	KillAtParentExit bool

	// Stdout and Stderr redirect the child's standard streams. Nil inherits
	// the parent's. The protocol never touches these streams, so redirecting
	// them is purely an observation concern.
	Stdout io.Writer
	Stderr io.Writer
}

// Handle owns one child OS process running one registered worker, and
// presents its result, error and termination semantics uniformly whether the
// worker is plain or generator-producing.
//
// A handle runs at most one child, ever: construct, Start (or Do), converse
// while alive if the worker is a generator, Join. Result and Err are
// meaningful only after Join observed the child's exit.
type Handle struct {
	reg  worker.Registration
	opts Options
	conv *Conversation

	mu      sync.Mutex
	started bool
	joined  bool
	cmd     *exec.Cmd
	toChild *os.File

	waitDone chan struct{}
	pumpDone chan struct{}
	outcome  chan wire.Frame
	startAt  time.Time

	drainOnce sync.Once
	result    any
	childErr  error
}

// New builds a handle over a registered worker function. A
// worker.GeneratorFunc target gets a Conversation; any other accepted target
// runs as a plain worker. Unregistered or wrongly-typed targets fail here,
// before any process exists.
func New(target any, opts Options) (*Handle, error) {
	reg, err := worker.Resolve(target)
	if err != nil {
		return nil, err
	}
	return newHandle(reg, opts), nil
}

// NewNamed builds a handle over a worker registered under name, for callers
// that carry the registration name instead of the function value.
func NewNamed(name string, opts Options) (*Handle, error) {
	reg, err := worker.ResolveName(name)
	if err != nil {
		return nil, err
	}
	return newHandle(reg, opts), nil
}

func newHandle(reg worker.Registration, opts Options) *Handle {
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second
	}
	h := &Handle{
		reg:      reg,
		opts:     opts,
		waitDone: make(chan struct{}),
		pumpDone: make(chan struct{}),
		outcome:  make(chan wire.Frame, 1),
	}
	if reg.Generator {
		h.conv = newConversation()
	}
	return h
}

// Start spawns the child process and hands it the invocation. Calling Start
// twice is invalid.
func (h *Handle) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return fmt.Errorf("worker %q: %w", h.reg.Name, ErrAlreadyStarted)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	toChildR, toChildW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("worker %q: open pipe: %w", h.reg.Name, err)
	}
	fromChildR, fromChildW, err := os.Pipe()
	if err != nil {
		toChildR.Close()
		toChildW.Close()
		return fmt.Errorf("worker %q: open pipe: %w", h.reg.Name, err)
	}

	cmd := exec.Command(exe)
	cmd.Env = append(os.Environ(), wire.EnvWorker+"="+h.reg.Name)
	cmd.Stdout = h.opts.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = h.opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	// The protocol travels on dedicated descriptors so worker prints cannot
	// corrupt it. ExtraFiles start at fd 3 in the child.
	cmd.ExtraFiles = []*os.File{toChildR, fromChildW}
	configureSysProcAttr(cmd, h.opts.KillAtParentExit)

	if err := cmd.Start(); err != nil {
		toChildR.Close()
		toChildW.Close()
		fromChildR.Close()
		fromChildW.Close()
		return fmt.Errorf("start worker %q: %w", h.reg.Name, err)
	}
	toChildR.Close()
	fromChildW.Close()

	h.cmd = cmd
	h.toChild = toChildW
	h.started = true
	h.startAt = time.Now()
	metrics.AddSpawn(h.reg.Name)

	enc := wire.NewEncoder(toChildW)
	if err := enc.EncodeInvocation(wire.Invocation{Worker: h.reg.Name, Args: h.opts.Args}); err != nil {
		_ = killProcess(cmd)
		go func() { _ = cmd.Wait(); close(h.waitDone) }()
		close(h.pumpDone)
		fromChildR.Close()
		return fmt.Errorf("worker %q: %w", h.reg.Name, err)
	}

	go func() {
		// The exit status itself is uninteresting: a captured worker error
		// still exits zero, and anything else surfaces through the outcome
		// pipe or through unset Result/Err after a kill.
		_ = cmd.Wait()
		close(h.waitDone)
	}()
	go h.demux(fromChildR)
	if h.conv != nil {
		go h.pumpSends(enc)
	}
	return nil
}

// demux routes child-to-parent frames: yields to the conversation, the
// one-shot outcome aside for Join. Exits when the child's write end closes.
func (h *Handle) demux(r *os.File) {
	defer close(h.pumpDone)
	defer r.Close()
	dec := wire.NewDecoder(r)
	for {
		f, err := dec.Decode()
		if err != nil {
			return
		}
		switch f.Kind {
		case wire.KindYield:
			if h.conv != nil {
				h.conv.yields.Put(f.Value)
			}
		case wire.KindResult, wire.KindError:
			select {
			case h.outcome <- f:
			default:
			}
		}
	}
}

// pumpSends forwards parent sends to the child in FIFO order. The pump, not
// the caller, absorbs pipe backpressure; Send itself never blocks.
func (h *Handle) pumpSends(enc *wire.Encoder) {
	for {
		select {
		case v := <-h.conv.sends.Out():
			if err := enc.Encode(wire.Frame{Kind: wire.KindResume, Value: v}); err != nil {
				return
			}
		case <-h.waitDone:
			return
		}
	}
}

// Join blocks until the child terminates or ctx expires. On expiry the child
// is left running and ErrStillRunning is returned. After termination the
// one-shot outcome is drained into Result and Err; with Options.Reraise a
// captured child error becomes Join's return value. Join is idempotent once
// the child has been reclaimed.
func (h *Handle) Join(ctx context.Context) error {
	h.mu.Lock()
	started := h.started
	h.mu.Unlock()
	if !started {
		return fmt.Errorf("worker %q: %w", h.reg.Name, ErrNotStarted)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-h.waitDone:
	case <-ctx.Done():
		return fmt.Errorf("join worker %q: %w", h.reg.Name, ErrStillRunning)
	}
	<-h.pumpDone

	h.drainOnce.Do(h.drain)

	if h.opts.Reraise && h.childErr != nil {
		return h.childErr
	}
	return nil
}

func (h *Handle) drain() {
	select {
	case f := <-h.outcome:
		switch f.Kind {
		case wire.KindResult:
			h.result = f.Value
		case wire.KindError:
			h.childErr = &worker.ChildError{
				Kind:    f.Err.Kind,
				Message: f.Err.Message,
				Trace:   f.Err.Trace,
			}
			metrics.AddFailure(h.reg.Name, f.Err.Kind)
		}
	default:
		// Terminated before either one-shot channel was written: no
		// well-defined partial result, both stay unset.
	}

	metrics.ObserveLifetime(h.reg.Name, time.Since(h.startAt).Seconds())

	// Marking joined and closing the mailboxes must be one critical section
	// with the check in Send: a send that passed the check must land before
	// the sends mailbox closes.
	h.mu.Lock()
	h.joined = true
	if h.toChild != nil {
		h.toChild.Close()
	}
	if h.conv != nil {
		h.conv.close()
	}
	h.mu.Unlock()
}

// Get returns the oldest value the worker yielded and has not yet delivered,
// blocking until one arrives. Values come back in yield order no matter how
// gets were interleaved with sends. Fails synchronously for plain workers.
func (h *Handle) Get() (any, error) {
	if h.conv == nil {
		return nil, fmt.Errorf("worker %q: %w", h.reg.Name, ErrNotGenerator)
	}
	return h.conv.GetFromChild(), nil
}

// Send enqueues a value for the worker's next resume without blocking. Every
// yield point needs exactly one Send or Go, the final one included: without
// it the child stays parked on its resume read and Join hangs.
func (h *Handle) Send(v any) error {
	if h.conv == nil {
		return fmt.Errorf("worker %q: %w", h.reg.Name, ErrNotGenerator)
	}
	// The lock spans the enqueue, not just the check: Put never blocks, and
	// drain closes the mailbox under the same lock, so a send that observed
	// joined == false cannot race the close.
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.joined {
		return fmt.Errorf("worker %q: conversation closed", h.reg.Name)
	}
	h.conv.SendToChild(v)
	return nil
}

// Go resumes the worker with no value; shorthand for Send(nil).
func (h *Handle) Go() error {
	return h.Send(nil)
}

// IsAlive reports whether the child process has started and not yet
// terminated.
func (h *Handle) IsAlive() bool {
	h.mu.Lock()
	started := h.started
	h.mu.Unlock()
	if !started {
		return false
	}
	select {
	case <-h.waitDone:
		return false
	default:
		return true
	}
}

// Terminate kills the child's process group. The kill is a signal, not an
// instantaneous stop: callers still Join to observe actual process death.
// Safe to call on an already-dead child.
func (h *Handle) Terminate() error {
	h.mu.Lock()
	cmd := h.cmd
	h.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	select {
	case <-h.waitDone:
		return nil
	default:
	}
	if err := killProcess(cmd); err != nil {
		return fmt.Errorf("terminate worker %q: %w", h.reg.Name, err)
	}
	return nil
}

// Result returns the worker's captured return value. Valid after Join.
func (h *Handle) Result() any {
	return h.result
}

// Err returns the worker's captured failure as a *worker.ChildError, or nil.
// Valid after Join.
func (h *Handle) Err() error {
	return h.childErr
}

// PID returns the child's process id, or zero before Start.
func (h *Handle) PID() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cmd == nil || h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// RegisterType makes a concrete type transportable as an argument, yield,
// send or result value.
func RegisterType(v any) {
	wire.RegisterType(v)
}
