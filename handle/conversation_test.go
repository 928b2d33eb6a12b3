package handle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Paintersrp/parley/handle"
	"github.com/Paintersrp/parley/worker"
)

// countdown yields 1, 2, 5 and ignores what the parent sends back.
func countdown(args ...any) worker.StepFunc {
	values := []int{1, 2, 5}
	i := 0
	return func(in any) worker.Step {
		if i == len(values) {
			return worker.Done()
		}
		v := values[i]
		i++
		return worker.Yielded(v)
	}
}

// adder yields 1, then yields one more than whatever the parent sent.
func adder(args ...any) worker.StepFunc {
	state := 0
	return func(in any) worker.Step {
		switch state {
		case 0:
			state = 1
			return worker.Yielded(1)
		case 1:
			state = 2
			return worker.Yielded(in.(int) + 1)
		default:
			return worker.Done()
		}
	}
}

// oneYield has a single suspension point and still needs its final resume.
func oneYield(args ...any) worker.StepFunc {
	done := false
	return func(in any) worker.Step {
		if done {
			return worker.Done()
		}
		done = true
		return worker.Yielded("only")
	}
}

// failingStep fails while resuming, after its first yield was consumed.
func failingStep(args ...any) worker.StepFunc {
	started := false
	return func(in any) worker.Step {
		if !started {
			started = true
			return worker.Yielded("first")
		}
		return worker.Fail(errors.New("step exploded"))
	}
}

func init() {
	worker.Register("countdown", worker.GeneratorFunc(countdown))
	worker.Register("adder", worker.GeneratorFunc(adder))
	worker.Register("one-yield", worker.GeneratorFunc(oneYield))
	worker.Register("failing-step", worker.GeneratorFunc(failingStep))
}

func TestFIFODecoupling(t *testing.T) {
	skipOnWindows(t)

	h, err := handle.New(worker.GeneratorFunc(countdown), handle.Options{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	err = h.Do(func(h *handle.Handle) error {
		// All resumes issued before any read: yield order must survive.
		for i := 0; i < 3; i++ {
			if err := h.Go(); err != nil {
				return err
			}
		}
		for _, want := range []int{1, 2, 5} {
			got, err := h.Get()
			if err != nil {
				return err
			}
			if got != want {
				t.Errorf("get = %v, want %d", got, want)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("scoped run: %v", err)
	}
}

func TestYieldSendRoundTrip(t *testing.T) {
	skipOnWindows(t)

	h, err := handle.New(worker.GeneratorFunc(adder), handle.Options{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	err = h.Do(func(h *handle.Handle) error {
		got, err := h.Get()
		if err != nil {
			return err
		}
		if got != 1 {
			t.Errorf("first get = %v, want 1", got)
		}
		if err := h.Send(2); err != nil {
			return err
		}
		got, err = h.Get()
		if err != nil {
			return err
		}
		if got != 3 {
			t.Errorf("second get = %v, want 3", got)
		}
		return h.Go()
	})
	if err != nil {
		t.Fatalf("scoped run should join cleanly: %v", err)
	}
	if h.Err() != nil {
		t.Fatalf("unexpected child error: %v", h.Err())
	}
}

// A generator that never receives its final resume parks the child on its
// resume read; the join coming back with ErrStillRunning is the contract, not
// a defect to detect.
func TestOmittedFinalResumeBlocksJoin(t *testing.T) {
	skipOnWindows(t)

	h, err := handle.New(worker.GeneratorFunc(oneYield), handle.Options{})
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	if err := h.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		_ = h.Terminate()
		_ = h.Join(contextWithTimeout(t, 5*time.Second))
	})

	got, err := h.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "only" {
		t.Fatalf("get = %v, want %q", got, "only")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := h.Join(ctx); !errors.Is(err, handle.ErrStillRunning) {
		t.Fatalf("join = %v, want ErrStillRunning", err)
	}
}

func TestStepFailureBecomesChildError(t *testing.T) {
	skipOnWindows(t)

	h, err := handle.New(worker.GeneratorFunc(failingStep), handle.Options{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	err = h.Do(func(h *handle.Handle) error {
		if _, err := h.Get(); err != nil {
			return err
		}
		return h.Go()
	})
	if err != nil {
		t.Fatalf("scoped run: %v", err)
	}
	var cerr *worker.ChildError
	if !errors.As(h.Err(), &cerr) {
		t.Fatalf("expected *worker.ChildError, got %T (%v)", h.Err(), h.Err())
	}
	if cerr.Message != "step exploded" {
		t.Fatalf("message = %q, want %q", cerr.Message, "step exploded")
	}
}

// A send racing the join must either land in the mailbox or come back with the
// conversation-closed error; it must never panic the parent.
func TestSendRacingJoin(t *testing.T) {
	skipOnWindows(t)

	h, err := handle.New(worker.GeneratorFunc(oneYield), handle.Options{})
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	if err := h.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := h.Get(); err != nil {
		t.Fatalf("get: %v", err)
	}

	// Hammer sends from another goroutine while the main one joins. The
	// extra resumes are harmless to the worker; the point is that none of
	// them may hit a just-closed mailbox.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; ; i++ {
			if err := h.Send(i); err != nil {
				return
			}
		}
	}()

	if err := h.Go(); err != nil {
		t.Fatalf("final resume: %v", err)
	}
	if err := h.Join(contextWithTimeout(t, 10*time.Second)); err != nil {
		t.Fatalf("join: %v", err)
	}
	<-done

	if err := h.Send("late"); err == nil {
		t.Fatal("send after join should fail")
	}
}

func TestSendAfterJoinIsRejected(t *testing.T) {
	skipOnWindows(t)

	h, err := handle.New(worker.GeneratorFunc(countdown), handle.Options{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	err = h.Do(func(h *handle.Handle) error {
		for i := 0; i < 3; i++ {
			if _, err := h.Get(); err != nil {
				return err
			}
			if err := h.Go(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("scoped run: %v", err)
	}
	if err := h.Send(1); err == nil {
		t.Fatal("send after join should fail")
	}
}
