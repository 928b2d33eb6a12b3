package handle

import (
	"context"
)

// Do is the scoped form of the handle lifecycle: Start, run fn with the live
// handle, then reclaim the child on every exit path. If fn returned an error
// or panicked, or Options.Terminate is set, the child is killed first; either
// way Join then runs with the configured Timeout, so Result and Err are
// populated when Do returns. A panic in fn resumes after the child has been
// reclaimed.
//
// fn's error wins over the join outcome; otherwise, with Options.Reraise, a
// captured child error is returned. A child that ignores the kill can still
// hold Do for up to Timeout before ErrStillRunning comes back.
func (h *Handle) Do(fn func(*Handle) error) error {
	if err := h.Start(); err != nil {
		return err
	}

	fnErr := h.runScoped(fn)

	if fnErr != nil || h.opts.Terminate {
		_ = h.Terminate()
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
	defer cancel()
	joinErr := h.Join(ctx)

	if fnErr != nil {
		return fnErr
	}
	return joinErr
}

func (h *Handle) runScoped(fn func(*Handle) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			_ = h.Terminate()
			ctx, cancel := context.WithTimeout(context.Background(), h.opts.Timeout)
			defer cancel()
			_ = h.Join(ctx)
			panic(r)
		}
	}()
	return fn(h)
}
