// Package mailbox provides the unbounded FIFO queue backing each direction
// of a handle conversation.
package mailbox

// Mailbox decouples a producer from a consumer: Put never waits for the
// consumer, Out delivers values in Put order. A shuttle goroutine holds the
// overflow, so the only memory bound is the process's.
//
// The out channel is never closed. After Close drains the buffer the shuttle
// exits and later reads simply block, mirroring a queue whose writer has gone
// away.
type Mailbox[T any] struct {
	in  chan T
	out chan T
}

func New[T any]() *Mailbox[T] {
	m := &Mailbox[T]{
		in:  make(chan T),
		out: make(chan T),
	}
	go m.shuttle()
	return m
}

// Put enqueues a value. It is safe for exactly one producer goroutine at a
// time; Put after Close panics.
func (m *Mailbox[T]) Put(v T) {
	m.in <- v
}

// Out returns the receive side. Reads block until a value is available.
func (m *Mailbox[T]) Out() <-chan T {
	return m.out
}

// Close stops accepting values. Values already enqueued are still delivered;
// once the buffer empties the shuttle goroutine exits.
func (m *Mailbox[T]) Close() {
	close(m.in)
}

func (m *Mailbox[T]) shuttle() {
	var buf []T
	in := m.in
	for in != nil || len(buf) > 0 {
		if len(buf) == 0 {
			v, ok := <-in
			if !ok {
				return
			}
			buf = append(buf, v)
			continue
		}
		select {
		case v, ok := <-in:
			if !ok {
				// Receiving from a nil channel blocks, which leaves only
				// the delivery case active while the buffer drains.
				in = nil
				continue
			}
			buf = append(buf, v)
		case m.out <- buf[0]:
			buf = buf[1:]
		}
	}
}
