package handle

import (
	"github.com/Paintersrp/parley/internal/mailbox"
)

// Conversation is the parent half of the yield/resume handshake with a
// generator-producing worker. Two unbounded FIFO mailboxes decouple the
// caller from the pipes: values yielded by the child queue up until read,
// values sent by the parent queue up until the child resumes. Order is
// preserved within each direction; nothing is guaranteed across them.
type Conversation struct {
	yields *mailbox.Mailbox[any]
	sends  *mailbox.Mailbox[any]
}

func newConversation() *Conversation {
	return &Conversation{
		yields: mailbox.New[any](),
		sends:  mailbox.New[any](),
	}
}

// GetFromChild blocks until the child has yielded a value not yet delivered
// and returns the oldest one. There is no timeout: a caller that stops
// following the protocol (or reads past a terminated child) blocks
// indefinitely.
func (c *Conversation) GetFromChild() any {
	return <-c.yields.Out()
}

// SendToChild enqueues a resume value without waiting for the child to
// consume it.
func (c *Conversation) SendToChild(v any) {
	c.sends.Put(v)
}

func (c *Conversation) close() {
	c.yields.Close()
	c.sends.Close()
}
