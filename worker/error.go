package worker

// Error kinds reported by a failed child.
const (
	ErrKindError  = "error"  // the worker returned a non-nil error
	ErrKindPanic  = "panic"  // the worker (or a step) panicked
	ErrKindLookup = "lookup" // the spawned child had no such worker registered
	ErrKindWire   = "wire"   // the child could not speak the pipe protocol
)

// ChildError is the parent-side form of a failure that escaped the worker
// inside the child process. The live error cannot cross the process
// boundary, so the child ships kind, message and (for panics) the stack
// text, and the handle rebuilds this value when it joins.
type ChildError struct {
	Kind    string
	Message string
	Trace   string
}

func (e *ChildError) Error() string {
	return e.Message
}
