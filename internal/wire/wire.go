// Package wire defines the gob envelopes exchanged between a parent handle
// and its worker child, and the codec used to move them across pipe file
// descriptors. Both ends of the wire are the same executable, so gob's
// Go-native type model is a safe fit; callers transporting their own types
// must register them via RegisterType on both sides (which, being the same
// binary, means once).
package wire

import (
	"encoding/gob"
	"fmt"
	"io"
)

// EnvWorker marks a process as a spawned worker; its value is the registered
// worker name. The pipe descriptors follow the parent's ExtraFiles ordering.
const (
	EnvWorker = "PARLEY_WORKER"

	FDParentToChild = 3
	FDChildToParent = 4
)

// Frame kinds. Exactly one outcome frame (KindResult or KindError) is written
// per child; yield and resume frames repeat for conversational workers.
const (
	KindYield = iota
	KindResume
	KindResult
	KindError
)

// Invocation is the first frame the parent writes to a freshly spawned
// child: which registered worker to run and the arguments bound at handle
// construction.
type Invocation struct {
	Worker string
	Args   []any
}

// ErrorDescriptor is the serializable form of a child failure. Live error
// values cannot cross the process boundary, so the child flattens them to a
// kind tag, a message and, for panics, the goroutine stack text.
type ErrorDescriptor struct {
	Kind    string
	Message string
	Trace   string
}

// Frame is the tagged union carried on both pipes after the invocation.
type Frame struct {
	Kind  int
	Value any
	Err   *ErrorDescriptor
}

// Encoder writes frames to one end of a pipe.
type Encoder struct {
	enc *gob.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: gob.NewEncoder(w)}
}

func (e *Encoder) Encode(f Frame) error {
	if err := e.enc.Encode(&f); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}

// EncodeInvocation writes the invocation header. It is only ever the first
// write on the parent-to-child pipe.
func (e *Encoder) EncodeInvocation(inv Invocation) error {
	if err := e.enc.Encode(&inv); err != nil {
		return fmt.Errorf("encode invocation: %w", err)
	}
	return nil
}

// Decoder reads frames from the other end.
type Decoder struct {
	dec *gob.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: gob.NewDecoder(r)}
}

func (d *Decoder) Decode() (Frame, error) {
	var f Frame
	if err := d.dec.Decode(&f); err != nil {
		return Frame{}, err
	}
	return f, nil
}

func (d *Decoder) DecodeInvocation() (Invocation, error) {
	var inv Invocation
	if err := d.dec.Decode(&inv); err != nil {
		return Invocation{}, fmt.Errorf("decode invocation: %w", err)
	}
	return inv, nil
}

// RegisterType makes a concrete type transportable inside the Value field of
// a frame or an invocation argument.
func RegisterType(v any) {
	gob.Register(v)
}

func init() {
	// Interface-typed fields need their concrete types registered ahead of
	// time; cover the shapes ordinary workers trade in.
	gob.Register(int(0))
	gob.Register(int64(0))
	gob.Register(uint64(0))
	gob.Register(float64(0))
	gob.Register(string(""))
	gob.Register(bool(false))
	gob.Register([]byte(nil))
	gob.Register([]any(nil))
	gob.Register([]string(nil))
	gob.Register([]int(nil))
	gob.Register(map[string]any(nil))
	gob.Register(map[string]string(nil))
}
