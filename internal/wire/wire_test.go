package wire

import (
	"bytes"
	"io"
	"testing"
)

func TestInvocationRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	dec := NewDecoder(&buf)

	in := Invocation{Worker: "exec", Args: []any{"sh", "-c", "true", 3}}
	if err := enc.EncodeInvocation(in); err != nil {
		t.Fatalf("encode invocation: %v", err)
	}
	out, err := dec.DecodeInvocation()
	if err != nil {
		t.Fatalf("decode invocation: %v", err)
	}
	if out.Worker != "exec" {
		t.Fatalf("worker = %q", out.Worker)
	}
	if len(out.Args) != 4 || out.Args[0] != "sh" || out.Args[3] != 3 {
		t.Fatalf("args = %#v", out.Args)
	}
}

func TestFrameSequencePreservesOrderAndKinds(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	dec := NewDecoder(&buf)

	frames := []Frame{
		{Kind: KindYield, Value: 1},
		{Kind: KindResume},
		{Kind: KindYield, Value: "two"},
		{Kind: KindResult, Value: map[string]any{"n": 5}},
	}
	for _, f := range frames {
		if err := enc.Encode(f); err != nil {
			t.Fatalf("encode %v: %v", f.Kind, err)
		}
	}

	for i, want := range frames {
		got, err := dec.Decode()
		if err != nil {
			t.Fatalf("decode frame %d: %v", i, err)
		}
		if got.Kind != want.Kind {
			t.Fatalf("frame %d kind = %v, want %v", i, got.Kind, want.Kind)
		}
	}
}

func TestResumeWithNilValue(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	dec := NewDecoder(&buf)

	if err := enc.Encode(Frame{Kind: KindResume, Value: nil}); err != nil {
		t.Fatalf("encode nil resume: %v", err)
	}
	got, err := dec.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindResume || got.Value != nil {
		t.Fatalf("frame = %#v", got)
	}
}

func TestErrorDescriptorRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	dec := NewDecoder(&buf)

	f := Frame{Kind: KindError, Err: &ErrorDescriptor{Kind: "panic", Message: "kaboom", Trace: "goroutine 1 [running]"}}
	if err := enc.Encode(f); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := dec.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Err == nil {
		t.Fatal("descriptor lost in transit")
	}
	if got.Err.Kind != "panic" || got.Err.Message != "kaboom" || got.Err.Trace == "" {
		t.Fatalf("descriptor = %+v", got.Err)
	}
}

func TestDecodeOnClosedStream(t *testing.T) {
	r, w := io.Pipe()
	dec := NewDecoder(r)
	_ = w.Close()
	if _, err := dec.Decode(); err == nil {
		t.Fatal("decode on a closed stream should fail")
	}
}
