package mailbox

import (
	"testing"
	"time"
)

func TestDeliversInPutOrder(t *testing.T) {
	m := New[int]()
	for i := 0; i < 1000; i++ {
		m.Put(i)
	}
	for i := 0; i < 1000; i++ {
		if got := <-m.Out(); got != i {
			t.Fatalf("got %d, want %d", got, i)
		}
	}
}

func TestPutNeverWaitsForReader(t *testing.T) {
	m := New[int]()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10000; i++ {
			m.Put(i)
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("puts blocked without a reader")
	}
}

func TestReadBlocksUntilPut(t *testing.T) {
	m := New[string]()
	got := make(chan string, 1)
	go func() { got <- <-m.Out() }()

	select {
	case v := <-got:
		t.Fatalf("read returned %q before any put", v)
	case <-time.After(50 * time.Millisecond):
	}

	m.Put("hello")
	select {
	case v := <-got:
		if v != "hello" {
			t.Fatalf("got %q", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("read did not observe the put")
	}
}

func TestCloseDrainsBufferedValues(t *testing.T) {
	m := New[int]()
	m.Put(1)
	m.Put(2)
	m.Close()

	for _, want := range []int{1, 2} {
		select {
		case got := <-m.Out():
			if got != want {
				t.Fatalf("got %d, want %d", got, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("buffered value lost after close")
		}
	}

	// Past the end nothing arrives; the channel stays open and blocks.
	select {
	case v := <-m.Out():
		t.Fatalf("unexpected value %d after drain", v)
	case <-time.After(50 * time.Millisecond):
	}
}
