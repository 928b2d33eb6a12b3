// Package worker holds the child half of the parley harness: the registry of
// functions a handle may run in a separate OS process, and the Init dispatch
// that turns the current process into a worker when it was spawned as one.
//
// Function values cannot cross a process boundary, so every worker is
// registered under a name, normally from an init function, and the parent
// re-executes its own binary to reach the same registry. Init must therefore
// be the first call in main (or TestMain) of any program that starts handles:
//
//	func main() {
//		worker.Init()
//		// regular program
//	}
package worker

import (
	"fmt"
	"reflect"
	"sync"
)

// Func is a plain worker: it runs to completion in the child and produces
// one result or one error.
type Func func(args ...any) (any, error)

// GeneratorFunc is a generator-producing worker: invoked once with the bound
// arguments, it returns the step function that the conversation drive loop
// resumes with each value sent by the parent.
type GeneratorFunc func(args ...any) StepFunc

// Registration describes a registered worker to the handle package.
type Registration struct {
	Name      string
	Generator bool
}

type entry struct {
	name      string
	fn        Func
	gen       GeneratorFunc
	generator bool
}

var (
	regMu  sync.Mutex
	byName = make(map[string]entry)
	byFn   = make(map[uintptr]entry)
)

// Register records target under name. The target must be a Func or a
// GeneratorFunc (or an untyped function of the same shape); anything else,
// a duplicate name, or a function registered twice panics, since registration
// is an init-time programming error.
func Register(name string, target any) {
	e := entry{name: name}
	switch t := target.(type) {
	case Func:
		e.fn = t
	case func(args ...any) (any, error):
		e.fn = t
	case GeneratorFunc:
		e.gen = t
		e.generator = true
	case func(args ...any) StepFunc:
		e.gen = t
		e.generator = true
	default:
		panic(fmt.Sprintf("worker: %q must be a worker.Func or worker.GeneratorFunc, got %T", name, target))
	}

	ptr := fnPointer(target)

	regMu.Lock()
	defer regMu.Unlock()
	if prev, ok := byName[name]; ok && fnPointerEntry(prev) != ptr {
		panic(fmt.Sprintf("worker: name %q already registered", name))
	}
	if prev, ok := byFn[ptr]; ok && prev.name != name {
		panic(fmt.Sprintf("worker: function already registered as %q", prev.name))
	}
	byName[name] = e
	byFn[ptr] = e
}

// Resolve maps a function value back to its registration. The handle package
// uses it to translate the target passed to handle.New into the name the
// child's registry understands.
func Resolve(target any) (Registration, error) {
	switch target.(type) {
	case Func, func(args ...any) (any, error), GeneratorFunc, func(args ...any) StepFunc:
	default:
		return Registration{}, fmt.Errorf("worker: target must be a worker.Func or worker.GeneratorFunc, got %T", target)
	}
	regMu.Lock()
	e, ok := byFn[fnPointer(target)]
	regMu.Unlock()
	if !ok {
		return Registration{}, fmt.Errorf("worker: target not registered; call worker.Register in an init function")
	}
	return Registration{Name: e.name, Generator: e.generator}, nil
}

// ResolveName looks a registration up by its registered name, for callers
// that carry the name rather than the function value (manifest-driven jobs).
func ResolveName(name string) (Registration, error) {
	e, ok := lookup(name)
	if !ok {
		return Registration{}, fmt.Errorf("worker %q not registered", name)
	}
	return Registration{Name: e.name, Generator: e.generator}, nil
}

func lookup(name string) (entry, bool) {
	regMu.Lock()
	e, ok := byName[name]
	regMu.Unlock()
	return e, ok
}

func fnPointer(target any) uintptr {
	return reflect.ValueOf(target).Pointer()
}

func fnPointerEntry(e entry) uintptr {
	if e.generator {
		return fnPointer(e.gen)
	}
	return fnPointer(e.fn)
}
