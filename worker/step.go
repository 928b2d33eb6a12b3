package worker

// StepFunc resumes a generator-producing worker. Each call receives the
// value the parent sent (nil for the initial step, which runs before any
// value can have arrived) and reports what the generator did next.
type StepFunc func(in any) Step

// Step is the tagged result of one resume: a yielded value, normal
// completion, or a failure that ends the child with a captured error.
type Step struct {
	value any
	done  bool
	err   error
}

// Yielded suspends the worker with v; the parent observes v through Get and
// the worker resumes when the parent calls Send or Go.
func Yielded(v any) Step {
	return Step{value: v}
}

// Done finishes the worker normally.
func Done() Step {
	return Step{done: true}
}

// Fail finishes the worker with err captured as the child's error outcome.
func Fail(err error) Step {
	return Step{err: err}
}
