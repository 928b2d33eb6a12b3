package config

import (
	"fmt"
	"time"
)

// Duration wraps time.Duration for YAML unmarshalling.
type Duration struct {
	time.Duration
	explicit bool
}

// UnmarshalText parses a textual duration, accepting empty strings.
func (d *Duration) UnmarshalText(text []byte) error {
	d.explicit = true
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = dur
	return nil
}

// MarshalText renders the duration using time.Duration formatting.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// IsSet reports whether the duration was explicitly provided or non-zero.
func (d Duration) IsSet() bool {
	return d.explicit || d.Duration != 0
}

// Manifest mirrors the jobs.yaml document structure.
type Manifest struct {
	Version string              `yaml:"version"`
	Name    string              `yaml:"name"`
	Jobs    map[string]*JobSpec `yaml:"jobs"`
}

// JobSpec describes one unit of work to run under a scoped handle.
type JobSpec struct {
	// Worker names a function registered with worker.Register in the binary
	// running the manifest. The builtin "exec" worker runs Args as a command
	// line.
	Worker string `yaml:"worker"`

	// Args are bound to the worker at handle construction. Scalars decode to
	// their natural Go types and cross the process boundary as such.
	Args []any `yaml:"args"`

	// Timeout bounds the join at scope exit.
	Timeout Duration `yaml:"timeout"`

	Terminate bool `yaml:"terminate"`
	Reraise   bool `yaml:"reraise"`

	// KillAtParentExit ties the child to the CLI's lifetime.
	KillAtParentExit bool `yaml:"kill-at-parent-exit"`
}
