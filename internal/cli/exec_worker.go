package cli

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/Paintersrp/parley/worker"
)

// ExecWorkerName is the builtin worker every parley binary registers: it runs
// its arguments as a command line inside the child and returns the combined
// output, so manifests work without compiling custom workers in.
const ExecWorkerName = "exec"

func init() {
	worker.Register(ExecWorkerName, worker.Func(execWorker))
}

func execWorker(args ...any) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("exec worker needs a command")
	}
	argv := make([]string, len(args))
	for i, a := range args {
		s, ok := a.(string)
		if !ok {
			return nil, fmt.Errorf("exec worker argument %d must be a string, got %T", i, a)
		}
		argv[i] = s
	}

	out, err := exec.Command(argv[0], argv[1:]...).CombinedOutput()
	if err != nil {
		trimmed := bytes.TrimSpace(out)
		if len(trimmed) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", argv[0], err, trimmed)
		}
		return nil, fmt.Errorf("%s: %w", argv[0], err)
	}
	return string(bytes.TrimSpace(out)), nil
}
