//go:build windows

package handle

import (
	"errors"
	"os"
	"os/exec"
)

// Without job objects only the direct child can be killed; grandchildren are
// the caller's problem, as on any best-effort platform.
func killProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
