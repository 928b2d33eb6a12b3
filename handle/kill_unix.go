//go:build !windows

package handle

import (
	"errors"
	"os/exec"
	"syscall"
)

// killProcess delivers SIGKILL to the child's process group so helpers the
// worker spawned die with it. A group that is already gone is not an error.
func killProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if err != nil && !errors.Is(err, syscall.ESRCH) {
		return err
	}
	return nil
}
