//go:build unix && !linux

package handle

import (
	"os/exec"
	"syscall"
)

// Only Linux can tie the child to the parent in the kernel; elsewhere the
// flag degrades to plain process-group placement.
func configureSysProcAttr(cmd *exec.Cmd, killAtParentExit bool) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
