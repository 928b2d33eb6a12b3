package handle

import (
	"os/exec"
	"syscall"
)

func configureSysProcAttr(cmd *exec.Cmd, killAtParentExit bool) {
	attr := &syscall.SysProcAttr{Setpgid: true}
	if killAtParentExit {
		attr.Pdeathsig = syscall.SIGKILL
	}
	cmd.SysProcAttr = attr
}
