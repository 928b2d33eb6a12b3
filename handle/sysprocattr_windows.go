//go:build windows

package handle

import "os/exec"

func configureSysProcAttr(cmd *exec.Cmd, killAtParentExit bool) {}
