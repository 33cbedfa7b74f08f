//go:build windows

package main

import (
	"os/exec"
	"syscall"
)

// detach starts the child without a console attached to this one
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | 0x00000008, // DETACHED_PROCESS
	}
}
