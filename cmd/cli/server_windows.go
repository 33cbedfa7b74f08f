//go:build windows

package main

import (
	"os/exec"
	"syscall"
)

// detachProcess starts the server in a new process group so console
// Ctrl-C events are not delivered to it
func detachProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}
