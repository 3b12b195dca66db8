//go:build linux

package bind

import (
	"os/exec"
	"syscall"
)

// detach puts a spawned shell command in its own session, so it survives
// the daemon's own signal handling (spec.md §4.3.4, "detached").
func detach(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
