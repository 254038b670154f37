//go:build windows

package process

import (
	"fmt"
	"os/exec"
	"strconv"
)

// KillProcessGroup force-kills pid and its child processes (taskkill /T).
func KillProcessGroup(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
