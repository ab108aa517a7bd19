//go:build unix

package supervisor

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup makes the child the leader of its own process group so the
// whole tree it spawns can be signaled at once.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalGroup sends SIGTERM (or SIGKILL when force is set) to the process
// group led by p, falling back to p alone if the group cannot be signaled.
func signalGroup(p *os.Process, force bool) error {
	sig := syscall.SIGTERM
	if force {
		sig = syscall.SIGKILL
	}
	gerr := syscall.Kill(-p.Pid, sig)
	if gerr == nil {
		return nil
	}
	if perr := p.Signal(sig); perr != nil {
		return fmt.Errorf("signal %d to group: %v; to process: %w", int(sig), gerr, perr)
	}
	return nil
}
