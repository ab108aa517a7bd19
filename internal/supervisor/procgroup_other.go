//go:build !unix

package supervisor

import (
	"os"
	"os/exec"
)

func setProcessGroup(cmd *exec.Cmd) {}

// signalGroup terminates p alone. There is no graceful termination request
// for a foreign process here, so both phases end the process.
func signalGroup(p *os.Process, force bool) error {
	return p.Kill()
}
