package supervisor

import (
	"errors"
	"fmt"
)

// ErrShutdown is returned by Start once Shutdown has run.
var ErrShutdown = errors.New("supervisor is shut down")

// spawnError signals that the llama-server binary could not be executed.
type spawnError struct {
	bin string
	err error
}

func (e spawnError) Error() string { return fmt.Sprintf("start %s: %v", e.bin, e.err) }
func (e spawnError) Unwrap() error { return e.err }

// IsSpawnError reports whether err came from a failed llama-server spawn.
func IsSpawnError(err error) bool {
	var e spawnError
	return errors.As(err, &e)
}

// teardownError describes a signaling or waiting failure during stop. It is
// only ever logged.
type teardownError struct {
	pid int
	op  string
	err error
}

func (e teardownError) Error() string { return fmt.Sprintf("%s pid %d: %v", e.op, e.pid, e.err) }
func (e teardownError) Unwrap() error { return e.err }

// IsTeardownError reports whether err describes a failure while stopping the child.
func IsTeardownError(err error) bool {
	var e teardownError
	return errors.As(err, &e)
}
