package supervisor

import (
	"errors"
	"os"
	"time"
)

// stopMode records how a child went away.
type stopMode string

const (
	stopExited   stopMode = "exited"
	stopGraceful stopMode = "graceful"
	stopForced   stopMode = "forced"
)

// killWait bounds the wait for the child to be reaped after SIGKILL.
const killWait = time.Second

// terminate asks the process group led by p to exit and escalates to a kill
// once grace has passed. done must be closed when p has been reaped. Signal
// failures do not stop the sequence; they are joined into the returned error.
func terminate(p *os.Process, done <-chan struct{}, grace time.Duration) (stopMode, error) {
	var errs []error
	if err := signalGroup(p, false); err != nil {
		select {
		case <-done:
			return stopExited, nil
		default:
		}
		errs = append(errs, teardownError{pid: p.Pid, op: "terminate", err: err})
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-done:
		return stopGraceful, errors.Join(errs...)
	case <-timer.C:
	}

	if err := signalGroup(p, true); err != nil {
		errs = append(errs, teardownError{pid: p.Pid, op: "kill", err: err})
	}
	select {
	case <-done:
	case <-time.After(killWait):
		errs = append(errs, teardownError{pid: p.Pid, op: "wait", err: errors.New("still running after kill")})
	}
	return stopForced, errors.Join(errs...)
}
