//go:build unix

package supervisor

import (
	"os"
	"syscall"
	"time"
)

// raise re-delivers sig to this process. With the default disposition in
// place the process dies from the signal; the exit below only runs if the
// signal was ignored at startup.
func raise(sig os.Signal) {
	s, ok := sig.(syscall.Signal)
	if !ok {
		os.Exit(1)
	}
	_ = syscall.Kill(syscall.Getpid(), s)
	time.Sleep(time.Second)
	os.Exit(128 + int(s))
}
