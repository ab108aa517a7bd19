//go:build !unix

package supervisor

import (
	"os"
	"syscall"
)

// raise ends the process with the conventional 128+signal status; signals
// cannot be re-delivered to self here.
func raise(sig os.Signal) {
	if s, ok := sig.(syscall.Signal); ok {
		os.Exit(128 + int(s))
	}
	os.Exit(1)
}
