package supervisor

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// shutdownSignals are interposed on by HandleSignals.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// HandleSignals stops the child when the process receives SIGINT or SIGTERM.
// After the stop the signal's default disposition is restored and the signal
// is delivered again, so the process still terminates the way it would have
// without a handler. The returned func uninstalls the handler.
func (s *Supervisor) HandleSignals(grace time.Duration) (release func()) {
	sigs := make(chan os.Signal, 1)
	quit := make(chan struct{})
	signal.Notify(sigs, shutdownSignals...)
	go func() {
		select {
		case sig := <-sigs:
			s.log.Info().Str("event", "signal").Str("signal", sig.String()).Msg("received signal, stopping llama-server")
			s.Shutdown(grace)
			signal.Reset(sig)
			raise(sig)
		case <-quit:
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigs)
			close(quit)
		})
	}
}
