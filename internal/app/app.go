// Package app runs the startup sequence: spawn llama-server in the background,
// wait for it to answer, then serve the gateway until it returns. The child is
// stopped on every way out.
package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Supervisor is the lifecycle owner of the llama-server child.
type Supervisor interface {
	Start(binDir, descriptorPath string) error
	Shutdown(grace time.Duration)
	MarkReady()
}

// Prober blocks until the child is ready or its attempt budget is spent.
type Prober interface {
	WaitUntilReady(host string, port int) bool
}

// Gateway serves traffic until it fails or is shut down. *http.Server satisfies it.
type Gateway interface {
	ListenAndServe() error
}

// Config is the part of the service configuration the startup sequence needs.
type Config struct {
	BinDir      string
	Descriptor  string
	LlamaHost   string
	LlamaPort   int
	GracePeriod time.Duration
}

// probeTimeoutError signals that llama-server never became ready.
type probeTimeoutError struct {
	url string
	err error // launch error, if the launch failed too
}

func (e probeTimeoutError) Error() string {
	msg := "llama-server not responding at " + e.url
	if e.err != nil {
		msg += " (launch: " + e.err.Error() + ")"
	}
	return msg
}
func (e probeTimeoutError) Unwrap() error { return e.err }

// IsProbeTimeout reports whether err means the child never became ready.
func IsProbeTimeout(err error) bool {
	var e probeTimeoutError
	return errors.As(err, &e)
}

// Run executes the startup sequence and blocks while the gateway serves.
// The gateway is started only after the prober reported ready and our own
// launch succeeded. sup.Shutdown runs before Run returns or panics.
func Run(sup Supervisor, prober Prober, gw Gateway, cfg Config, log zerolog.Logger) error {
	defer sup.Shutdown(cfg.GracePeriod)

	launched := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				sup.Shutdown(cfg.GracePeriod)
				panic(r)
			}
		}()
		launched <- sup.Start(cfg.BinDir, cfg.Descriptor)
	}()

	ready := prober.WaitUntilReady(cfg.LlamaHost, cfg.LlamaPort)
	launchErr := <-launched
	if !ready {
		err := probeTimeoutError{url: fmt.Sprintf("http://%s:%d", cfg.LlamaHost, cfg.LlamaPort), err: launchErr}
		log.Error().Str("event", "abort").Err(err).Msg("failed to start llama server")
		return err
	}
	if launchErr != nil {
		// Something answered, but it is not our child.
		log.Error().Str("event", "abort").Err(launchErr).Msg("llama-server launch failed")
		return launchErr
	}

	sup.MarkReady()
	log.Info().Str("event", "serve").Msg("proceeding to start the app")
	if err := gw.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gateway: %w", err)
	}
	return nil
}
