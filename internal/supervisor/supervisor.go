package supervisor

import (
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"mmjd/internal/descriptor"
	"mmjd/pkg/types"
)

// DefaultGracePeriod is how long a child gets between SIGTERM and SIGKILL.
const DefaultGracePeriod = 5 * time.Second

// State is the lifecycle state of the supervised child.
type State int32

const (
	StateAbsent State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Options configures a Supervisor.
type Options struct {
	// Port is passed to llama-server with --port.
	Port int
	// ExtraArgs are appended to the llama-server command line.
	ExtraArgs []string
	// GracePeriod is used when Start has to stop a previously registered child.
	GracePeriod time.Duration
	Logger      zerolog.Logger
}

// child is the handle of one spawned llama-server.
type child struct {
	cmd       *exec.Cmd
	pid       int
	modelPath string
	started   time.Time
	// done is closed once cmd.Wait has returned; waitErr is valid after that.
	done    chan struct{}
	waitErr error
}

func (c *child) exited() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// childInfo is the part of the handle readable without waiting on mu.
type childInfo struct {
	pid       int
	modelPath string
	started   time.Time
	done      <-chan struct{}
	lastErr   string
}

// Supervisor owns at most one llama-server child for the life of the process.
// Start and Stop are safe for concurrent use; Stop is idempotent.
type Supervisor struct {
	opts Options
	log  zerolog.Logger

	// mu serializes Start, Stop and Shutdown, including the bounded waits of a stop.
	mu     sync.Mutex
	child  *child
	closed bool

	state atomic.Int32
	ready atomic.Bool

	infoMu sync.Mutex
	info   childInfo
}

// New returns a Supervisor with no child.
func New(opts Options) *Supervisor {
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	return &Supervisor{opts: opts, log: opts.Logger}
}

// Start resolves the model path from the descriptor and spawns llama-server
// from binDir. A child already registered is stopped first. On failure the
// reason is logged and returned and the supervisor stays absent.
func (s *Supervisor) Start(binDir, descriptorPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrShutdown
	}
	if s.child != nil {
		s.log.Warn().Str("event", "replace").Int("pid", s.child.pid).Msg("stopping previous llama-server before starting a new one")
		s.stopLocked(s.opts.GracePeriod)
	}

	s.setState(StateStarting)
	modelPath, err := descriptor.Load(descriptorPath)
	if err != nil {
		s.failStart(err, "cannot resolve model from descriptor")
		return err
	}
	s.log.Info().Str("event", "resolve").Str("descriptor", descriptorPath).Str("model", modelPath).Msg("resolved model path")

	spec := LaunchSpec{BinDir: binDir, ModelPath: modelPath, Port: s.opts.Port, ExtraArgs: s.opts.ExtraArgs}
	s.log.Info().Str("event", "spawn").Str("cmd", spec.String()).Msg("starting llama-server")
	cmd, err := Launch(spec)
	if err != nil {
		s.failStart(err, "failed to start llama-server")
		return err
	}

	c := &child{cmd: cmd, pid: cmd.Process.Pid, modelPath: modelPath, started: time.Now(), done: make(chan struct{})}
	s.child = c
	s.ready.Store(false)
	s.setInfo(childInfo{pid: c.pid, modelPath: modelPath, started: c.started, done: c.done})
	s.setState(StateRunning)
	childUp.Set(1)
	childStartsTotal.WithLabelValues("ok").Inc()
	s.log.Info().Str("event", "start").Int("pid", c.pid).Int("port", s.opts.Port).Str("model", modelPath).Msg("llama-server started")
	go s.watch(c)
	return nil
}

func (s *Supervisor) failStart(err error, msg string) {
	childStartsTotal.WithLabelValues("error").Inc()
	s.setInfo(childInfo{lastErr: err.Error()})
	s.setState(StateAbsent)
	s.log.Error().Str("event", "start_failed").Err(err).Msg(msg)
}

// watch reaps the child and records how it ended.
func (s *Supervisor) watch(c *child) {
	c.waitErr = c.cmd.Wait()
	childUp.Set(0)
	// Exits caused by Stop are reported there.
	if s.State() != StateStopping {
		if c.waitErr != nil {
			s.setLastError(c.waitErr.Error())
			s.log.Warn().Str("event", "exit").Int("pid", c.pid).Err(c.waitErr).Msg("llama-server exited")
		} else {
			s.log.Info().Str("event", "exit").Int("pid", c.pid).Msg("llama-server exited")
		}
	}
	close(c.done)
}

// Stop terminates the child's process group: SIGTERM, up to grace for it to
// exit, then SIGKILL and a short final wait. Without a child it does nothing.
// Stop never fails; teardown problems are logged and the handle is cleared
// regardless.
func (s *Supervisor) Stop(grace time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(grace)
}

// Shutdown stops the child and refuses any later Start, so a launch racing
// with process teardown cannot leave an orphan behind.
func (s *Supervisor) Shutdown(grace time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopLocked(grace)
}

func (s *Supervisor) stopLocked(grace time.Duration) {
	c := s.child
	if c == nil {
		return
	}
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	s.setState(StateStopping)
	defer func() {
		s.child = nil
		s.ready.Store(false)
		s.setInfo(childInfo{lastErr: s.lastError()})
		s.setState(StateAbsent)
	}()

	if c.exited() {
		childStopsTotal.WithLabelValues(string(stopExited)).Inc()
		s.log.Info().Str("event", "stop").Int("pid", c.pid).Msg("llama-server already exited")
		return
	}
	s.log.Info().Str("event", "stop").Int("pid", c.pid).Dur("grace", grace).Msg("stopping llama-server")
	mode, err := terminate(c.cmd.Process, c.done, grace)
	if err != nil {
		s.log.Error().Str("event", "stop_error").Int("pid", c.pid).Err(err).Msg("error while stopping llama-server")
	}
	if mode == stopForced {
		s.log.Warn().Str("event", "kill").Int("pid", c.pid).Msg("llama-server did not exit in time, killed")
	}
	childStopsTotal.WithLabelValues(string(mode)).Inc()
	s.log.Info().Str("event", "stopped").Int("pid", c.pid).Str("mode", string(mode)).Msg("llama-server stopped")
}

// MarkReady records that the readiness probe saw the child answer.
func (s *Supervisor) MarkReady() { s.ready.Store(true) }

// Ready reports whether the child was probed ready and has not exited since.
func (s *Supervisor) Ready() bool {
	if !s.ready.Load() {
		return false
	}
	s.infoMu.Lock()
	done := s.info.done
	s.infoMu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// State returns the current lifecycle state. It does not wait for a stop in progress.
func (s *Supervisor) State() State { return State(s.state.Load()) }

// Snapshot reports the child for status endpoints.
func (s *Supervisor) Snapshot() types.ChildStatus {
	ready := s.Ready()
	s.infoMu.Lock()
	info := s.info
	s.infoMu.Unlock()
	st := types.ChildStatus{
		State:     s.State().String(),
		Ready:     ready,
		PID:       info.pid,
		ModelPath: info.modelPath,
		LastError: info.lastErr,
	}
	if info.pid != 0 {
		st.Port = s.opts.Port
		st.UptimeSeconds = int64(time.Since(info.started).Seconds())
	}
	return st
}

func (s *Supervisor) setState(st State) { s.state.Store(int32(st)) }

func (s *Supervisor) setInfo(info childInfo) {
	s.infoMu.Lock()
	s.info = info
	s.infoMu.Unlock()
}

func (s *Supervisor) setLastError(msg string) {
	s.infoMu.Lock()
	s.info.lastErr = msg
	s.infoMu.Unlock()
}

func (s *Supervisor) lastError() string {
	s.infoMu.Lock()
	defer s.infoMu.Unlock()
	return s.info.lastErr
}
