package supervisor

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
)

// ServerBinary is the llama.cpp server executable looked up under the bin dir.
const ServerBinary = "llama-server"

// LaunchSpec describes one llama-server invocation.
type LaunchSpec struct {
	// BinDir holds the llama-server binary. Empty means look it up on PATH.
	BinDir string
	// ModelPath is the resolved absolute model file passed with -m.
	ModelPath string
	// Port is the child's listening port.
	Port int
	// ExtraArgs are appended verbatim after the fixed arguments.
	ExtraArgs []string
}

// Path returns the executable to run.
func (l LaunchSpec) Path() string {
	name := ServerBinary
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(l.BinDir, name)
}

// Args returns the command line arguments, without the executable.
func (l LaunchSpec) Args() []string {
	args := []string{"-m", l.ModelPath, "--port", strconv.Itoa(l.Port)}
	return append(args, l.ExtraArgs...)
}

// String renders the full command line for logs.
func (l LaunchSpec) String() string {
	return strings.Join(append([]string{l.Path()}, l.Args()...), " ")
}

// Launch starts llama-server as the leader of a new process group. The child's
// stdin, stdout and stderr are attached to the null device. The returned
// command has been started but not waited on.
func Launch(spec LaunchSpec) (*exec.Cmd, error) {
	cmd := exec.Command(spec.Path(), spec.Args()...)
	setProcessGroup(cmd)
	if err := cmd.Start(); err != nil {
		return nil, spawnError{bin: spec.Path(), err: err}
	}
	return cmd, nil
}

// ParseArgs splits a shell-quoted llama-server argument string such as
// `-c 4096 --alias "qwen 3"`.
func ParseArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	args, err := shellwords.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parse llama args %q: %w", s, err)
	}
	return args, nil
}
