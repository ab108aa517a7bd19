package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	Error string `json:"error"`
	// HTTP status code.
	Code int `json:"code"`
}

// ChildStatus is returned by GET /status and describes the supervised llama-server.
type ChildStatus struct {
	// Lifecycle state of the child process: absent, starting, running, stopping.
	State string `json:"state"`
	// True once the readiness probe has seen the child answer /v1/models.
	Ready bool `json:"ready"`
	// Process ID of the child (and its process group), 0 when absent.
	PID int `json:"pid,omitempty"`
	// Absolute path of the model file passed to the child with -m.
	ModelPath string `json:"model_path,omitempty"`
	// TCP port the child listens on.
	Port int `json:"port,omitempty"`
	// Seconds since the child was spawned.
	UptimeSeconds int64 `json:"uptime_seconds"`
	// Last start or exit error observed by the supervisor (if any).
	LastError string `json:"last_error,omitempty"`
}
