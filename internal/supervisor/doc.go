// Package supervisor owns the single llama-server child of this process.
//
//   - launcher.go: LaunchSpec and Launch, which spawn llama-server in its own
//     process group with stdio discarded.
//   - procgroup_unix.go / procgroup_other.go: process-group setup and signaling,
//     with a single-process fallback where groups do not exist.
//   - terminate.go: graceful-then-forceful group termination as one operation.
//   - supervisor.go: Supervisor with Start/Stop/Shutdown and the state machine
//     absent -> starting -> running -> stopping -> absent.
//   - signals.go: SIGINT/SIGTERM interposition that stops the child and then
//     re-delivers the signal with its default disposition.
//   - metrics.go: Prometheus collectors for child lifecycle events.
//
// Only Start and Stop/Shutdown mutate the child handle; everything else reads
// snapshots.
package supervisor
