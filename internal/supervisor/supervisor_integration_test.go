//go:build integration && unix

package supervisor

import (
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"mmjd/internal/probe"
)

// buildFakeServer compiles testdata/fake_llama_server.go into <dir>/llama-server.
func buildFakeServer(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cmd := exec.Command("go", "build", "-o", filepath.Join(dir, ServerBinary), "./testdata/fake_llama_server.go")
	cmd.Dir = "."
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("build fake llama-server: %v: %s", err, string(out))
	}
	return dir
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil { t.Fatalf("listen: %v", err) }
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestSpawnProbeStop(t *testing.T) {
	bin := buildFakeServer(t)
	desc := filepath.Join(t.TempDir(), "model.mmj")
	if err := os.WriteFile(desc, []byte(`{"files":{"gguf":"q.gguf"}}`), 0o644); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
	t.Setenv("FAKE_LLAMA_WARMUP", "1s")
	port := freePort(t)
	s := New(Options{Port: port})
	if err := s.Start(bin, desc); err != nil { t.Fatalf("start: %v", err) }
	defer s.Stop(2 * time.Second)

	p := probe.New(s.log)
	p.Interval = 200 * time.Millisecond
	p.Attempts = 25
	if !p.WaitUntilReady("127.0.0.1", port) {
		t.Fatalf("fake llama-server never became ready")
	}
	s.MarkReady()
	pid := s.Snapshot().PID
	s.Stop(2 * time.Second)
	if s.State() != StateAbsent { t.Fatalf("state=%s", s.State()) }
	if !processGone(pid) {
		time.Sleep(500 * time.Millisecond)
		if !processGone(pid) { t.Fatalf("pid %d still running", pid) }
	}
}
