package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\nbin_dir: /opt/llama\ndescriptor: /m/model.mmj\nllama_port: 8181\nllama_args: \"-c 4096 --threads 4\"\ncors_origins:\n  - http://localhost:5173\n")
	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Addr != ":9999" || cfg.BinDir != "/opt/llama" || cfg.Descriptor != "/m/model.mmj" || cfg.LlamaPort != 8181 || cfg.LlamaArgs != "-c 4096 --threads 4" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","frontend_dir":"/www","probe_attempts":3,"probe_interval_seconds":1,"stop_grace_seconds":9}`)
	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Addr != ":7070" || cfg.FrontendDir != "/www" || cfg.ProbeAttempts != 3 || cfg.ProbeIntervalSeconds != 1 || cfg.StopGraceSeconds != 9 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nllama_host=\"10.0.0.2\"\nlog_level=\"debug\"\ncors_enabled=true\n")
	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Addr != ":8081" || cfg.LlamaHost != "10.0.0.2" || cfg.LogLevel != "debug" || !cfg.CORSEnabled {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil { t.Fatalf("expected error on empty path") }
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil { t.Fatalf("expected unsupported extension error") }
	if _, err := Load(filepath.Join(d, "missing.yaml")); err == nil { t.Fatalf("expected error for nonexistent file") }
	bad := map[string]string{
		"bad.yaml": "addr: :8080\n: broken\n",
		"bad.json": `{ "addr": ":8080", "bin_dir": }`,
		"bad.toml": "addr=:8080\nbin_dir\n",
	}
	for name, content := range bad {
		if _, err := Load(writeTempFile(t, d, name, content)); err == nil {
			t.Fatalf("%s: expected unmarshal error", name)
		}
	}
}

func TestMergeFillsUnset(t *testing.T) {
	cfg := Config{Addr: ":1", LlamaPort: 9000}.Merge(Defaults())
	if cfg.Addr != ":1" || cfg.LlamaPort != 9000 {
		t.Fatalf("explicit values overwritten: %+v", cfg)
	}
	def := Defaults()
	if cfg.BinDir != def.BinDir || cfg.Descriptor != def.Descriptor || cfg.LlamaHost != "127.0.0.1" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.ProbeAttempts != 30 || cfg.ProbeInterval() != 2*time.Second || cfg.ProbeTimeout() != 2*time.Second || cfg.StopGrace() != 5*time.Second {
		t.Fatalf("unexpected probe/stop defaults: %+v", cfg)
	}
}
