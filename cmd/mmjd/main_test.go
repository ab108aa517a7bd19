package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
			}
		}
	}
}

func TestResolveConfigPrecedence(t *testing.T) {
	t.Setenv("MMJD_LOG_LEVEL", "")
	t.Setenv("MMJD_CONFIG", "")
	t.Setenv("MMJD_CORS_ORIGINS", "")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mmjd.yaml")
	yaml := "addr: 127.0.0.1:4000\nllama_port: 9090\nlog_level: debug\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	o := &rootOptions{}
	root := newRootCmdWith(o)
	if err := root.ParseFlags([]string{"--config", cfgPath, "--llama-port", "7070"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := resolveConfig(root, o)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.LlamaPort != 7070 {
		t.Fatalf("flag should win over file: port=%d", cfg.LlamaPort)
	}
	if cfg.Addr != "127.0.0.1:4000" || cfg.LogLevel != "debug" {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.LlamaHost != "127.0.0.1" || cfg.BinDir != "./bin" || cfg.StopGraceSeconds != 5 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestResolveConfigEmptyBinDirMeansPATH(t *testing.T) {
	t.Setenv("MMJD_CONFIG", "")
	o := &rootOptions{}
	root := newRootCmdWith(o)
	if err := root.ParseFlags([]string{"--bin-dir", ""}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := resolveConfig(root, o)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.BinDir != "" {
		t.Fatalf("bin dir = %q, want empty", cfg.BinDir)
	}
}

func TestResolveConfigBadFile(t *testing.T) {
	o := &rootOptions{}
	root := newRootCmdWith(o)
	o.configPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := resolveConfig(root, o)
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("expected load config error, got %v", err)
	}
}

func TestResolveCommand(t *testing.T) {
	dir := t.TempDir()
	desc := filepath.Join(dir, "model.mmj")
	if err := os.WriteFile(desc, []byte(`{"name":"q","files":{"gguf":"q.gguf"}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"resolve", desc})
	if err := root.Execute(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != filepath.Join(dir, "q.gguf") {
		t.Fatalf("resolved %q", got)
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "mmjd ") {
		t.Fatalf("version output %q", out.String())
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger("warn", "json", &buf)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	log.Info().Msg("hidden")
	log.Warn().Str("event", "kill").Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), `"event":"kill"`) {
		t.Fatalf("unexpected output %q", buf.String())
	}
	if _, err := newLogger("loud", "json", &buf); err == nil {
		t.Fatalf("expected error for bad level")
	}
	if _, err := newLogger("info", "xml", &buf); err == nil {
		t.Fatalf("expected error for bad format")
	}
}
