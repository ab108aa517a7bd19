package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Defaults via Merge.
type Config struct {
	Addr                 string   `json:"addr" yaml:"addr" toml:"addr"`
	FrontendDir          string   `json:"frontend_dir" yaml:"frontend_dir" toml:"frontend_dir"`
	BinDir               string   `json:"bin_dir" yaml:"bin_dir" toml:"bin_dir"`
	Descriptor           string   `json:"descriptor" yaml:"descriptor" toml:"descriptor"`
	LlamaHost            string   `json:"llama_host" yaml:"llama_host" toml:"llama_host"`
	LlamaPort            int      `json:"llama_port" yaml:"llama_port" toml:"llama_port"`
	LlamaArgs            string   `json:"llama_args" yaml:"llama_args" toml:"llama_args"`
	ProbeAttempts        int      `json:"probe_attempts" yaml:"probe_attempts" toml:"probe_attempts"`
	ProbeIntervalSeconds int      `json:"probe_interval_seconds" yaml:"probe_interval_seconds" toml:"probe_interval_seconds"`
	ProbeTimeoutSeconds  int      `json:"probe_timeout_seconds" yaml:"probe_timeout_seconds" toml:"probe_timeout_seconds"`
	StopGraceSeconds     int      `json:"stop_grace_seconds" yaml:"stop_grace_seconds" toml:"stop_grace_seconds"`
	LogLevel             string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat            string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	CORSEnabled          bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins          []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Addr:                 "0.0.0.0:3000",
		FrontendDir:          "./frontend",
		BinDir:               "./bin",
		Descriptor:           "./models/Qwen3 VL 4B Thinking/model.mmj",
		LlamaHost:            "127.0.0.1",
		LlamaPort:            8080,
		ProbeAttempts:        30,
		ProbeIntervalSeconds: 2,
		ProbeTimeoutSeconds:  2,
		StopGraceSeconds:     5,
		LogLevel:             "info",
		LogFormat:            "json",
	}
}

// Merge returns c with every unspecified field taken from base.
func (c Config) Merge(base Config) Config {
	out := c
	if out.Addr == "" {
		out.Addr = base.Addr
	}
	if out.FrontendDir == "" {
		out.FrontendDir = base.FrontendDir
	}
	if out.BinDir == "" {
		out.BinDir = base.BinDir
	}
	if out.Descriptor == "" {
		out.Descriptor = base.Descriptor
	}
	if out.LlamaHost == "" {
		out.LlamaHost = base.LlamaHost
	}
	if out.LlamaPort <= 0 {
		out.LlamaPort = base.LlamaPort
	}
	if out.LlamaArgs == "" {
		out.LlamaArgs = base.LlamaArgs
	}
	if out.ProbeAttempts <= 0 {
		out.ProbeAttempts = base.ProbeAttempts
	}
	if out.ProbeIntervalSeconds <= 0 {
		out.ProbeIntervalSeconds = base.ProbeIntervalSeconds
	}
	if out.ProbeTimeoutSeconds <= 0 {
		out.ProbeTimeoutSeconds = base.ProbeTimeoutSeconds
	}
	if out.StopGraceSeconds <= 0 {
		out.StopGraceSeconds = base.StopGraceSeconds
	}
	if out.LogLevel == "" {
		out.LogLevel = base.LogLevel
	}
	if out.LogFormat == "" {
		out.LogFormat = base.LogFormat
	}
	if !out.CORSEnabled {
		out.CORSEnabled = base.CORSEnabled
	}
	if len(out.CORSOrigins) == 0 {
		out.CORSOrigins = append([]string(nil), base.CORSOrigins...)
	}
	return out
}

// ProbeInterval is the sleep between readiness attempts.
func (c Config) ProbeInterval() time.Duration {
	return time.Duration(c.ProbeIntervalSeconds) * time.Second
}

// ProbeTimeout is the per-request readiness timeout.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// StopGrace is how long the child gets to exit after SIGTERM.
func (c Config) StopGrace() time.Duration {
	return time.Duration(c.StopGraceSeconds) * time.Second
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
