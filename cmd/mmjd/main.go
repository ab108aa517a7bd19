package main

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mmjd/internal/app"
	"mmjd/internal/common/fsutil"
	"mmjd/internal/config"
	"mmjd/internal/descriptor"
	"mmjd/internal/gateway"
	"mmjd/internal/probe"
	"mmjd/internal/supervisor"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mmjd:", err)
		os.Exit(1)
	}
}

// rootOptions holds what the root command's flags bind to.
type rootOptions struct {
	flags      config.Config
	configPath string
}

func newRootCmd() *cobra.Command { return newRootCmdWith(&rootOptions{}) }

func newRootCmdWith(o *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "mmjd",
		Short:         "Run llama-server for a packaged model and serve the chat UI in front of it",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, o)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			if err != nil {
				return err
			}
			return serve(cfg, log)
		},
	}

	f := root.Flags()
	f.StringVar(&o.configPath, "config", os.Getenv("MMJD_CONFIG"), "Path to a YAML, JSON or TOML config file (env MMJD_CONFIG)")
	f.StringVar(&o.flags.Addr, "addr", "", "Gateway listen address (default 0.0.0.0:3000)")
	f.StringVar(&o.flags.FrontendDir, "frontend-dir", "", "Directory with the static chat UI (default ./frontend)")
	f.StringVar(&o.flags.BinDir, "bin-dir", "", "Directory containing llama-server; empty string searches PATH (default ./bin)")
	f.StringVar(&o.flags.Descriptor, "descriptor", "", "Path to the model descriptor (.mmj)")
	f.StringVar(&o.flags.LlamaHost, "llama-host", "", "Host the readiness probe and proxy use to reach llama-server (default 127.0.0.1)")
	f.IntVar(&o.flags.LlamaPort, "llama-port", 0, "Port passed to llama-server (default 8080)")
	f.StringVar(&o.flags.LlamaArgs, "llama-args", "", "Extra llama-server arguments, shell-quoted")
	f.IntVar(&o.flags.ProbeAttempts, "probe-attempts", 0, "Readiness attempts before giving up (default 30)")
	f.IntVar(&o.flags.ProbeIntervalSeconds, "probe-interval", 0, "Seconds between readiness attempts (default 2)")
	f.IntVar(&o.flags.ProbeTimeoutSeconds, "probe-timeout", 0, "Per-attempt timeout in seconds (default 2)")
	f.IntVar(&o.flags.StopGraceSeconds, "stop-grace", 0, "Seconds between SIGTERM and SIGKILL when stopping llama-server (default 5)")
	f.StringVar(&o.flags.LogLevel, "log-level", os.Getenv("MMJD_LOG_LEVEL"), "Log level: debug|info|warn|error (env MMJD_LOG_LEVEL)")
	f.StringVar(&o.flags.LogFormat, "log-format", "", "Log format: json|console (default json)")
	f.BoolVar(&o.flags.CORSEnabled, "cors", false, "Enable CORS on the gateway")
	f.StringSliceVar(&o.flags.CORSOrigins, "cors-origins", splitCSV(os.Getenv("MMJD_CORS_ORIGINS")), "Allowed CORS origins, comma-separated (env MMJD_CORS_ORIGINS, default *)")

	root.AddCommand(newResolveCmd(), newVersionCmd())
	return root
}

// resolveConfig merges flags over the config file over the defaults.
// Only flags set on the command line (or through their env default) count.
func resolveConfig(cmd *cobra.Command, o *rootOptions) (config.Config, error) {
	var fileCfg config.Config
	if o.configPath != "" {
		path, err := fsutil.ExpandHome(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
		c, err := config.Load(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
		fileCfg = c
	}
	// --bin-dir "" is a deliberate PATH lookup and must survive Merge.
	binDirSet := cmd.Flags().Changed("bin-dir")
	cfg := o.flags.Merge(fileCfg).Merge(config.Defaults())
	if binDirSet {
		cfg.BinDir = o.flags.BinDir
	}
	for _, p := range []*string{&cfg.FrontendDir, &cfg.BinDir, &cfg.Descriptor} {
		expanded, err := fsutil.ExpandHome(*p)
		if err != nil {
			return config.Config{}, err
		}
		*p = expanded
	}
	return cfg, nil
}

func serve(cfg config.Config, log zerolog.Logger) error {
	extra, err := supervisor.ParseArgs(cfg.LlamaArgs)
	if err != nil {
		return fmt.Errorf("llama args: %w", err)
	}
	sup := supervisor.New(supervisor.Options{
		Port:        cfg.LlamaPort,
		ExtraArgs:   extra,
		GracePeriod: cfg.StopGrace(),
		Logger:      log.With().Str("component", "supervisor").Logger(),
	})
	release := sup.HandleSignals(cfg.StopGrace())
	defer release()

	prober := probe.New(log.With().Str("component", "probe").Logger())
	prober.Attempts = cfg.ProbeAttempts
	prober.Interval = cfg.ProbeInterval()
	prober.Timeout = cfg.ProbeTimeout()

	upstream := &url.URL{Scheme: "http", Host: net.JoinHostPort(cfg.LlamaHost, strconv.Itoa(cfg.LlamaPort))}
	mux := gateway.NewMux(sup, gateway.Options{
		Upstream:           upstream,
		FrontendDir:        cfg.FrontendDir,
		CORSEnabled:        cfg.CORSEnabled,
		CORSAllowedOrigins: cfg.CORSOrigins,
		Logger:             log.With().Str("component", "gateway").Logger(),
	})
	srv := gateway.NewServer(cfg.Addr, mux)
	if !fsutil.PathExists(cfg.FrontendDir) {
		log.Warn().Str("frontend_dir", cfg.FrontendDir).Msg("frontend directory not found; only the API will be useful")
	}

	log.Info().Str("event", "boot").Str("addr", cfg.Addr).Str("descriptor", cfg.Descriptor).Str("bin_dir", cfg.BinDir).Msg("mmjd starting")
	return app.Run(sup, prober, srv, app.Config{
		BinDir:      cfg.BinDir,
		Descriptor:  cfg.Descriptor,
		LlamaHost:   cfg.LlamaHost,
		LlamaPort:   cfg.LlamaPort,
		GracePeriod: cfg.StopGrace(),
	}, log)
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [descriptor]",
		Short: "Print the model file a descriptor points to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Defaults().Descriptor
			if len(args) == 1 {
				path = args[0]
			}
			path, err := fsutil.ExpandHome(path)
			if err != nil {
				return err
			}
			model, err := descriptor.Load(path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), model)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "mmjd", version)
		},
	}
}

// splitCSV splits a comma-separated list, trimming blanks.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
