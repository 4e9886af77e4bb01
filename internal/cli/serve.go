package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/specialistvlad/meshviz/internal/app"
	"github.com/specialistvlad/meshviz/internal/config"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	configPath   string
	listen       string
	logLevel     string
	logFormat    string
	logFile      string
	queueSize    int
	writeTimeout time.Duration
	packetTTL    time.Duration
	socketIO     bool
	metrics      bool
}

// runServer starts the application with cfg and blocks until ctx ends.
func runServer(outW io.Writer) func(context.Context, config.Config) error {
	return func(ctx context.Context, cfg config.Config) error {
		a, err := app.NewApp(outW, cfg)
		if err != nil {
			return usageError(err.Error())
		}
		return a.Run(ctx)
	}
}

func newServeCmd(run func(context.Context, config.Config) error) *cobra.Command {
	defaults := config.Default()
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the event ingress and observer server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			slog.Debug("CLI parser finished successfully.", "config", cfg)
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "Path to an .hcl, .yaml or .yml config file.")
	f.StringVar(&opts.listen, "listen", defaults.Listen, "Address to listen on.")
	f.StringVar(&opts.logLevel, "log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	f.StringVar(&opts.logFormat, "log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	f.StringVar(&opts.logFile, "log-file", defaults.LogFile, "Also append JSON logs to this file.")
	f.IntVar(&opts.queueSize, "queue-size", defaults.ObserverQueueSize, "Messages buffered per observer before it is detached as too slow.")
	f.DurationVar(&opts.writeTimeout, "write-timeout", defaults.WriteTimeout, "Upper bound on a single write to one observer.")
	f.DurationVar(&opts.packetTTL, "packet-ttl", defaults.PacketTTL, "How long a sent packet is tracked before it is counted as lost.")
	f.BoolVar(&opts.socketIO, "socketio", defaults.SocketIOEnabled, "Serve socket.io observers at /socket.io/.")
	f.BoolVar(&opts.metrics, "metrics", defaults.MetricsEnabled, "Serve Prometheus metrics at /metrics.")
	return cmd
}

// resolveConfig loads the config file, if any, and lets explicitly set
// flags override it.
func resolveConfig(cmd *cobra.Command, opts *serveOptions) (config.Config, error) {
	cfg, err := config.Load(cmd.Context(), opts.configPath)
	if err != nil {
		return config.Config{}, usageError(err.Error())
	}

	changed := cmd.Flags().Changed
	if changed("listen") {
		cfg.Listen = opts.listen
	}
	if changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if changed("log-file") {
		cfg.LogFile = opts.logFile
	}
	if changed("queue-size") {
		cfg.ObserverQueueSize = opts.queueSize
	}
	if changed("write-timeout") {
		cfg.WriteTimeout = opts.writeTimeout
	}
	if changed("packet-ttl") {
		cfg.PacketTTL = opts.packetTTL
	}
	if changed("socketio") {
		cfg.SocketIOEnabled = opts.socketIO
	}
	if changed("metrics") {
		cfg.MetricsEnabled = opts.metrics
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, usageError(err.Error())
	}
	return cfg, nil
}
