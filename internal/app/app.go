package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/specialistvlad/meshviz/internal/config"
	"github.com/specialistvlad/meshviz/internal/ctxlog"
	"github.com/specialistvlad/meshviz/internal/engine"
	"github.com/specialistvlad/meshviz/internal/ingress"
	"github.com/specialistvlad/meshviz/internal/inmemorytopology"
	"github.com/specialistvlad/meshviz/internal/metrics"
	"github.com/specialistvlad/meshviz/internal/observer"
	"github.com/specialistvlad/meshviz/internal/socketio"
	"github.com/specialistvlad/meshviz/internal/traffic"
	"github.com/specialistvlad/meshviz/internal/wsobserver"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx     context.Context
	config  config.Config
	logger  *slog.Logger
	logFile io.Closer

	engine   *engine.Engine
	metrics  *metrics.Registry
	socketio *socketio.Server
	handler  http.Handler

	closeOnce sync.Once
	closeErr  error
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, graph and
// observer registry.
func NewApp(outW io.Writer, cfg config.Config) (*App, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger, logFile, err := newLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile, outW)
	if err != nil {
		return nil, err
	}
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		ctx:     ctx,
		config:  cfg,
		logger:  logger,
		logFile: logFile,
	}

	registryOpts := []observer.Option{
		observer.WithQueueSize(cfg.ObserverQueueSize),
		observer.WithWriteTimeout(cfg.WriteTimeout),
	}
	trackerOpts := []traffic.Option{traffic.WithTTL(cfg.PacketTTL)}
	var engineOpts []engine.Option
	if cfg.MetricsEnabled {
		a.metrics = metrics.NewRegistry().WithRuntimeCollectors()
		registryOpts = append(registryOpts, observer.WithRecorder(a.metrics))
		trackerOpts = append(trackerOpts, traffic.WithRecorder(a.metrics))
		engineOpts = append(engineOpts, engine.WithRecorder(a.metrics))
	}
	engineOpts = append(engineOpts, engine.WithTracker(traffic.New(ctx, trackerOpts...)))

	a.engine = engine.New(inmemorytopology.New(), observer.New(ctx, registryOpts...), engineOpts...)
	a.handler = a.routes()

	logger.Debug("Application assembled.", "socketio", cfg.SocketIOEnabled, "metrics", cfg.MetricsEnabled)
	return a, nil
}

func (a *App) routes() http.Handler {
	api := http.NewServeMux()
	ingress.New(a.ctx, a.engine).Register(api)

	var apiHandler http.Handler = api
	if a.metrics != nil {
		apiHandler = a.metrics.Middleware(api)
	}

	mux := http.NewServeMux()
	mux.Handle("/", apiHandler)
	mux.Handle("/ws", wsobserver.NewHandler(a.engine))
	if a.config.SocketIOEnabled {
		a.socketio = socketio.NewServer(a.ctx, a.engine)
		mux.Handle(socketio.Path, a.socketio.Handler())
	}
	if a.metrics != nil {
		mux.Handle("GET /metrics", a.metrics.Handler())
	}
	return mux
}

// Handler returns the root HTTP handler. This is primarily for testing.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Engine returns the application's engine. This is primarily for testing.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Close releases everything NewApp acquired. Run calls it on exit; later
// calls are no-ops.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		if a.socketio != nil {
			a.socketio.Close()
		}
		a.engine.Close()
		if err := a.logFile.Close(); err != nil {
			a.closeErr = fmt.Errorf("failed to close log file: %w", err)
		}
	})
	return a.closeErr
}
