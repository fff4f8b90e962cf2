package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/apibase/internal/application"
	"github.com/eugenenazirov/apibase/internal/config"
	"github.com/eugenenazirov/apibase/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("apibase-server", "API base URL service - resolves and serves the endpoint client applications should call")
	overrides := registerFlags(kingpinApp)

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	cfg, err := config.Load(overrides.build())
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

type flagValues struct {
	configFile     *string
	port           *string
	profile        *string
	mode           *string
	envFiles       *[]string
	logLevel       *string
	rateLimitRPS   *float64
	rateLimitBurst *int
}

func registerFlags(app *kingpin.Application) *flagValues {
	return &flagValues{
		configFile:     app.Flag("config", "Path to YAML configuration file").String(),
		port:           app.Flag("port", "HTTP port exposed by the service").String(),
		profile:        app.Flag("profile", "Resolution profile (react or vercel)").String(),
		mode:           app.Flag("mode", "Force the execution mode instead of reading the profile's mode variable").String(),
		envFiles:       app.Flag("env-file", "Dotenv file feeding the resolution (repeatable)").Strings(),
		logLevel:       app.Flag("log-level", "Log level").Enum("debug", "info", "warn", "error"),
		rateLimitRPS:   app.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64(),
		rateLimitBurst: app.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int(),
	}
}

func (f *flagValues) build() *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile: *f.configFile,
		EnvFiles:   *f.envFiles,
	}

	if *f.port != "" {
		overrides.Port = f.port
	}
	if *f.profile != "" {
		overrides.Profile = f.profile
	}
	if *f.mode != "" {
		overrides.Mode = f.mode
	}
	if *f.logLevel != "" {
		overrides.LogLevel = f.logLevel
	}
	if *f.rateLimitRPS >= 0 {
		overrides.RateLimitRPS = f.rateLimitRPS
	}
	if *f.rateLimitBurst >= 0 {
		overrides.RateLimitBurst = f.rateLimitBurst
	}

	return overrides
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("shutting down server", zap.Stringer("signal", sig))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
