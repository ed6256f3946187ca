package main

// @title Grammarpost API
// @version 1.0
// @description Grammar correction through a Dify workflow and posting of the result to Twitter

// @contact.name API Support
// @contact.url https://github.com/grammarpost/grammarpost

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/grammarpost/grammarpost/config"
	"github.com/grammarpost/grammarpost/pkg/api"
	"github.com/grammarpost/grammarpost/pkg/api/handlers"
	"github.com/grammarpost/grammarpost/pkg/dify"
	"github.com/grammarpost/grammarpost/pkg/logger"
	"github.com/grammarpost/grammarpost/pkg/metrics"
	"github.com/grammarpost/grammarpost/pkg/telemetry/tracing"
	"github.com/grammarpost/grammarpost/pkg/twitter"
	"github.com/grammarpost/grammarpost/pkg/version"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	envFiles    = flag.String("env-file", ".env,.env.local", "Comma-separated dotenv files to load")
	watchConfig = flag.Bool("watch", false, "Reload the log level when the config file changes")
	versionFlag = flag.Bool("version", false, "Print version information")
	helpFlag    = flag.Bool("help", false, "Print help information")

	// CLI overrides
	serverHost = flag.String("host", "", "Override bind address")
	serverPort = flag.Int("port", 0, "Override server port")
	logLevel   = flag.String("log-level", "", "Override log level")
	debugMode  = flag.Bool("debug", false, "Enable debug mode")
	disableUI  = flag.Bool("no-ui", false, "Do not serve the embedded form")
)

func main() {
	flag.Parse()

	if *helpFlag {
		printHelp()
		os.Exit(0)
	}

	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	loader := config.NewLoader(config.WithEnvFiles(splitList(*envFiles)...))
	cfg, err := loader.Load(*configPath, buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration:\n%s\n", err)
		os.Exit(1)
	}

	logCfg := &logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cfg.App.Debug {
		logCfg.Level = logger.DebugLevel
	}
	log := logger.New(logCfg)
	logger.SetGlobal(log)
	defer log.Close()

	build := version.Get()
	log.Info("Starting grammarpost",
		"version", build.Version,
		"buildTime", build.BuildTime,
		"gitCommit", build.GitCommit,
		"app", cfg.App.Name,
		"environment", cfg.App.Environment,
	)
	log.Debug("Configuration loaded", "config", cfg.String())

	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		log.Warn("Provider credentials missing; affected endpoints will fail until configured",
			"missing", missing)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Name, build.Version)
	if err != nil {
		log.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	metricsManager := newMetricsManager(cfg)
	if metricsManager.Enabled() {
		go func() {
			log.Info("Starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := metricsManager.StartServer(ctx, cfg.Server.Host, cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				log.Error("Metrics server error", "error", err)
			}
		}()
	}

	if *watchConfig && *configPath != "" {
		startWatcher(ctx, *configPath, loader, cfg, log)
	}

	httpServer := api.NewHTTPServer(cfg, log, newHandlers(cfg, log, metricsManager))

	serverErrChan := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	log.Info("grammarpost is running",
		"address", httpServer.Addr(),
		"api_prefix", cfg.Server.APIPrefix,
		"ui", cfg.UI.Enabled,
		"metrics_port", cfg.Metrics.Port,
	)

	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig)
	case err := <-serverErrChan:
		log.Error("HTTP server error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", "error", err)
	}

	// Stops the metrics server and watcher.
	cancel()

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Error flushing traces", "error", err)
	}

	log.Info("grammarpost stopped gracefully")
}

func newMetricsManager(cfg *config.Config) *metrics.Manager {
	metricsCfg := metrics.DefaultConfig()
	metricsCfg.Enabled = cfg.Metrics.Enabled
	metricsCfg.Port = cfg.Metrics.Port
	metricsCfg.Path = cfg.Metrics.Path
	return metrics.NewManager(metricsCfg)
}

// newHandlers builds the provider clients and the HTTP handlers on top of them.
func newHandlers(cfg *config.Config, log logger.Logger, m *metrics.Manager) *api.Handlers {
	difyClient := dify.NewClient(cfg.Dify,
		dify.WithLogger(log),
		dify.WithMetrics(m),
	)
	twitterClient := twitter.NewClient(cfg.Twitter,
		twitter.WithLogger(log),
		twitter.WithMetrics(m),
	)
	authorizer := twitter.NewAuthorizer(cfg.Twitter, twitter.WithAuthLogger(log))

	// The callback returns the user to the form, or to the API root without it.
	redirect := "/"
	if !cfg.UI.Enabled {
		redirect = cfg.Server.APIPrefix
	}

	h := &api.Handlers{
		Grammar: handlers.NewGrammarHandler(difyClient, log),
		Tweet:   handlers.NewTweetHandler(twitterClient, cfg.Twitter.MaxLength, log),
		Auth:    handlers.NewAuthHandler(authorizer, m, redirect, log),
		Health:  handlers.NewHealthHandler(cfg),
	}
	if m.Enabled() {
		h.Metrics = m
	}
	return h
}

// startWatcher applies log level changes from the config file.
// Provider credentials are read once at startup.
func startWatcher(ctx context.Context, path string, loader *config.Loader, cfg *config.Config, log logger.Logger) {
	watcher, err := config.NewWatcher(path, loader,
		config.WithErrorHandler(func(err error) {
			log.Warn("Config reload failed", "error", err)
		}),
	)
	if err != nil {
		log.Error("Failed to create config watcher", "error", err)
		return
	}

	current := config.ExtractHotReloadable(cfg)
	watcher.OnChange(func(next *config.Config) {
		reloaded := config.ExtractHotReloadable(next)
		if !current.Changed(reloaded) {
			return
		}
		log.SetLevel(logger.ParseLevel(reloaded.LogLevel))
		log.Info("Log level reloaded", "from", current.LogLevel, "to", reloaded.LogLevel)
		current = reloaded
	})

	go func() {
		defer watcher.Stop()
		if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Config watcher stopped", "error", err)
		}
	}()
}

func buildOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})

	if *serverHost != "" {
		overrides["server.host"] = *serverHost
	}
	if *serverPort != 0 {
		overrides["server.port"] = *serverPort
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	if *debugMode {
		overrides["app.debug"] = true
	}
	if *disableUI {
		overrides["ui.enabled"] = false
	}

	return overrides
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printVersion() {
	fmt.Println(version.String())
}

func printHelp() {
	fmt.Printf("grammarpost - grammar correction and tweet posting service\n\n")
	fmt.Printf("Usage: grammarpost [options]\n\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  grammarpost                               # Run with defaults and .env\n")
	fmt.Printf("  grammarpost -config config.yaml -watch    # Use a config file, reload log level\n")
	fmt.Printf("  grammarpost -port 9090 -log-level debug   # Override specific options\n")
	fmt.Printf("  grammarpost -version                      # Print version info\n")
}
