package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/fangyan/pkg/api"
	"github.com/hazyhaar/fangyan/pkg/dict"
	"github.com/hazyhaar/fangyan/pkg/store"
)

const version = "0.1.0"

type config struct {
	Addr       string `yaml:"addr"`
	DictsDir   string `yaml:"dicts_dir"`
	DBPath     string `yaml:"db_path"`
	LogLevel   string `yaml:"log_level"`
	MCPHTTP    bool   `yaml:"mcp_http"`
	MaxResults int    `yaml:"max_results"`
	Watch      bool   `yaml:"watch"`
}

func defaultConfig() config {
	return config{
		Addr:     ":8421",
		DictsDir: "dicts",
		DBPath:   "fangyan.db",
		LogLevel: "info",
		MCPHTTP:  true,
	}
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	case "search":
		cmdSearch(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "reset":
		cmdReset(os.Args[2:])
	case "install":
		cmdInstall(os.Args[2:])
	case "compile":
		cmdCompile(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: fangyan <command> [flags]

Commands:
  serve     Start the HTTP server
  mcp       Serve MCP over stdio
  search    Search the dictionary from the command line
  import    Replace the working set with entries from a file or URL
  reset     Discard the imported set
  install   Install a file or URL as a dataset
  compile   Write a dataset's data.gob cache
`)
}

// commonFlags registers the flags shared by commands that open the registry.
type commonFlags struct {
	config *string
	dicts  *string
	db     *string
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config: fs.String("config", "config.yaml", "path to config file"),
		dicts:  fs.String("dicts", "", "datasets directory (overrides config)"),
		db:     fs.String("db", "", "SQLite database path (overrides config)"),
	}
}

// resolve loads the config file and applies flag overrides.
func (f commonFlags) resolve(logger *slog.Logger) config {
	cfg := loadConfig(*f.config, logger)
	if *f.dicts != "" {
		cfg.DictsDir = *f.dicts
	}
	if *f.db != "" {
		cfg.DBPath = *f.db
	}
	return cfg
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	common := addCommonFlags(fs)
	fs.Parse(args)

	logger := newLogger("info")
	cfg := common.resolve(logger)
	logger = newLogger(cfg.LogLevel)

	reg, st := openRegistry(cfg, logger)
	defer st.Close()

	opts := api.Options{MaxResults: cfg.MaxResults, Logger: logger}
	if cfg.MCPHTTP {
		opts.MCP = server.NewStreamableHTTPServer(api.NewMCPServer(reg, version, logger))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(reg, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// SIGHUP: hot reload datasets.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading datasets")
			if err := reg.Reload(ctx); err != nil {
				logger.Error("reload failed", "error", err)
			}
		}
	}()

	if cfg.Watch {
		go func() {
			if err := reg.Watch(ctx, dict.DefaultWatchDebounce); err != nil {
				logger.Error("dataset watcher stopped", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("fangyan listening", "addr", cfg.Addr, "mcp_http", cfg.MCPHTTP)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	common := addCommonFlags(fs)
	fs.Parse(args)

	// Stdout carries the protocol; logs go to stderr.
	logger := newLogger("warn")
	cfg := common.resolve(logger)
	logger = newLogger(cfg.LogLevel)

	reg, st := openRegistry(cfg, logger)
	defer st.Close()

	if err := server.ServeStdio(api.NewMCPServer(reg, version, logger)); err != nil {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

// openRegistry opens the store and loads the registry, exiting on failure.
func openRegistry(cfg config, logger *slog.Logger) (*dict.Registry, *store.Store) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	reg := dict.NewRegistry(cfg.DictsDir, st, logger)
	if err := reg.Load(context.Background()); err != nil {
		st.Close()
		logger.Error("failed to load datasets", "dir", cfg.DictsDir, "error", err)
		os.Exit(1)
	}
	return reg, st
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
	slog.SetDefault(logger)
	return logger
}

func loadConfig(path string, logger *slog.Logger) config {
	cfg, err := readConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no config file, using defaults", "path", path)
			return defaultConfig()
		}
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	return cfg
}

// readConfig parses path over the defaults.
func readConfig(path string) (config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
