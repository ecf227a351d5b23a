// Command janitord runs the data preprocessing HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prepio/janitor/internal/server"
	"github.com/prepio/janitor/internal/version"
)

func customUsage() {
	fmt.Fprintf(os.Stderr, "janitord - data preprocessing service (version %s)\n\n", version.Version)
	fmt.Fprintf(os.Stderr, "Usage: janitord [options]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	fmt.Fprintf(os.Stderr, "  --addr HOST:PORT\n\t\tListen address (default: :1290, env JANITOR_ADDR)\n")
	fmt.Fprintf(os.Stderr, "  --log-level LEVEL\n\t\tLog level: debug, info, warn, error (default: info)\n")
	fmt.Fprintf(os.Stderr, "  -v, --version\n\t\tPrint version information and exit\n")
	fmt.Fprintf(os.Stderr, "  -h, --help\n\t\tShow this help message and exit\n")
}

func main() {
	versionFlag := flag.Bool("v", false, "Print version and exit")
	flag.BoolVar(versionFlag, "version", false, "Print version and exit") // alias
	addrFlag := flag.String("addr", "", "Listen address")
	logLevelFlag := flag.String("log-level", "info", "Log level")

	flag.Usage = customUsage
	flag.Parse()

	if *versionFlag {
		fmt.Print(version.Info().String())
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(*logLevelFlag),
	}))
	slog.SetDefault(logger)

	cfg := server.LoadFromEnv()
	if *addrFlag != "" {
		cfg.Addr = *addrFlag
	}

	srv := server.New(cfg, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
