// Acid Rain Typing Game Server - Main Entry Point
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/gyeongmin0113/acid-rain/internal/config"
	"github.com/gyeongmin0113/acid-rain/internal/leaderboard"
	"github.com/gyeongmin0113/acid-rain/internal/server"
	"github.com/gyeongmin0113/acid-rain/pkg/logger"
)

var (
	version   = "1.0.0"
	buildTime = "dev"
	help      = flag.Bool("help", false, "Show help information")
	ver       = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *help {
		showHelp()
		return
	}
	if *ver {
		showVersion()
		return
	}

	cfg := config.Load()

	// An optional positional argument overrides the configured port
	if arg := flag.Arg(0); arg != "" {
		port, err := strconv.Atoi(arg)
		if err != nil {
			logger.Server.Warn("Invalid port %q, using default %d", arg, cfg.Port)
		} else {
			cfg.Port = port
		}
	}

	if err := initLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	logger.Server.Info("Starting Acid Rain server v%s", version)

	board, err := leaderboard.New(filepath.Join(cfg.DataDir, "leaderboards"))
	if err != nil {
		logger.Server.Fatal("Failed to initialize leaderboard store: %v", err)
	}

	address := fmt.Sprintf(":%d", cfg.Port)
	gameServer := server.NewServer(address, board, filepath.Join(cfg.DataDir, "words"))

	var gateway *server.WSGateway
	if cfg.WSPort > 0 {
		gateway = server.NewWSGateway(fmt.Sprintf(":%d", cfg.WSPort), gameServer)
		go func() {
			if err := gateway.Start(); err != nil {
				logger.Server.Error("WebSocket gateway stopped: %v", err)
			}
		}()
	}

	setupGracefulShutdown(gameServer, gateway)

	if err := gameServer.Start(); err != nil {
		logger.Server.Fatal("Server failed to start: %v", err)
	}
}

// initLogging sets up the logging system
func initLogging(cfg *config.Config) error {
	logger.SetGlobalLogLevel(logger.ParseLevel(cfg.LogLevel))

	if cfg.LogDir != "" {
		if err := logger.InitializeFileLogging(cfg.LogDir); err != nil {
			// Console logging still works; do not fail the whole server
			logger.Server.Warn("Could not initialize file logging: %v", err)
		}
	}
	return nil
}

// setupGracefulShutdown handles graceful shutdown on interrupt signals
func setupGracefulShutdown(gameServer *server.Server, gateway *server.WSGateway) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Server.Info("Received shutdown signal, stopping server...")
		if gateway != nil {
			gateway.Stop()
		}
		gameServer.Stop()
		os.Exit(0)
	}()
}

// showHelp displays help information
func showHelp() {
	name := os.Args[0]
	fmt.Printf(`Acid Rain Typing Game Server v%s

USAGE:
    %s [OPTIONS] [PORT]

The listening port may be given as the first positional argument; it
overrides the PORT environment variable (default 12345).

ENVIRONMENT:
    PORT           TCP port for the game protocol (default 12345)
    WS_PORT        Port for the WebSocket gateway (disabled when unset)
    DATA_DIR       Directory for leaderboards and word lists (default "data")
    LOG_LEVEL      DEBUG, INFO, WARN or ERROR (default "INFO")
    LOG_DIR        Enables dated log files in this directory

OPTIONS:
    -help          Show this help message
    -version       Show version information

EXAMPLES:
    # Start with defaults
    %s

    # Start on port 9000
    %s 9000
`, version, name, name, name)
}

// showVersion displays version information
func showVersion() {
	fmt.Printf("Acid Rain Typing Game Server v%s (build %s)\n", version, buildTime)
}
