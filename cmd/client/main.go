// Acid Rain Typing Game Client - Main Entry Point
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gyeongmin0113/acid-rain/internal/client"
	"github.com/gyeongmin0113/acid-rain/pkg/logger"
)

var (
	version    = "1.0.0"
	serverAddr = flag.String("server", "localhost:12345", "Server address (host:port)")
	logLevel   = flag.String("log-level", "WARN", "Log level (DEBUG, INFO, WARN, ERROR)")
	logFile    = flag.String("log-file", "", "Log file path (optional)")
)

func main() {
	flag.Parse()

	if err := initLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	logger.Client.Info("Starting Acid Rain client v%s", version)
	logger.Client.Info("Connecting to server: %s", *serverAddr)

	gameClient := client.NewClient(*serverAddr)

	setupGracefulShutdown(gameClient)

	if err := gameClient.Start(); err != nil {
		logger.Client.Error("Client failed to start: %v", err)
		os.Exit(1)
	}

	logger.Client.Info("Client shutting down gracefully")
}

// initLogging sets up the logging system
func initLogging() error {
	logger.SetGlobalLogLevel(logger.ParseLevel(*logLevel))

	if *logFile != "" {
		if err := logger.Client.SetFile(*logFile); err != nil {
			return fmt.Errorf("failed to set log file: %w", err)
		}
	}
	return nil
}

// setupGracefulShutdown handles graceful shutdown on interrupt signals
func setupGracefulShutdown(gameClient *client.Client) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Client.Info("Received shutdown signal, closing client...")
		gameClient.Close()
		os.Exit(0)
	}()
}
