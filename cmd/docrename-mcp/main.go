package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/cmespinar/docrename/internal/config"
	"github.com/cmespinar/docrename/internal/mcp"
	"github.com/cmespinar/docrename/internal/service"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if version != "dev" {
		cfg.Version = version
	}
	cfg.ServerName = "docrename-mcp"

	// Stdout belongs to the MCP protocol; the logger writes to stderr.
	logger := config.NewLogger(cfg.LogLevel)

	svc := service.NewFromConfig(cfg, nil, logger)
	srv, err := mcp.NewServer(cfg, svc)
	if err != nil {
		logger.Error("failed to create MCP server", "error", err)
		os.Exit(1)
	}

	if err := srv.Run(context.Background()); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("docrename MCP server\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
