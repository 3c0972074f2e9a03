package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ironsheep/tram-track-mcp/internal/config"
	"github.com/ironsheep/tram-track-mcp/internal/log"
	"github.com/ironsheep/tram-track-mcp/internal/ocr"
	"github.com/ironsheep/tram-track-mcp/internal/pipeline"
	"github.com/ironsheep/tram-track-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("tram-track-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("tram-track-mcp - MCP server for tram track detection")
			fmt.Println()
			fmt.Println("Usage: tram-track-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  TRAMTRACK_LOG_LEVEL=debug       Log level (debug, info, warn, error)")
			fmt.Println("  TRAMTRACK_LOG_FORMAT=json       Log as JSON instead of text")
			fmt.Println("  TRAMTRACK_CONFIG=tuning.json    Tuning file overriding the defaults")
			fmt.Println("  TRAMTRACK_OCR=1                 Read the camera timestamp with Tesseract")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Logs are written to stderr.")
			return
		}
	}

	// stdout is for MCP protocol
	log.Init(os.Getenv("TRAMTRACK_LOG_LEVEL"))
	log.Debug("tram track MCP server", "version", Version, "built", BuildTime, "commit", GitCommit)

	if err := run(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	params, err := config.LoadParams(os.Getenv("TRAMTRACK_CONFIG"))
	if err != nil {
		return err
	}

	var opts []pipeline.Option
	if os.Getenv("TRAMTRACK_OCR") != "" {
		reader, err := ocr.NewStampReader(ocr.DefaultOptions())
		if err != nil {
			log.Warn("stamp reading disabled", "error", err)
		} else {
			defer reader.Close()
			opts = append(opts, pipeline.WithStampReader(reader))
		}
	}

	proc, err := pipeline.NewProcessor(params, opts...)
	if err != nil {
		return err
	}

	server.Version = Version
	srv := server.New(proc)
	defer srv.Close()

	return srv.Run(context.Background())
}
