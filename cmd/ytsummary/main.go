// Package main is the terminal client for the ytsummary API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/client"
	"github.com/Ronnakrit11/nextai-ytsummary/internal/tui"
)

const (
	defaultAPIURL = "http://localhost:8080"
	// Covers a full transcript fetch plus model inference.
	requestTimeout = 2 * time.Minute
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "ytsummary:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("ytsummary", flag.ContinueOnError)
	apiURL := fs.String("api", envOr("YTSUMMARY_API_URL", defaultAPIURL), "base URL of the ytsummary API server")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// The alternate screen owns stdout, so logs go to a file or nowhere.
	closeLog, err := setupLogging(os.Getenv("YTSUMMARY_TUI_LOG"))
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := client.NewHTTPClient(*apiURL, requestTimeout)
	slog.Info("starting tui", "api", *apiURL)

	p := tea.NewProgram(tui.New(ctx, api), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func setupLogging(path string) (func(), error) {
	if path == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return func() { f.Close() }, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
