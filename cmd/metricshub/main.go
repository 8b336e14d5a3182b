package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/metricshub/internal/config"
	"git.home.luguber.info/inful/metricshub/internal/provider"
	"git.home.luguber.info/inful/metricshub/internal/server/responses"
	"git.home.luguber.info/inful/metricshub/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"metricshub.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct {
	} `cmd:"" help:"Run the metrics endpoint until interrupted"`

	Dump struct {
		Timeout time.Duration `help:"Request timeout" default:"5s"`
	} `cmd:"" help:"Fetch and print all current samples from a running instance"`

	Version struct {
	} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch ctx.Command() {
	case "serve":
		if err := runServe(CLI.Config); err != nil {
			slog.Error("Serve failed", "error", err)
			os.Exit(1)
		}
	case "dump":
		if err := runDump(CLI.Config, CLI.Dump.Timeout); err != nil {
			slog.Error("Dump failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("metricshub %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
	}
}

func runServe(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p, err := provider.NewFromFile(configPath)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	if err := p.RootContext().RegisterGauge("uptime_seconds", func() (float64, bool) {
		return time.Since(startedAt).Seconds(), true
	}); err != nil {
		return err
	}

	if err := p.Start(ctx); err != nil {
		return err
	}

	slog.Info("Serving metrics, waiting for shutdown signal...")
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	return p.Stop(stopCtx)
}

func runDump(configPath string, timeout time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	host := cfg.HTTPHost
	if host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	url := fmt.Sprintf("http://%s:%d/admin/metrics", host, cfg.HTTPPort)

	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	var dump responses.DumpResponse
	if err := json.NewDecoder(resp.Body).Decode(&dump); err != nil {
		return fmt.Errorf("failed to decode dump response: %w", err)
	}

	keys := make([]string, 0, len(dump.Samples))
	for k := range dump.Samples {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s %v\n", k, dump.Samples[k])
	}
	return nil
}
