package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"quakeview/config"
	"quakeview/internal/dashboard"
	"quakeview/internal/input/usgs"
	"quakeview/internal/logger"
	"quakeview/internal/observability"
	"quakeview/internal/output/snapshothttp"
	"quakeview/internal/output/snapshotjson"
	"quakeview/internal/output/snapshotredis"
	"quakeview/internal/pipeline"
	"quakeview/internal/render/chart"
	"quakeview/internal/server"
)

func findConfigFile(configArg string) string {
	if configArg != "" {
		if _, err := os.Stat(configArg); err == nil {
			return configArg
		}
		log.Printf("Warning: config file not found at %s, trying default locations", configArg)
	}

	if _, err := os.Stat("quakeview.yml"); err == nil {
		return "quakeview.yml"
	}

	exePath, err := os.Executable()
	if err == nil {
		path := filepath.Join(filepath.Dir(exePath), "quakeview.yml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "quakeview.yml"
}

// loadConfig falls back to built-in defaults when no config file exists.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: %s not found, using defaults", path)
		cfg, err = &config.Config{}, nil
		cfg.QuakeView.Logging.Enabled = true
		cfg.QuakeView.Logging.Console = true
	}
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *config.Config) {
	q := &cfg.QuakeView

	if q.Feed.URL == "" {
		q.Feed.URL = usgs.DefaultURL
	}
	if q.Feed.Limit <= 0 {
		q.Feed.Limit = 100
	}
	if q.Feed.Timeout <= 0 {
		q.Feed.Timeout = 10 * time.Second
	}

	if q.Refresh.Interval <= 0 {
		q.Refresh.Interval = pipeline.DefaultInterval
	}

	if q.Server.Listen == "" {
		q.Server.Listen = ":8080"
	}

	if q.Map.TileURL == "" {
		q.Map.TileURL = server.DefaultTileURL
	}
	if q.Map.Attribution == "" {
		q.Map.Attribution = server.DefaultAttribution
	}
	if q.Map.Timezone == "" {
		q.Map.Timezone = "Local"
	}

	def := chart.DefaultGeometry()
	if q.Chart.Width <= 0 {
		q.Chart.Width = def.Width
	}
	if q.Chart.Height <= 0 {
		q.Chart.Height = def.Height
	}
	if q.Chart.Margin <= 0 {
		q.Chart.Margin = def.Margin
	}
	if q.Chart.Padding <= 0 {
		q.Chart.Padding = def.Padding
	}

	if q.Output.File.Path == "" {
		q.Output.File.Path = "output/snapshots.jsonl"
	}
	if q.Output.Redis.Addr == "" {
		q.Output.Redis.Addr = "127.0.0.1:6379"
	}
	if q.Output.Redis.Key == "" {
		q.Output.Redis.Key = "quakeview:snapshot"
	}

	if q.Metrics.Path == "" {
		q.Metrics.Path = "/metrics"
	}
	if q.Tracing.ServiceName == "" {
		q.Tracing.ServiceName = "quakeview"
	}
	if q.Tracing.SampleRatio <= 0 {
		q.Tracing.SampleRatio = 1
	}

	if q.Logging.Level == "" {
		q.Logging.Level = "info"
	}
}

func buildWriters(cfg *config.Config) ([]pipeline.SnapshotWriter, error) {
	out := cfg.QuakeView.Output
	var writers []pipeline.SnapshotWriter

	if out.File.Enabled {
		w, err := snapshotjson.NewWriter(out.File.Path)
		if err != nil {
			return writers, fmt.Errorf("create snapshot file writer: %w", err)
		}
		writers = append(writers, w)
		logger.Infof("Snapshot output: file (%s)", out.File.Path)
	}
	if out.HTTP.Enabled {
		w, err := snapshothttp.NewWriter(snapshothttp.Config{
			URL:     out.HTTP.URL,
			Timeout: out.HTTP.Timeout,
			Headers: out.HTTP.Headers,
		})
		if err != nil {
			return writers, fmt.Errorf("create snapshot HTTP writer: %w", err)
		}
		writers = append(writers, w)
		logger.Infof("Snapshot output: http (%s)", out.HTTP.URL)
	}
	if out.Redis.Enabled {
		w, err := snapshotredis.NewWriter(snapshotredis.Config{
			Addr:     out.Redis.Addr,
			Password: out.Redis.Password,
			DB:       out.Redis.DB,
			Key:      out.Redis.Key,
			Channel:  out.Redis.Channel,
			TTL:      out.Redis.TTL,
		})
		if err != nil {
			return writers, fmt.Errorf("create snapshot Redis writer: %w", err)
		}
		writers = append(writers, w)
		logger.Infof("Snapshot output: redis (%s key=%s)", out.Redis.Addr, out.Redis.Key)
	}
	return writers, nil
}

func newDashboard(cfg *config.Config) (*dashboard.Dashboard, error) {
	loc, err := time.LoadLocation(cfg.QuakeView.Map.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.QuakeView.Map.Timezone, err)
	}
	c := cfg.QuakeView.Chart
	return dashboard.New(dashboard.Config{
		Location: loc,
		Chart:    chart.Geometry{Width: c.Width, Height: c.Height, Margin: c.Margin, Padding: c.Padding},
	}), nil
}

func newClient(cfg *config.Config) (*usgs.Client, error) {
	return usgs.NewClient(usgs.Config{
		URL:     cfg.QuakeView.Feed.URL,
		Limit:   cfg.QuakeView.Feed.Limit,
		Timeout: cfg.QuakeView.Feed.Timeout,
		Headers: cfg.QuakeView.Feed.Headers,
	})
}

func initLogging(cfg *config.Config) {
	l := cfg.QuakeView.Logging
	if err := logger.Init(logger.Config{Enabled: l.Enabled, Level: l.Level, File: l.File, Console: l.Console}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
}

func runServe(args []string) {
	configArg := ""
	if len(args) > 0 {
		configArg = args[0]
	}
	configPath := findConfigFile(configArg)

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	initLogging(cfg)
	defer logger.Close()

	logger.Infof("QuakeView starting")
	logger.Infof("Config loaded from: %s", configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.QuakeView.Tracing.Enabled,
		ServiceName: cfg.QuakeView.Tracing.ServiceName,
		SampleRatio: cfg.QuakeView.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	var metrics *observability.Collector
	metricsPath := ""
	if cfg.QuakeView.Metrics.Enabled {
		metrics, err = observability.NewCollector(prometheus.DefaultRegisterer)
		if err != nil {
			log.Fatalf("Failed to register metrics: %v", err)
		}
		metricsPath = cfg.QuakeView.Metrics.Path
	}

	client, err := newClient(cfg)
	if err != nil {
		log.Fatalf("Failed to create feed client: %v", err)
	}
	logger.Infof("Feed endpoint: %s", client.Endpoint())

	dash, err := newDashboard(cfg)
	if err != nil {
		log.Fatalf("Failed to create dashboard: %v", err)
	}

	writers, err := buildWriters(cfg)
	if err != nil {
		logger.Errorf("%v", err)
		log.Fatalf("%v", err)
	}

	pipe := pipeline.NewRefreshPipeline(client, dash, writers, metrics, cfg.QuakeView.Refresh.Interval)
	hub := server.NewHub()
	pipe.AddListener(hub.Broadcast)

	srv := server.New(server.Config{
		TileURL:     cfg.QuakeView.Map.TileURL,
		Attribution: cfg.QuakeView.Map.Attribution,
		MetricsPath: metricsPath,
		Debug:       cfg.QuakeView.Server.Debug,
	}, dash, pipe, metrics, hub)

	httpSrv := &http.Server{
		Addr:              cfg.QuakeView.Server.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := pipe.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf("Pipeline error: %v", err)
		}
	}()

	go func() {
		logger.Infof("Listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("HTTP server error: %v", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	logger.Infof("Shutting down")
	cancel()
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	hub.Close()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error shutting down HTTP server: %v", err)
	}
	if err := pipe.Close(); err != nil {
		logger.Errorf("Error closing pipeline: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Errorf("Error flushing traces: %v", err)
	}

	logger.Infof("QuakeView stopped")
}

func runSnapshot(args []string) int {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	configArg := fs.String("config", "", "Config file path")
	output := fs.String("output", "", "Snapshot JSON output path (stdout when empty)")
	timeout := fs.Duration("timeout", 30*time.Second, "Overall fetch timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(findConfigFile(*configArg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	cfg.QuakeView.Logging.Console = false
	initLogging(cfg)
	defer logger.Close()

	client, err := newClient(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create feed client: %v\n", err)
		return 1
	}
	dash, err := newDashboard(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pipe := pipeline.NewRefreshPipeline(client, dash, nil, nil, cfg.QuakeView.Refresh.Interval)
	snap, err := pipe.RefreshNow(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load earthquake data: %v\n", err)
		return 1
	}

	if err := writeSnapshot(*output, snap); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write snapshot: %v\n", err)
		return 1
	}
	if *output != "" {
		fmt.Printf("rendered events=%d buckets=%d output=%s\n", snap.Total, len(snap.Bars), *output)
	}
	return 0
}

func writeSnapshot(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			runServe(os.Args[2:])
			return
		case "snapshot":
			os.Exit(runSnapshot(os.Args[2:]))
		default:
			// First arg is a config path.
			runServe(os.Args[1:])
			return
		}
	}

	runServe(nil)
}
