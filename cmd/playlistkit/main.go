// The playlistkit command inspects playlist and streaming manifest documents,
// or serves the inspection API over HTTP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/agleyzer/playlistkit/internal/catalog"
	"github.com/agleyzer/playlistkit/internal/config"
	"github.com/agleyzer/playlistkit/internal/ingest"
	"github.com/agleyzer/playlistkit/internal/loader"
	"github.com/agleyzer/playlistkit/internal/metrics"
	"github.com/agleyzer/playlistkit/internal/playlist"
	"github.com/agleyzer/playlistkit/internal/server"
)

const (
	version = "1.0.0"
)

// options holds everything parsed from flags and the environment.
type options struct {
	port         int
	verbose      bool
	timeout      time.Duration
	maxBytes     int64
	output       string
	serve        bool
	raftID       string
	raftBind     string
	raftPeers    string
	raftLogLevel string
	showVersion  bool
	target       string
}

func main() {
	// .env is optional
	if err := config.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if opts.showVersion {
		fmt.Printf("playlistkit v%s\n", version)
		os.Exit(0)
	}

	// Logs go to stderr so inspection output stays machine readable
	logger := newLogger(os.Stderr, opts.verbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("received signal", "signal", sig)
		cancel()
	}()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		logger.Error("application error", "error", err)
		os.Exit(1)
	}
}

// parseFlags reads the command line. Defaults come from the environment.
func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	flags := flag.NewFlagSet("playlistkit", flag.ContinueOnError)
	flags.SetOutput(stderr)

	flags.IntVar(&opts.port, "port", config.GetEnvInt("PLAYLISTKIT_PORT", 8080), "HTTP server port (with -serve)")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	flags.DurationVar(&opts.timeout, "timeout", config.GetEnvDuration("PLAYLISTKIT_TIMEOUT", 10*time.Second), "Timeout for fetching a playlist")
	flags.Int64Var(&opts.maxBytes, "max-bytes", int64(config.GetEnvInt("PLAYLISTKIT_MAX_BYTES", loader.DefaultMaxBytes)), "Maximum playlist document size in bytes")
	flags.StringVar(&opts.output, "output", "text", "Output format: text or json")
	flags.BoolVar(&opts.serve, "serve", false, "Serve the inspection API instead of inspecting one playlist")
	flags.StringVar(&opts.raftID, "raft-id", config.GetEnv("RAFT_ID", ""), "Raft node ID (enables the replicated catalog)")
	flags.StringVar(&opts.raftBind, "raft-bind", config.GetEnv("RAFT_BIND", ""), "Raft bind address (e.g., '127.0.0.1:9000')")
	flags.StringVar(&opts.raftPeers, "raft-peers", strings.Join(config.GetEnvList("RAFT_PEERS"), ","), "Comma-separated list of Raft peer addresses, including this node")
	flags.StringVar(&opts.raftLogLevel, "raft-log-level", config.GetEnv("RAFT_LOG_LEVEL", "off"), "Raft internal log level (off, error, warn, info, debug)")
	flags.BoolVar(&opts.showVersion, "version", false, "Show version and exit")

	flags.Usage = func() {
		fmt.Fprintf(stderr, "playlistkit - playlist and manifest inspector v%s\n\n", version)
		fmt.Fprintf(stderr, "Usage: playlistkit [options] <playlist-url-or-path>\n")
		fmt.Fprintf(stderr, "       playlistkit -serve [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  playlistkit https://example.com/radio.pls\n")
		fmt.Fprintf(stderr, "  playlistkit -output json ./album.cue\n")
		fmt.Fprintf(stderr, "  playlistkit -serve -port 8080\n")
		fmt.Fprintf(stderr, "  playlistkit -serve -raft-id node1 -raft-bind 127.0.0.1:9001 -raft-peers 127.0.0.1:9001,127.0.0.1:9002\n")
	}

	if err := flags.Parse(args); err != nil {
		return opts, err
	}

	if opts.showVersion {
		return opts, nil
	}

	if opts.verbose || strings.EqualFold(config.GetEnv("LOG_LEVEL", ""), "debug") {
		opts.verbose = true
	}

	if opts.port < 1 || opts.port > 65535 {
		return opts, fmt.Errorf("port must be between 1 and 65535")
	}
	if opts.timeout <= 0 {
		return opts, fmt.Errorf("timeout must be positive, got: %s", opts.timeout)
	}
	if opts.maxBytes <= 0 {
		return opts, fmt.Errorf("max-bytes must be positive, got: %d", opts.maxBytes)
	}
	if opts.output != "text" && opts.output != "json" {
		return opts, fmt.Errorf("output must be text or json, got: %q", opts.output)
	}

	if opts.serve {
		if flags.NArg() > 0 {
			return opts, fmt.Errorf("-serve takes no playlist argument")
		}
		return opts, nil
	}

	if flags.NArg() < 1 {
		flags.Usage()
		return opts, fmt.Errorf("playlist URL or path is required")
	}
	opts.target = flags.Arg(0)

	return opts, nil
}

// newLogger builds the process logger. LOG_FORMAT=json switches to JSON lines.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	switch strings.ToLower(config.GetEnv("LOG_LEVEL", "")) {
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	if verbose {
		logLevel = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	if strings.EqualFold(config.GetEnv("LOG_FORMAT", "text"), "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func run(ctx context.Context, opts options, stdout io.Writer, logger *slog.Logger) error {
	if opts.serve {
		return serve(ctx, opts, logger)
	}

	svc := ingest.New(loader.New(opts.timeout, opts.maxBytes), logger)

	res, err := svc.Ingest(ctx, opts.target)
	if err != nil {
		return err
	}

	if opts.output == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(server.NewResultView(opts.target, res))
	}

	return writeText(stdout, opts.target, res)
}

// serve runs the HTTP API until ctx is canceled.
func serve(ctx context.Context, opts options, logger *slog.Logger) error {
	m := metrics.New()

	var (
		store   catalog.Store = catalog.NewMemory()
		cluster server.Cluster
	)

	if opts.raftID != "" {
		manager, err := catalog.NewManager(catalog.Config{
			RaftID:        opts.raftID,
			BindAddr:      opts.raftBind,
			Peers:         splitPeers(opts.raftPeers),
			RaftLogLevel:  opts.raftLogLevel,
			RaftLogOutput: os.Stderr,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to create catalog cluster: %w", err)
		}

		if err := manager.Start(ctx); err != nil {
			return fmt.Errorf("failed to start catalog cluster: %w", err)
		}
		defer manager.Shutdown()

		store, cluster = manager, manager
	}

	// The API never reads the local filesystem on behalf of a client
	h := loader.NewHTTP(opts.timeout)
	h.MaxBytes = opts.maxBytes
	h.UserAgent = "playlistkit/" + version
	l := &loader.Mux{HTTP: h}

	svc := ingest.New(l, logger, ingest.WithCatalog(store), ingest.WithMetrics(m))
	srv := server.New(svc, store, cluster, m, opts.port, logger)

	logger.Info("playlistkit API ready",
		"inspect", fmt.Sprintf("http://localhost:%d/inspect?url=", opts.port),
		"health", fmt.Sprintf("http://localhost:%d/health", opts.port),
		"replicated", cluster != nil,
	)

	return srv.Start(ctx)
}

func splitPeers(s string) []string {
	var peers []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			peers = append(peers, p)
		}
	}
	return peers
}

// writeText prints a human readable summary of res.
func writeText(w io.Writer, target string, res *playlist.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "URL:       %s\n", target)
	fmt.Fprintf(&b, "Type:      %s\n", res.Type)
	if res.Title != "" {
		fmt.Fprintf(&b, "Title:     %s\n", res.Title)
	}
	fmt.Fprintf(&b, "Adaptive:  %t\n", res.IsAdaptiveStream())
	fmt.Fprintf(&b, "Multi:     %t\n", res.IsMultiVideo())
	fmt.Fprintf(&b, "Items:     %d\n", len(res.Items))

	for i, item := range res.Items {
		fmt.Fprintf(&b, "  %3d  %s\n", i, item.Location)
	}

	if variants, ok := res.Metadata[playlist.MetaVariants].([]playlist.Variant); ok {
		fmt.Fprintf(&b, "Variants:  %d\n", len(variants))
		for _, v := range variants {
			fmt.Fprintf(&b, "  %9d bps  %-10s %s\n", v.Bandwidth, v.Resolution, v.URL)
		}
	}

	keys := make([]string, 0, len(res.Metadata))
	for k, v := range res.Metadata {
		switch v.(type) {
		case string, bool, int, int64, float64, uint32:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%-10s %v\n", k+":", res.Metadata[k])
	}

	_, err := io.WriteString(w, b.String())
	return err
}
