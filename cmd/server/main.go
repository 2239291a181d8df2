package main

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"switchmap/internal/adapter"
	"switchmap/internal/codec"
	"switchmap/internal/config"
	"switchmap/internal/domain"
	"switchmap/internal/handler"
	"switchmap/internal/hub"
	"switchmap/internal/logging"
	"switchmap/internal/repository/sqlite"
	"switchmap/internal/service"
	"switchmap/internal/watcher"
)

//go:embed web/*
var webFS embed.FS

// hostList collects repeated -host flags
type hostList []string

func (h *hostList) String() string { return strings.Join(*h, ",") }

func (h *hostList) Set(value string) error {
	*h = append(*h, value)
	return nil
}

func main() {
	var hosts hostList
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "", "config file path")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	password := flag.String("password", "", "device SSH password (overrides SWITCHMAP_PASSWORD)")
	once := flag.Bool("once", false, "run a single discovery pass and exit")
	out := flag.String("out", "./data.json", "document path for -once, '-' for stdout")
	writeConfig := flag.Bool("write-config", false, "write the effective config file and exit")
	flag.Var(&hosts, "host", "switch address to query (repeatable, overrides config)")
	flag.Parse()

	// A local .env can carry SWITCHMAP_PASSWORD during development
	_ = godotenv.Load()

	cfg, cfgPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Flags override file values
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *password != "" {
		cfg.Discovery.Password = *password
	}
	if len(hosts) > 0 {
		cfg.Discovery.Hosts = hosts
	}

	if *writeConfig {
		path := *configPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		if err := cfg.Save(path); err != nil {
			fmt.Fprintf(os.Stderr, "write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(path)
		return
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	logger.Info("starting switchmap", "config", cfgPath, "hosts", len(cfg.Discovery.Hosts))

	if cfg.Discovery.Password == "" {
		logger.Warn("no device password set, device queries will fail to authenticate", "env", config.EnvPassword)
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	querier := adapter.NewSSHQuerier(adapter.SSHQuerierConfig{
		Username:       cfg.Discovery.Username,
		Password:       cfg.Discovery.Password,
		Port:           cfg.Discovery.Port,
		ConnectTimeout: cfg.Discovery.ConnectTimeout.Duration(),
		CommandTimeout: cfg.Discovery.CommandTimeout.Duration(),
	}, logger.With("component", "ssh"))

	collector := adapter.NewCollector(querier, adapter.CollectorConfig{
		MaxConcurrent: cfg.Discovery.Concurrency,
	}, logger.With("component", "collector"))

	scanner := adapter.NewScanner(adapter.ScannerConfig{
		CIDR:    cfg.Scan.CIDR,
		Port:    cfg.Scan.Port,
		Timeout: cfg.Scan.Timeout.Duration(),
	}, logger.With("component", "scanner"))

	settings := service.Settings{
		Hosts:    cfg.Discovery.Hosts,
		Interval: cfg.Discovery.Interval.Duration(),
		Artifact: cfg.Discovery.Artifact,
		KeepRuns: cfg.Discovery.KeepRuns,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One-shot mode: discover, write the document, done. An empty
	// topology is a valid result, not a failure.
	if *once {
		discovery := service.NewDiscovery(collector, scanner, repo, nil, settings, logger.With("component", "discovery"))
		run, err := discovery.Discover(ctx)
		if err != nil {
			logger.Error("discovery failed", "error", err)
			os.Exit(1)
		}
		if err := writeDocument(run, *out); err != nil {
			logger.Error("failed to write document", "path", *out, "error", err)
			os.Exit(1)
		}
		logger.Info("discovery complete", "run_id", run.ID, "hosts_up", len(run.Hosts), "links", len(run.Links))
		return
	}

	// Event fan-out: bus -> SSE hub -> browsers
	bus := service.NewEventBus()
	sseHub := hub.New(logger.With("component", "hub"))

	eventChan := make(chan service.Event, 100)
	bus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			sseHub.Broadcast(event)
		}
	}()

	discovery := service.NewDiscovery(collector, scanner, repo, bus, settings, logger.With("component", "discovery"))

	topo := handler.NewTopologyHandler(repo, logger.With("component", "http"))
	topo.SetDiscoveryTrigger(discovery)
	topo.SetHostScanner(discovery)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/graph", topo.GetGraph)
	mux.HandleFunc("GET /api/runs", topo.ListRuns)
	mux.HandleFunc("GET /api/runs/{id}", topo.GetRun)
	mux.HandleFunc("POST /api/discover", topo.TriggerDiscovery)
	mux.HandleFunc("POST /api/scan", topo.ScanHosts)

	// Export endpoints
	mux.HandleFunc("GET /api/export/json", topo.ExportJSON)
	mux.HandleFunc("GET /api/export/dot", topo.ExportDOT)

	// SSE events endpoint
	mux.Handle("GET /events", sseHub)

	// Static files from embedded filesystem
	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		logger.Error("failed to load embedded web content", "error", err)
		os.Exit(1)
	}
	mux.Handle("/", http.FileServer(http.FS(webContent)))

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover(logger),
		handler.CORS,
		handler.Logger(logger.With("component", "http")),
	)

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: finalHandler,
		// No WriteTimeout: /events streams stay open until the client leaves
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return sseHub.Run(gctx) })
	g.Go(func() error { return discovery.Run(gctx) })

	// Hot-reload the fleet and poll interval when the config file changes
	if cfgPath != "" {
		watch := watcher.New(cfgPath, func() {
			reloaded, _, err := config.LoadFromPath(cfgPath)
			if err != nil {
				logger.Warn("config reload failed", "path", cfgPath, "error", err)
				return
			}
			discovery.UpdateSettings(service.Settings{
				Hosts:    reloaded.Discovery.Hosts,
				Interval: reloaded.Discovery.Interval.Duration(),
				Artifact: reloaded.Discovery.Artifact,
				KeepRuns: reloaded.Discovery.KeepRuns,
			})
			logger.Info("config reloaded", "hosts", len(reloaded.Discovery.Hosts),
				"interval", reloaded.Discovery.Interval.Duration())
		}, logger.With("component", "watcher"))

		g.Go(func() error {
			if err := watch.Watch(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("config watch: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("server listening", "addr", cfg.Listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// loadConfig resolves the config, honoring an explicit -config path.
// The password env override is applied here because LoadFromPath alone
// does not read the environment.
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		return config.Load()
	}
	cfg, used, err := config.LoadFromPath(path)
	if err != nil {
		return nil, used, err
	}
	if pw := os.Getenv(config.EnvPassword); pw != "" {
		cfg.Discovery.Password = pw
	}
	return cfg, used, nil
}

// writeDocument renders the run's topology document to path, or to
// stdout for "-"
func writeDocument(run *domain.DiscoveryRun, path string) error {
	if path == "-" {
		return codec.NewJSONCodec().Export(run.Graph(), os.Stdout)
	}

	var buf bytes.Buffer
	if err := codec.NewJSONCodec().Export(run.Graph(), &buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
