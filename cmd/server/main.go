package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netinv/internal/adapter"
	"netinv/internal/config"
	"netinv/internal/domain"
	"netinv/internal/handler"
	"netinv/internal/hub"
	"netinv/internal/repository"
	"netinv/internal/repository/sqlite"
	"netinv/internal/service"
	"netinv/internal/watcher"
)

// buildAdapters creates the source set in its fixed registration order:
// subnet sweep, wireless controller, container instances, hypervisors.
func buildAdapters(cfg *config.Config) []adapter.Adapter {
	var adapters []adapter.Adapter
	adapters = append(adapters, adapter.NewNetScanner(cfg.NetworkScan))
	adapters = append(adapters, adapter.NewUniFi(cfg.UniFi))
	for _, pc := range cfg.Portainer {
		adapters = append(adapters, adapter.NewPortainer(pc))
	}
	for _, px := range cfg.Proxmox {
		adapters = append(adapters, adapter.NewProxmox(px))
	}
	return adapters
}

func main() {
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "", "config file path (overrides discovery)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting netinv server...")

	var cfg *config.Config
	var cfgSource string
	var err error
	if *configPath != "" {
		cfg, cfgSource, err = config.LoadFromPath(*configPath)
	} else {
		cfg, cfgSource, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfgSource != "" {
		log.Printf("Config loaded from %s", cfgSource)
	} else {
		log.Println("Config built from environment")
	}

	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.History.DBPath = *dbPath
	}

	findings := cfg.Validate()
	for _, f := range findings {
		log.Println(f)
	}
	if config.HasFatalErrors(findings) {
		log.Fatal("Config validation failed, refusing to start")
	}

	// Durable history is optional. A nil repository disables it everywhere
	// downstream.
	var history repository.History
	if cfg.History.Enabled {
		repo, err := sqlite.New(cfg.History.DBPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer repo.Close()
		history = repo
		log.Printf("History database opened: %s", cfg.History.DBPath)
	} else {
		log.Println("History tracking disabled")
	}

	eventBus := service.NewEventBus()

	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	eventHub := hub.New()
	go eventHub.Run(hubCtx)

	// Bridge scan lifecycle events to the browser-facing hub
	sub := eventBus.Subscribe()
	go func() {
		for event := range sub.C {
			eventHub.Broadcast(event)
		}
	}()

	coordinator := service.NewCoordinator(
		buildAdapters(cfg),
		service.NewCooldown(time.Duration(cfg.Scan.CooldownSeconds)*time.Second),
		service.NewResultCache(),
		history,
		eventBus,
		cfg.SourceTimeoutDuration(),
	)

	// Scheduled scans run alongside manual triggers and share the same
	// cooldown and single-flight gate.
	scanCtx, scanCancel := context.WithCancel(context.Background())
	defer scanCancel()
	if interval := cfg.AutoScanInterval(); interval > 0 {
		log.Printf("Automatic scans every %s", interval)
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if _, err := coordinator.RequestScan(scanCtx, domain.TriggerAutomatic); err != nil {
						log.Printf("automatic scan skipped: %v", err)
					}
				case <-scanCtx.Done():
					return
				}
			}
		}()
	}

	// Credential rotation without a restart: reload the config file and
	// swap the source set when it changes. Server and history settings
	// still need a restart.
	if cfgSource != "" {
		w := watcher.New(cfgSource, func() {
			next, _, err := config.LoadFromPath(cfgSource)
			if err != nil {
				log.Printf("config reload failed: %v", err)
				return
			}
			findings := next.Validate()
			for _, f := range findings {
				log.Println(f)
			}
			if config.HasFatalErrors(findings) {
				log.Println("config reload rejected: validation failed")
				return
			}
			coordinator.ReplaceAdapters(buildAdapters(next))
		})
		go func() {
			if err := w.Watch(scanCtx); err != nil && scanCtx.Err() == nil {
				log.Printf("config watcher stopped: %v", err)
			}
		}()
	}

	mux := http.NewServeMux()
	handler.NewInventoryHandler(coordinator, eventHub).Routes(mux)
	handler.NewHistoryHandler(history).Routes(mux)
	handler.NewExportHandler(coordinator).Routes(mux)
	mux.HandleFunc("GET /events", eventHub.ServeSSE)
	mux.HandleFunc("GET /ws", eventHub.ServeWS)

	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     finalHandler,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	scanCancel()
	hubCancel()
	eventBus.Unsubscribe(sub)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
