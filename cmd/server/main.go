package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"tileyard/internal/persistence/ledger"
	persistlog "tileyard/internal/persistence/log"
	"tileyard/internal/sim/catalogs"
	"tileyard/internal/sim/world"
	"tileyard/internal/transport/ws"
)

func main() {
	var (
		addr        = flag.String("addr", ":8080", "http listen address")
		siteID      = flag.String("site", "site_1", "site id")
		seed        = flag.Int64("seed", 1337, "site seed")
		catalogPath = flag.String("buildings", "./configs/buildings.yaml", "building catalog path (empty for built-in defaults)")
		dataDir     = flag.String("data", "./data", "runtime data directory")
		tickRate    = flag.Int("tick_rate", 10, "simulation ticks per second")
		agents      = flag.Int("agents", 3, "initial worker count")
		gridWidth   = flag.Int("grid_width", 100, "grid width in tiles")
		gridHeight  = flag.Int("grid_height", 100, "grid height in tiles")
		disableLog  = flag.Bool("disable_ticklog", false, "disable the compressed tick log")
		disableDB   = flag.Bool("disable_db", false, "disable the completion ledger")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	catPath := strings.TrimSpace(*catalogPath)
	if catPath != "" {
		if _, err := os.Stat(catPath); os.IsNotExist(err) {
			logger.Printf("building catalog not found (%s); using defaults", catPath)
			catPath = ""
		}
	}
	cat, err := catalogs.Load(catPath)
	if err != nil {
		logger.Fatalf("load building catalog: %v", err)
	}

	w, err := world.New(world.WorldConfig{
		ID:            *siteID,
		TickRateHz:    *tickRate,
		Seed:          *seed,
		GridWidth:     *gridWidth,
		GridHeight:    *gridHeight,
		InitialAgents: *agents,
	}, cat)
	if err != nil {
		logger.Fatalf("create world: %v", err)
	}
	w.SetLogger(logger)

	siteDir := filepath.Join(*dataDir, "sites", *siteID)
	_ = os.MkdirAll(siteDir, 0o755)

	if !*disableLog {
		tickLog := persistlog.NewTickLogger(siteDir)
		defer tickLog.Close()
		w.SetTickLogger(tickLog)
	}

	var led *ledger.Ledger
	if !*disableDB {
		led, err = ledger.Open(filepath.Join(siteDir, "ledger.db"))
		if err != nil {
			logger.Fatalf("open completion ledger: %v", err)
		}
		defer led.Close()
		w.SetCompletedSink(led.Events())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Fatalf("world loop: %v", err)
		}
	}()

	wss := ws.NewServer(w, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wss.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/completions", func(rw http.ResponseWriter, r *http.Request) {
		if led == nil {
			http.Error(rw, "ledger disabled", http.StatusServiceUnavailable)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		events, err := led.Completions(limit)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusInternalServerError)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(events)
	})

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
		w.Stop()
	}()

	logger.Printf("site %s listening on %s (grid %dx%d, %d workers, catalog %s)",
		*siteID, *addr, *gridWidth, *gridHeight, *agents, cat.Digest[:12])
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("http: %v", err)
	}
}
