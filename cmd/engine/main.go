package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"apptrack-engine/internal/config"
	"apptrack-engine/internal/domain"
	"apptrack-engine/internal/emailpoll"
	"apptrack-engine/internal/events"
	"apptrack-engine/internal/gateway"
	"apptrack-engine/internal/httpapi"
	"apptrack-engine/internal/metrics"
	"apptrack-engine/internal/scheduler"
	"apptrack-engine/internal/scrape"
	"apptrack-engine/internal/store"
)

func main() {
	// Engine data dir: use env if provided (the desktop shell passes one), else local folder.
	dataDir := os.Getenv("APPTRACK_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir; a second instance would fight over sqlite.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("data dir lock failed: %v", err)
	}
	if !locked {
		log.Fatalf("another engine instance already owns %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "apptrack.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db); err != nil {
		log.Fatal(err)
	}

	hub := events.NewHub()
	gw := gateway.New(db, hub)

	// Dashboard metrics: recomputed from the full snapshot on every
	// change the gateway pushes, served from an atomic load.
	var metricsVal atomic.Value // stores metrics.Summary
	unsubscribe := gw.Subscribe(func(recs []domain.Application) {
		metricsVal.Store(metrics.Compute(recs))
	}, func(err error) {
		log.Printf("[metrics] snapshot load failed: %v", err)
	})
	defer unsubscribe()

	var emailVal atomic.Value // stores httpapi.EmailPollStatus
	emailVal.Store(httpapi.EmailPollStatus{})
	var emailMu sync.Mutex // guards emailVal's running-state transitions

	poller := &emailpoll.Poller{Gateway: gw}

	reqPerSec, burst := cfg.Autofill.ReqPerSec, cfg.Autofill.Burst
	if reqPerSec <= 0 {
		reqPerSec = 1.0
	}
	if burst <= 0 {
		burst = 2
	}
	fetcher := scrape.NewFetcher(scrape.NewHostLimiter(reqPerSec, burst))

	mux := httpapi.NewMux(httpapi.Deps{
		DB:           db,
		Gateway:      gw,
		Hub:          hub,
		CfgVal:       &cfgVal,
		MetricsVal:   &metricsVal,
		EmailVal:     &emailVal,
		EmailMu:      &emailMu,
		UserCfgPath:  userCfgPath,
		LoadCfg:      loadCfg,
		FetchPosting: fetcher.FetchPosting,
		RunEmailPoll: poller.RunOnce,
	})

	token, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		ReadHeaderTimeout: 5 * time.Second,
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))

	srv.Handler = httpapi.Chain(mux,
		httpapi.Cors,
		httpapi.RequestID,
		httpapi.Recover,
		httpapi.AccessLog,
		httpapi.RateLimit(cfg.API.RatePerSec, cfg.API.Burst),
	)

	port := cfg.App.Port
	if port == 0 {
		port = 38471
	}
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s shutdown_token=%s)", addr, dbPath, token)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		interval := time.Duration(cfg.Polling.CheckpointSeconds) * time.Second
		if interval <= 0 {
			interval = 10 * time.Minute
		}
		scheduler.Every(gctx, interval, "checkpoint", func(context.Context) error {
			return store.Checkpoint(db)
		})
		return nil
	})

	g.Go(func() error {
		interval := time.Duration(cfg.Polling.EmailSeconds) * time.Second
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		scheduler.Every(gctx, interval, "email", func(context.Context) error {
			return runEmailPoll(&emailMu, &cfgVal, &emailVal, poller)
		})
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}

// runEmailPoll is the ticker-lane wrapper: it keeps the poll status the
// UI reads in sync with what the poller actually did. mu is shared with
// the manual /email/run lane so only one poll runs at a time.
func runEmailPoll(mu *sync.Mutex, cfgVal, emailVal *atomic.Value, poller *emailpoll.Poller) error {
	cfg := cfgVal.Load().(config.Config)
	if !cfg.Email.Enabled {
		return nil
	}

	mu.Lock()
	st, _ := emailVal.Load().(httpapi.EmailPollStatus)
	if st.Running {
		mu.Unlock()
		return nil
	}
	st.Running = true
	st.LastRunAt = time.Now().Format(time.RFC3339)
	emailVal.Store(st)
	mu.Unlock()

	added, err := poller.RunOnce(cfg)

	now := time.Now().Format(time.RFC3339)
	mu.Lock()
	st, _ = emailVal.Load().(httpapi.EmailPollStatus)
	st.Running = false
	st.LastRunAt = now
	st.LastAdded = added
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
		st.LastOkAt = now
		log.Printf("[email] ok added=%d", added)
	}
	emailVal.Store(st)
	mu.Unlock()
	return err
}
