package mcstatus

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jpalmerr/mcstatus/config"
	"github.com/jpalmerr/mcstatus/dashboard"
	"github.com/jpalmerr/mcstatus/internal/mcsrvstat"
	"github.com/jpalmerr/mcstatus/internal/poller"
	"github.com/jpalmerr/mcstatus/internal/server"
	"github.com/jpalmerr/mcstatus/internal/store"
	"github.com/jpalmerr/mcstatus/internal/view"
)

// Monitor loads the site document, polls the server status and serves the
// status page.
//
// The typical lifecycle is:
//
//	m, err := mcstatus.New(mcstatus.WithSiteSource("public/config.json"))
//	if err != nil {
//	    slog.Error("failed to create monitor", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	m.Start(ctx) // blocks until context cancelled
type Monitor struct {
	site            *config.Site
	siteSource      string
	pollingInterval time.Duration
	port            int
	statusAPI       string
	requestTimeout  time.Duration
	publicDir       string
	logger          *slog.Logger
	httpClient      *http.Client
	statusCallbacks []func(StatusResult)

	mu     sync.RWMutex
	loaded *config.Site
}

// New creates a [Monitor] with the given options.
//
// Defaults:
//   - Site source: public/config.json
//   - Polling interval: 60 seconds
//   - Port: 8080
//   - Status API: https://api.mcsrvstat.us/3
//   - Request timeout: 10 seconds
func New(opts ...Option) (*Monitor, error) {
	cfg := &monitorConfig{
		siteSource:      config.DefaultSiteSource,
		pollingInterval: config.DefaultPollInterval,
		port:            config.DefaultPort,
		statusAPI:       config.DefaultStatusAPI,
		requestTimeout:  config.DefaultRequestTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		site:            cfg.site,
		siteSource:      cfg.siteSource,
		pollingInterval: cfg.pollingInterval,
		port:            cfg.port,
		statusAPI:       cfg.statusAPI,
		requestTimeout:  cfg.requestTimeout,
		publicDir:       cfg.publicDir,
		logger:          logger,
		httpClient:      cfg.httpClient,
		statusCallbacks: cfg.statusCallbacks,
	}, nil
}

// Start loads the site document, begins polling and serves the status page.
//
// Start blocks until ctx is cancelled. The site document is read exactly
// once. If it cannot be loaded a warning is logged, the page renders
// nothing and the status API is never called; the HTTP server still runs.
// Otherwise the server is polled immediately, then every interval.
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server
// fails to start.
func (m *Monitor) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	m.logger.Info("mcstatus starting", "port", m.port, "interval", m.pollingInterval.String())

	renderer, err := view.New(dashboard.Assets)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	site, err := m.LoadSite(ctx)
	if err != nil {
		m.logger.Warn("site config unavailable, page disabled",
			"source", m.siteSource,
			"error", err.Error(),
		)
	}

	statusStore := store.NewMemoryStore()

	var (
		scheduler *poller.Scheduler
		wg        sync.WaitGroup
	)
	if site != nil {
		m.logger.Info("polling configured",
			"target", site.Target(),
			"status_api", m.statusAPI,
		)
		scheduler = m.newScheduler(site)
		scheduler.Start(ctx)

		wg.Add(1)
		go func() {
			defer wg.Done()
			for result := range scheduler.Results() {
				m.handleResult(statusStore, result)
			}
		}()
	}

	// stop the scheduler and drain its results
	cleanup := func() {
		if scheduler != nil {
			scheduler.Stop()
		}
		wg.Wait()
	}

	httpServer := server.NewServer(server.Config{
		Store:    statusStore,
		Site:     site,
		Renderer: renderer,
		Assets:   dashboard.Assets,
		Public:   m.publicFS(),
		Port:     m.port,
		Logger:   m.logger,
	})
	if err := httpServer.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	m.logger.Info("status page available", "url", fmt.Sprintf("http://localhost:%d", m.port))

	<-ctx.Done()
	cleanup()
	m.logger.Info("mcstatus stopped")
	return nil
}

// Check loads the site document and performs a single status lookup.
func (m *Monitor) Check(ctx context.Context) (*config.Site, StatusResult, error) {
	site, err := m.LoadSite(ctx)
	if err != nil {
		return nil, StatusResult{}, err
	}

	scheduler := m.newScheduler(site)
	defer scheduler.Stop()

	return site, toPublicResult(scheduler.Poll(ctx)), nil
}

// LoadSite returns the site given with [WithSite], or reads the document at
// the configured source. Content is not validated beyond decoding. The
// result is kept for [Monitor.Site].
func (m *Monitor) LoadSite(ctx context.Context) (*config.Site, error) {
	site := m.site
	if site == nil {
		var err error
		site, err = config.LoadSite(ctx, m.siteSource, m.httpClient)
		if err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	m.loaded = site
	m.mu.Unlock()
	return site, nil
}

// Site returns the loaded site document, or nil before it has loaded or if
// loading failed.
func (m *Monitor) Site() *config.Site {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Port returns the configured HTTP port.
func (m *Monitor) Port() int {
	return m.port
}

// PollingInterval returns the configured interval between status checks.
func (m *Monitor) PollingInterval() time.Duration {
	return m.pollingInterval
}

func (m *Monitor) newScheduler(site *config.Site) *poller.Scheduler {
	var client *poller.Client
	if m.httpClient != nil {
		client = poller.NewClientWith(m.httpClient)
	}
	target := poller.Target{
		Address: site.Target(),
		BaseURL: m.statusAPI,
		Timeout: m.requestTimeout,
	}
	return poller.NewScheduler(target, m.pollingInterval, client, m.logger)
}

func (m *Monitor) publicFS() fs.FS {
	if m.publicDir == "" {
		return nil
	}
	return os.DirFS(m.publicDir)
}

// handleResult stores a tick result, runs callbacks and logs it.
func (m *Monitor) handleResult(st store.Store, result poller.StatusResult) {
	// callbacks fire after data is stored
	st.Update(toStoreStatus(result))

	if len(m.statusCallbacks) > 0 {
		publicResult := toPublicResult(result)
		for _, cb := range m.statusCallbacks {
			invokeCallbackSafe(cb, publicResult, m.logger)
		}
	}

	logAttrs := []any{
		"tick_id", result.TickID,
		"target", result.Target,
		"online", result.Status.Online,
		"latency_ms", result.Latency.Milliseconds(),
	}
	if result.Error != nil {
		m.logger.Warn("status check failed", append(logAttrs, "error", result.Error.Error())...)
	} else {
		m.logger.Debug("status check completed", logAttrs...)
	}
}

func toStoreStatus(pr poller.StatusResult) store.Status {
	s := store.Status{
		Online:         pr.Status.Online,
		ServerName:     pr.Status.ServerName,
		Version:        pr.Status.Version,
		PlayerNames:    copyStrings(pr.Status.PlayerNames),
		CheckedAt:      pr.CheckedAt,
		ResponseTimeMs: pr.Latency.Milliseconds(),
	}
	if pr.Status.Players != nil {
		s.Players = &store.Players{Online: pr.Status.Players.Online, Max: pr.Status.Players.Max}
	}
	return s
}

func toPublicStatus(st mcsrvstat.Status) ServerStatus {
	s := ServerStatus{
		Online:      st.Online,
		ServerName:  st.ServerName,
		Version:     st.Version,
		PlayerNames: copyStrings(st.PlayerNames),
	}
	if st.Players != nil {
		s.Players = &Players{Online: st.Players.Online, Max: st.Players.Max}
	}
	return s
}

// toPublicResult converts an internal poller result to the public type.
// Mutable fields are copied.
func toPublicResult(pr poller.StatusResult) StatusResult {
	return StatusResult{
		Target:      pr.Target,
		URL:         pr.URL,
		Status:      toPublicStatus(pr.Status),
		Latency:     pr.Latency,
		CheckedAt:   pr.CheckedAt,
		Error:       pr.Error,
		RawResponse: copyBytes(pr.RawResponse),
		StatusCode:  pr.StatusCode,
	}
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

// copyBytes returns a copy of the byte slice, or nil if input is nil.
func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// invokeCallbackSafe calls a status callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(StatusResult), result StatusResult, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("status callback panicked",
				"panic", r,
				"target", result.Target,
			)
		}
	}()
	cb(result)
}
