// Package mcstatus serves a single-page status site for one Minecraft
// server.
//
// A [Monitor] loads the site document (server address, port, GitHub link,
// downloadable artifacts) once at startup, polls a public status API for the
// configured server every interval, and serves a server-rendered page that
// shows whether the server is online, its name and version, the player
// counts and the names of connected players. The page updates live over
// Server-Sent Events.
//
// # Quick Start
//
//	m, err := mcstatus.New(
//	    mcstatus.WithSiteSource("public/config.json"),
//	    mcstatus.WithPublicDir("public"),
//	)
//	if err != nil {
//	    slog.Error("failed to create monitor", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	m.Start(ctx) // blocks until context is cancelled
//
// # Failure Handling
//
// Any failure while checking the server (network error, non-2xx response,
// malformed body) is shown as offline and logged. There is no retry or
// backoff; the next tick simply tries again. When the site document cannot
// be loaded the page renders nothing and no status requests are made.
//
// # Architecture
//
//   - config: site document and service settings
//   - internal/mcsrvstat: status API response model and normalization
//   - internal/poller: HTTP client and fixed-interval scheduler
//   - internal/store: current status with pub/sub for live updates
//   - internal/view: page model and HTML rendering
//   - internal/server: HTTP routes and Server-Sent Events
//   - internal/clipboard: CLI clipboard helper
//   - dashboard: embedded templates and static assets
package mcstatus
