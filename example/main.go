package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/mcstatus"
	"github.com/jpalmerr/mcstatus/config"
	"github.com/jpalmerr/mcstatus/example/mockapi"
)

func main() {
	// start the mock status API (see mockapi)
	go func() {
		if err := http.ListenAndServe(":9999", mockapi.New(nil).Handler()); err != nil {
			slog.Error("mock server error", "error", err)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	site := &config.Site{
		ServerAddress: "mc.example.com",
		ServerPort:    25565,
		GitHub:        "https://github.com/jpalmerr/mcstatus",
		Downloads: []config.Download{
			{Name: "Modpack", File: "/downloads/modpack.zip"},
		},
	}

	m, err := mcstatus.New(
		mcstatus.WithSite(site),
		mcstatus.WithStatusAPI("http://localhost:9999/3"),
		mcstatus.WithPollingInterval(5*time.Second),
		mcstatus.WithPublicDir("example/public"),
		mcstatus.WithPort(8080),
		mcstatus.WithStatusCallback(func(r mcstatus.StatusResult) {
			if !r.Status.Online {
				slog.Warn("server offline", "target", r.Target)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create monitor", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   mcstatus Demo                                       ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Mock status API on :9999, checked every 5s          ║")
	fmt.Println("  ║   Players join, leave and the server drops out        ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := m.Start(ctx); err != nil {
		slog.Error("mcstatus error", "error", err)
		os.Exit(1)
	}
}
