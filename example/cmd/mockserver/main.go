// Standalone mock status API for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/mcstatus serve -c example/mcstatus.yaml
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jpalmerr/mcstatus/example/mockapi"
)

func main() {
	fmt.Println("Mock status API starting on :9999")
	fmt.Println("Lookups: GET /3/{host:port}")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	if err := http.ListenAndServe(":9999", mockapi.New(nil).Handler()); err != nil {
		slog.Error("mock server error", "error", err)
		os.Exit(1)
	}
}
