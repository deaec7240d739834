package mcstatus

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jpalmerr/mcstatus/config"
)

const onlineBody = `{
	"online": true,
	"motd": {"clean": ["Test Server", "second line"]},
	"version": "1.20.4",
	"players": {"online": 2, "max": 20, "list": [{"name": "Steve"}, {"name": "Alex"}]},
	"info": {"clean": ["Alex", "Herobrine"]}
}`

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSite() *config.Site {
	return &config.Site{
		ServerAddress: "mc.example.com",
		ServerPort:    25565,
		GitHub:        "https://github.com/example/server",
	}
}

// statusAPI serves body for the test site's lookup path and counts hits.
func statusAPI(t *testing.T, code int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !strings.HasSuffix(r.URL.Path, "/mc.example.com:25565") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts, &hits
}
