package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpalmerr/mcstatus/internal/mcsrvstat"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const onlineBody = `{
	"online": true,
	"motd": {"clean": ["Test Server", "welcome"]},
	"version": "1.21.1",
	"players": {"online": 3, "max": 20, "list": [{"name": "Steve"}, {"name": "Alex"}]},
	"info": {"clean": ["Alex", "Notch"]}
}`

// statusServer returns a test status API that answers every lookup with body.
func statusServer(t *testing.T, code int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, &hits
}

func newTestScheduler(ts *httptest.Server, interval time.Duration) *Scheduler {
	target := Target{Address: "mc.example.com:25565", BaseURL: ts.URL + "/3", Timeout: time.Second}
	return NewScheduler(target, interval, NewClientWith(ts.Client()), testLogger())
}

func TestScheduler_PollOnline(t *testing.T) {
	var gotPath, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(onlineBody))
	}))
	defer ts.Close()

	result := newTestScheduler(ts, time.Minute).Poll(context.Background())

	if result.Error != nil {
		t.Fatalf("Poll() error = %v", result.Error)
	}
	if gotPath != "/3/mc.example.com:25565" {
		t.Errorf("request path = %q, want /3/mc.example.com:25565", gotPath)
	}
	if gotUA != UserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, UserAgent)
	}

	st := result.Status
	if !st.Online || st.ServerName != "Test Server" || st.Version != "1.21.1" {
		t.Errorf("Status = %+v", st)
	}
	if st.Players == nil || *st.Players != (mcsrvstat.Counts{Online: 3, Max: 20}) {
		t.Errorf("Players = %+v, want 3/20", st.Players)
	}
	if want := []string{"Steve", "Alex", "Notch"}; !reflect.DeepEqual(st.PlayerNames, want) {
		t.Errorf("PlayerNames = %v, want %v", st.PlayerNames, want)
	}
	if result.TickID == "" {
		t.Error("TickID should be set")
	}
	if result.CheckedAt.IsZero() {
		t.Error("CheckedAt should be set")
	}
}

func TestScheduler_PollFailuresCollapseToOffline(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		body    string
		wantErr string
	}{
		{"malformed json", http.StatusOK, "<html>oops</html>", "decode status response"},
		{"server error", http.StatusInternalServerError, onlineBody, "unexpected status code 500"},
		{"rate limited", http.StatusTooManyRequests, "", "unexpected status code 429"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := statusServer(t, tt.code, tt.body)
			result := newTestScheduler(ts, time.Minute).Poll(context.Background())

			if result.Error == nil || !strings.Contains(result.Error.Error(), tt.wantErr) {
				t.Errorf("Error = %v, want containing %q", result.Error, tt.wantErr)
			}
			if !reflect.DeepEqual(result.Status, mcsrvstat.Offline()) {
				t.Errorf("Status = %+v, want offline record", result.Status)
			}
		})
	}
}

func TestScheduler_PollTransportError(t *testing.T) {
	ts, _ := statusServer(t, http.StatusOK, onlineBody)
	s := newTestScheduler(ts, time.Minute)
	ts.Close() // nothing listening any more

	result := s.Poll(context.Background())
	if result.Error == nil {
		t.Fatal("expected transport error")
	}
	if result.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", result.StatusCode)
	}
	if result.Status.Online || result.Status.PlayerNames != nil {
		t.Errorf("Status = %+v, want offline record", result.Status)
	}
}

func TestScheduler_PollTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	target := Target{Address: "slow", BaseURL: ts.URL, Timeout: 50 * time.Millisecond}
	s := NewScheduler(target, time.Minute, NewClientWith(ts.Client()), testLogger())

	result := s.Poll(context.Background())
	if !errors.Is(result.Error, context.DeadlineExceeded) {
		t.Errorf("Error = %v, want deadline exceeded", result.Error)
	}
	if result.Status.Online {
		t.Error("timed out poll should be offline")
	}
}

func TestScheduler_NormalizerPanicRecovered(t *testing.T) {
	ts, _ := statusServer(t, http.StatusOK, onlineBody)
	s := newTestScheduler(ts, time.Minute)
	s.normalize = func([]byte) (mcsrvstat.Status, error) {
		panic("boom")
	}

	result := s.Poll(context.Background())
	if result.Error == nil || !strings.Contains(result.Error.Error(), "correlation_id") {
		t.Errorf("Error = %v, want panic error with correlation id", result.Error)
	}
	if result.Status.Online {
		t.Error("panicking normalizer should yield offline")
	}
}

// TestScheduler_FirstTickImmediate verifies the first poll does not wait for
// the interval.
func TestScheduler_FirstTickImmediate(t *testing.T) {
	ts, hits := statusServer(t, http.StatusOK, onlineBody)
	s := newTestScheduler(ts, time.Hour)
	s.Start(context.Background())
	defer s.Stop()

	select {
	case result := <-s.Results():
		if !result.Status.Online {
			t.Errorf("first result Status = %+v, want online", result.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no result before the first interval elapsed")
	}
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1", hits.Load())
	}
}

func TestScheduler_TicksOnInterval(t *testing.T) {
	ts, _ := statusServer(t, http.StatusOK, onlineBody)
	s := newTestScheduler(ts, 20*time.Millisecond)
	s.Start(context.Background())
	defer s.Stop()

	timeout := time.After(2 * time.Second)
	for i := 0; i < 3; i++ {
		select {
		case <-s.Results():
		case <-timeout:
			t.Fatalf("received %d results, want 3", i)
		}
	}
}

func TestScheduler_StopBeforeStart(t *testing.T) {
	ts, hits := statusServer(t, http.StatusOK, onlineBody)
	s := newTestScheduler(ts, time.Minute)

	s.Stop()
	s.Start(context.Background()) // no-op after Stop
	s.Stop()

	if _, ok := <-s.Results(); ok {
		t.Error("results channel should be closed")
	}
	if hits.Load() != 0 {
		t.Errorf("hits = %d, want 0", hits.Load())
	}
}

func TestScheduler_StopClosesResults(t *testing.T) {
	ts, _ := statusServer(t, http.StatusOK, onlineBody)
	s := newTestScheduler(ts, time.Minute)
	s.Start(context.Background())
	s.Start(context.Background()) // idempotent

	go func() {
		for range s.Results() {
		}
	}()

	time.Sleep(50 * time.Millisecond)
	s.Stop()
	s.Stop()

	select {
	case _, ok := <-s.Results():
		if ok {
			t.Error("expected results channel to be closed after Stop()")
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for results channel to close")
	}
}

// TestScheduler_StopWithUnreadResult verifies Stop does not deadlock when
// nobody drains the results channel.
func TestScheduler_StopWithUnreadResult(t *testing.T) {
	ts, _ := statusServer(t, http.StatusOK, onlineBody)
	s := newTestScheduler(ts, 5*time.Millisecond)
	s.Start(context.Background())

	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() deadlocked with an undrained results channel")
	}
}

func TestScheduler_ContextCancellation(t *testing.T) {
	ts, _ := statusServer(t, http.StatusOK, onlineBody)
	ctx, cancel := context.WithCancel(context.Background())
	s := newTestScheduler(ts, time.Minute)
	s.Start(ctx)

	go func() {
		for range s.Results() {
		}
	}()

	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return after context cancellation")
	}
}

// TestScheduler_ConcurrentStartStop should be run with -race.
func TestScheduler_ConcurrentStartStop(t *testing.T) {
	ts, _ := statusServer(t, http.StatusOK, onlineBody)

	for i := 0; i < 50; i++ {
		s := newTestScheduler(ts, time.Minute)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Start(context.Background())
		}()
		go func() {
			defer wg.Done()
			s.Stop()
		}()
		wg.Wait()

		s.Stop()
		for range s.Results() {
		}
	}
}
