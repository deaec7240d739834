package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jpalmerr/mcstatus/config"
	"github.com/jpalmerr/mcstatus/internal/store"
	"github.com/jpalmerr/mcstatus/internal/view"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write.
	// Must be <= shutdownTimeout so handlers exit during shutdown.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second
)

// Config holds the dependencies of a [Server].
type Config struct {
	// Store supplies the current status and updates.
	Store store.Store

	// Site is the loaded site document. nil means it failed to load and
	// the page renders nothing.
	Site *config.Site

	// Renderer renders the page and the status fragment.
	Renderer *view.Renderer

	// Assets holds assets/static/*, served under /assets/static/.
	Assets fs.FS

	// Public is served for every other path (background image, download
	// artifacts). May be nil.
	Public fs.FS

	// Port is the TCP port to listen on.
	Port int

	Logger *slog.Logger
}

// Server serves the status page and its API.
//
// Routes:
//   - GET /: the rendered status page
//   - GET /config.json: the site document
//   - GET /api/status: the current status as JSON (null before the first poll)
//   - GET /api/sse: Server-Sent Events stream of status updates
//   - GET /assets/static/: embedded script and stylesheet
//   - anything else: the public directory, if configured
type Server struct {
	store      store.Store
	site       *config.Site
	renderer   *view.Renderer
	assets     fs.FS
	public     fs.FS
	port       int
	logger     *slog.Logger
	httpServer *http.Server
}

// Event is the payload of one SSE message.
type Event struct {
	// Status is the new status.
	Status store.Status `json:"status"`

	// HTML is the rendered status fragment for Status.
	HTML string `json:"html"`
}

// NewServer creates a [Server]. It is not started until [Server.Start].
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:    cfg.Store,
		site:     cfg.Site,
		renderer: cfg.Renderer,
		assets:   cfg.Assets,
		public:   cfg.Public,
		port:     cfg.Port,
		logger:   logger,
	}
}

// Handler returns the request multiplexer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/config.json", s.handleConfig)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/sse", s.handleSSE)

	if s.assets != nil {
		mux.Handle("/assets/static/", http.FileServerFS(s.assets))
	}

	return mux
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start returns after the listener is bound. The server shuts down
// gracefully (5s) when ctx is cancelled.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx so SSE handlers end on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// currentPage builds the page from the site and the stored status.
func (s *Server) currentPage() *view.Page {
	var status *store.Status
	if st, ok := s.store.Get(); ok {
		status = &st
	}
	return view.NewPage(s.site, status, false)
}

// handleRoot serves the page at "/" and the public directory elsewhere.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		if s.public == nil {
			http.NotFound(w, r)
			return
		}
		http.FileServerFS(s.public).ServeHTTP(w, r)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	if s.renderer == nil {
		return
	}
	if err := s.renderer.Render(w, s.currentPage()); err != nil {
		s.logger.Error("failed to render page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// handleConfig serves the loaded site document.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.site == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.site); err != nil {
		s.logger.Error("failed to encode site config", "error", err)
	}
}

// handleStatus returns the current status as JSON, or null before the first
// poll has resolved.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body any
	if st, ok := s.store.Get(); ok {
		body = st
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode status response", "error", err)
	}
}

// event builds the SSE payload for st.
func (s *Server) event(st store.Status) ([]byte, error) {
	ev := Event{Status: st}
	if s.renderer != nil {
		html, err := s.renderer.StatusHTML(view.NewPage(s.site, &st, false))
		if err != nil {
			return nil, err
		}
		ev.HTML = html
	}
	return json.Marshal(ev)
}

// handleSSE streams status updates via Server-Sent Events.
//
// Writes carry a deadline so a stalled client cannot pin the handler past
// shutdown.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Debug("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	// current state first
	if st, ok := s.store.Get(); ok {
		data, err := s.event(st)
		if err != nil {
			s.logger.Error("failed to build sse event", "error", err)
		} else if err := writeAndFlush(data); err != nil {
			return
		}
	} else if err := rc.Flush(); err != nil {
		return
	}

	for {
		select {
		case st, ok := <-ch:
			if !ok {
				return
			}
			data, err := s.event(st)
			if err != nil {
				s.logger.Error("failed to build sse event", "error", err)
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}
		case <-r.Context().Done():
			// fires on client disconnect and on server shutdown
			return
		}
	}
}
