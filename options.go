package mcstatus

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jpalmerr/mcstatus/config"
)

// monitorConfig holds mutable state during Monitor construction.
type monitorConfig struct {
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
}

// Option configures a [Monitor] during construction.
//
// Options return an error if validation fails.
type Option func(*monitorConfig) error

// WithSite uses an already loaded site document instead of reading one at
// startup.
//
// Returns an error if site is nil.
func WithSite(site *config.Site) Option {
	return func(cfg *monitorConfig) error {
		if site == nil {
			return errors.New("site cannot be nil")
		}
		cp := *site
		cp.Downloads = append([]config.Download(nil), site.Downloads...)
		cfg.site = &cp
		return nil
	}
}

// WithSiteSource sets where the site document is read from at startup: a
// file path or an http(s) URL. The format follows the extension (.json,
// .yaml, .yml). Defaults to public/config.json.
//
// Ignored when [WithSite] is also given.
func WithSiteSource(source string) Option {
	return func(cfg *monitorConfig) error {
		if strings.TrimSpace(source) == "" {
			return errors.New("site source cannot be empty")
		}
		cfg.siteSource = source
		return nil
	}
}

// WithPollingInterval sets how often the server status is checked.
// Defaults to 60 seconds.
//
// Returns an error if the duration is zero or negative.
func WithPollingInterval(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("polling interval must be positive")
		}
		cfg.pollingInterval = d
		return nil
	}
}

// WithPort sets the HTTP port for the status page. Defaults to 8080.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *monitorConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithStatusAPI sets the status API base URL. The target is appended as a
// path segment. Defaults to https://api.mcsrvstat.us/3.
//
// Returns an error unless base is an absolute http or https URL.
func WithStatusAPI(base string) Option {
	return func(cfg *monitorConfig) error {
		u, err := url.Parse(base)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("status API must be an http or https URL, got %q", base)
		}
		cfg.statusAPI = strings.TrimRight(base, "/")
		return nil
	}
}

// WithRequestTimeout bounds each status request. Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithPublicDir serves files from dir for every path the page does not
// own, such as the background image and download artifacts. An empty dir
// disables it.
func WithPublicDir(dir string) Option {
	return func(cfg *monitorConfig) error {
		cfg.publicDir = dir
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *monitorConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithHTTPClient sets the client used for status requests and for fetching
// a remote site document.
//
// Returns an error if the client is nil.
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *monitorConfig) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		cfg.httpClient = hc
		return nil
	}
}

// WithStatusCallback registers a function called after every poll tick,
// once the new status is stored.
//
// Callbacks run synchronously in registration order from a single
// goroutine and must not block. Panics are recovered and logged.
//
// Example:
//
//	m, err := mcstatus.New(
//	    mcstatus.WithStatusCallback(func(r mcstatus.StatusResult) {
//	        if !r.Status.Online {
//	            log.Printf("%s is offline: %v", r.Target, r.Error)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithStatusCallback(cb func(StatusResult)) Option {
	return func(cfg *monitorConfig) error {
		if cb == nil {
			return nil
		}
		cfg.statusCallbacks = append(cfg.statusCallbacks, cb)
		return nil
	}
}
